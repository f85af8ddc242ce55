// Package quality implements the evaluator and optimizer halves of the
// actor-critic loop: dimension-wise code quality scoring via a scoring
// oracle, deterministic feedback formatting, and oracle-driven code revision
// with syntax and test validation.
package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Score bounds for a single dimension: five statements, each answered
// -1 (false), 0 (not applicable), or 1 (true), summed.
const (
	MinScore = -5
	MaxScore = 5
)

// StatementsPerDimension is the fixed number of assessment statements each
// dimension carries.
const StatementsPerDimension = 5

// Dimension is one named axis of code quality with its assessment statements.
type Dimension struct {
	Name       string   `yaml:"name"`
	Statements []string `yaml:"statements"`
}

// OverallDimension is the synthetic dimension used by the baseline strategy,
// which produces a single holistic score instead of a per-dimension report.
const OverallDimension = "Overall"

// defaultDimensions is the fixed, ordered set of ten quality dimensions.
var defaultDimensions = []Dimension{
	{
		Name: "Readability",
		Statements: []string{
			"Both, variable and function names are descriptive and meaningful.",
			"The code consistently follows a single specific code style guide.",
			"There are comments that clearly explain complex or non-obvious parts of the code provided, without assuming prior knowledge.",
			"The code provided is free of unexplained constants or magic numbers.",
			"Each existing function is dedicated to a single task.",
		},
	},
	{
		Name: "Maintainability",
		Statements: []string{
			"The code provided is organized in a logical and understandable manner, allowing for easy comprehension.",
			"The code provided strictly adheres to the DRY (Do not Repeat Yourself) principle, avoiding unnecessary repetition.",
			"Code features can be added or modified without affecting existing functionality.",
			"The code provided is effectively free of duplication, promoting efficiency and maintainability.",
			"There are clear interfaces between different parts of the code provided, facilitating seamless interaction.",
		},
	},
	{
		Name: "Testability",
		Statements: []string{
			"The structure of the code provided facilitates easy mocking of dependencies.",
			"The code provided produces consistent and predictable outputs for specific inputs.",
			"The code provided is free of global states and variables.",
			"The code provided is free from deep nesting or complex control flow, that could complicate testing.",
			"The code provided is organized in a way that allows the straightforward measurement of code coverage.",
		},
	},
	{
		Name: "Efficiency",
		Statements: []string{
			"The code provided makes efficient use of data structures.",
			"The code provided avoids creating unnecessary objects or data.",
			"The code provided avoids suboptimal computations, such as unnecessary loops or repeated operations that could be optimized.",
			"The code provided promotes the efficient use of system resources.",
			"The code provided addresses any existing bottlenecks that could slow down the code.",
		},
	},
	{
		Name: "Robustness",
		Statements: []string{
			"Does the code provided validate and sanitize inputs in all relevant scenarios?",
			"Does the code provided handle edge cases and unexpected inputs gracefully in all relevant scenarios?",
			"Are there appropriate error handling and exception handling mechanisms in place for all relevant scenarios?",
			"Does the code provided handle errors and exceptions gracefully in all relevant scenarios?",
			"Does the code provided accounts for any potential race conditions, concurrency issues, or deadlock situations in all relevant scenarios?",
		},
	},
	{
		Name: "Security",
		Statements: []string{
			"The code provided consistently sanitizes user inputs to prevent injection attacks.",
			"The code provided is completely free of hardcoded sensitive data, such as passwords and API keys.",
			"The code provided adheres to established best practices for secure coding.",
			"The code provided implements comprehensive error handling to prevent leakage of sensitive information.",
			"The code provided utilizes secure communication protocols when performing network operations.",
		},
	},
	{
		Name: "Documentation",
		Statements: []string{
			"Comments are provided to explain non-obvious parts of the code.",
			"There is a concise and clear description of the code's functionality.",
			"Input parameters are documented.",
			"Output values are documented.",
			"Side effects are documented.",
		},
	},
	{
		Name: "Modularity",
		Statements: []string{
			"The code provided is divided into small, independent functions that perform specific tasks.",
			"Individual parts of the code provided can be used, modified, and tested independently without affecting other parts.",
			"The code provided avoids deep nesting and complex control flow structures.",
			"The code provided adheres to the principles of high cohesion (related functionality within a single unit) and low coupling (minimal dependencies between units).",
			"Different parts of the code are separated by well-defined interfaces to facilitate communication and maintainability.",
		},
	},
	{
		Name: "Scalability",
		Statements: []string{
			"The code provided is designed to handle increased data loads efficiently, or can it be easily adapted to do so.",
			"The code provided is designed to handle an increased number of users efficiently, or can it be easily adapted to do so.",
			"The code provided makes efficient use of resources, such as CPU and memory.",
			"The code provided is free of bottlenecks that could potential limit scalability.",
			"The code provided is designed to work in a distributed environment efficiently, or can it be easily adapted to do so.",
		},
	},
	{
		Name: "Portability",
		Statements: []string{
			"The code provided avoids relying on any platform-specific features or behavior.",
			"The code provided can run in different environments without requiring major changes.",
			"The code provided is free of hardcoded file paths or URLs that would limit portability.",
			"The code provided uses standard libraries and APIs as much as possible.",
			"All dependencies are clearly specified and easy to install.",
		},
	},
}

// Dimensions returns the fixed, declaration-ordered quality dimensions.
func Dimensions() []Dimension {
	out := make([]Dimension, len(defaultDimensions))
	copy(out, defaultDimensions)
	return out
}

// DimensionNames returns the dimension names in declaration order.
func DimensionNames() []string {
	names := make([]string, len(defaultDimensions))
	for i, d := range defaultDimensions {
		names[i] = d.Name
	}
	return names
}

// rubricFile is the YAML shape of a dimension rubric override.
type rubricFile struct {
	Dimensions []Dimension `yaml:"dimensions"`
}

// LoadRubric reads a dimension rubric override from a YAML file. The rubric
// must declare exactly ten dimensions with five statements each.
func LoadRubric(path string) ([]Dimension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric: %w", err)
	}
	var file rubricFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode rubric: %w", err)
	}
	if err := validateRubric(file.Dimensions); err != nil {
		return nil, fmt.Errorf("invalid rubric %s: %w", path, err)
	}
	return file.Dimensions, nil
}

func validateRubric(dims []Dimension) error {
	if len(dims) != len(defaultDimensions) {
		return fmt.Errorf("expected %d dimensions, got %d", len(defaultDimensions), len(dims))
	}
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		if d.Name == "" {
			return fmt.Errorf("dimension with empty name")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate dimension %q", d.Name)
		}
		seen[d.Name] = true
		if len(d.Statements) != StatementsPerDimension {
			return fmt.Errorf("dimension %q has %d statements, expected %d", d.Name, len(d.Statements), StatementsPerDimension)
		}
	}
	return nil
}
