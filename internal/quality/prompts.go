package quality

import (
	"fmt"
	"strings"

	"quest/internal/token"
)

// maxPromptCodeTokens bounds the code section of an oracle prompt so a
// pathologically large artifact cannot blow past the model's context window.
const maxPromptCodeTokens = 24000

func promptCode(code string) string {
	return token.Truncate(code, maxPromptCodeTokens)
}

// systemPrompt is shared by every oracle call.
const systemPrompt = "You are a helpful and harmless AI software engineer. You must provide an answer to the following request. Be brief and precise."

const baselineEvalTemplate = `### CODE:
` + "```" + `
%s
` + "```" + `

### TASK:
Think step by step to produce both a quantitative and qualitative assessment of the CODE provided.
* Your qualitative assessment must be a short summary about the quality of the CODE.
* Your quantitative assessment must be an integer on a scale from -5 to 5, which respectively represent the low and high-quality ends of the scale.
Both types of evaluations must agree with each other.

### OUTPUT:
Return your answer in a valid JSON as shown below:
` + "```json" + `
{
    "insight": <qualitative assessment:str>,
    "score": <quantitative assessment:int>
}
` + "```"

const dimensionEvalTemplate = `### CODE:
` + "```" + `
%s
` + "```" + `

### STATEMENTS:
%s

### TASK:
Think step by step to assess the veracity of each STATEMENT in light of the CODE provided.
Your answer to each statement must come from one of the following:
    * -1 if the statement is false,
    * 1 if the statement is true,
    * 0 if the statement is not applicable or there is not enough evidence in the CODE to address it.

You must also provide a short summary about the quality of the code from a %s perspective, justifying your answers across the various statements.

### OUTPUT:
Return your answer in valid JSON as shown below:
` + "```json" + `
{
    "insight": <code quality summary:str>,
    "scores": [<score_to_statement1:int>, <score_to_statement2:int>, ...]
}
` + "```"

const optimizerTemplate = `### Code:
%s

### Quality Dimensions Feedback:
%s

### TASK:
You are provided with a code script and detailed feedback for each quality dimension.
For each quality dimension, you are provided with:
    * A score from -5 to 5. The higher the score, the better the quality.
    * Dimension insights, highlighting potential areas of improvement.

Think step by step to complete the following:
    1) For each dimension, reflect on the score and insights.
    2) Condense a list of improvement points, so that the code would be evaluated at a higher score for each dimension.
    3) Improve the code script according to the improvement points, prioritizing dimensions with lower scores.
    4) Return:
        * the improvement points identified
        * the improved version of the code script
        * explanations for each of the changes you've made
Note:
* ALL improvement points MUST be addressed via meaningful changes to the code.

### OUTPUT:
Your final output contains two parts:
Return your answer in a valid JSON as shown below:
` + "```json" + `
{
    "improvement_points": List[str],
    "explanation_report": List[str]
}
` + "```" + `

Then quote your code in the following section
` + "```improved_code" + `
{improved_code_here}
` + "```"

const baselineOptimizerTemplate = `### Code:
%s

### Feedback:
%s

### TASK:
You are provided with a code script and feedback about its quality.
Specifically, the feedback includes:
    * A qualitative assessment, which is a short summary about the quality of the CODE.
    * A quantitative assessment, which is an integer on a scale from -5 to 5, respectively representing the low and high-quality ends of the scale.

Think step by step to complete the following:
    1) Reflect on the feedback provided.
    2) Condense a list of improvement points, so that the code would be evaluated at a higher score.
    3) Improve the code script according to the improvement points.
    4) Return:
        * the improvement points identified
        * the improved version of the code script
        * explanations for each of the changes you've made
Note:
* ALL improvement points MUST be addressed via meaningful changes to the code.

### OUTPUT:
Your final output contains two parts:
Return your answer in a valid JSON as shown below:
` + "```json" + `
{
    "improvement_points": List[str],
    "explanation_report": List[str]
}
` + "```" + `

Then quote your code in the following section
` + "```improved_code" + `
{improved_code_here}
` + "```"

// buildBaselineEvalPrompt asks for a single holistic score and insight.
func buildBaselineEvalPrompt(code string) string {
	return fmt.Sprintf(baselineEvalTemplate, promptCode(code))
}

// buildDimensionEvalPrompt asks for statement-wise scores on one dimension.
func buildDimensionEvalPrompt(code string, dim Dimension) string {
	statements := make([]string, len(dim.Statements))
	for i, s := range dim.Statements {
		statements[i] = fmt.Sprintf("%d. %s", i, s)
	}
	return fmt.Sprintf(dimensionEvalTemplate, promptCode(code), strings.Join(statements, "\n"), dim.Name)
}

// buildOptimizerPrompt asks for a revised script given dimension feedback.
func buildOptimizerPrompt(code, feedback string, baseline bool) string {
	if baseline {
		return fmt.Sprintf(baselineOptimizerTemplate, promptCode(code), feedback)
	}
	return fmt.Sprintf(optimizerTemplate, promptCode(code), feedback)
}
