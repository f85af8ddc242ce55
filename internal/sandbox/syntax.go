// Package sandbox provides local candidate validation: syntax checking and
// isolated, time-bounded test execution.
package sandbox

import (
	"context"
	"crypto/sha256"
	"go/parser"
	"go/token"
	"os/exec"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"quest/internal/logging"
)

// Language identifies the target language of the code under evaluation.
type Language string

const (
	LangPython Language = "python"
	LangGo     Language = "go"
)

// Checker reports whether code parses in one target language. Checks are
// pure and local; no network.
type Checker interface {
	Check(code string) bool
}

// goChecker parses candidates as Go source files.
type goChecker struct{}

// NewGoChecker returns a Checker backed by go/parser.
func NewGoChecker() Checker { return goChecker{} }

func (goChecker) Check(code string) bool {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "candidate.go", code, 0)
	return err == nil
}

// pythonChecker parses candidates with the CPython ast module in a bounded
// subprocess. Parsing only; the candidate is never executed.
type pythonChecker struct {
	binary  string
	timeout time.Duration
	logger  logging.Logger
}

// NewPythonChecker returns a Checker that shells out to the given Python
// interpreter (default "python3").
func NewPythonChecker(binary string, timeout time.Duration) Checker {
	if binary == "" {
		binary = "python3"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &pythonChecker{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger("sandbox-syntax"),
	}
}

func (c *pythonChecker) Check(code string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "-c", "import ast, sys; ast.parse(sys.stdin.read())")
	cmd.Stdin = strings.NewReader(code)
	if err := cmd.Run(); err != nil {
		c.logger.Debug("python syntax check failed: %v", err)
		return false
	}
	return true
}

// NewChecker returns the Checker for a target language.
func NewChecker(lang Language, pythonBinary string, timeout time.Duration) Checker {
	if lang == LangGo {
		return NewGoChecker()
	}
	return NewPythonChecker(pythonBinary, timeout)
}

// cachedChecker memoizes check results keyed by content hash. Sound because
// checkers are pure; the loop re-checks identical artifacts across rounds.
type cachedChecker struct {
	inner Checker
	cache *lru.Cache[[32]byte, bool]
}

// NewCachedChecker wraps a Checker with an LRU of the given size.
func NewCachedChecker(inner Checker, size int) Checker {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[[32]byte, bool](size)
	if err != nil {
		return inner
	}
	return &cachedChecker{inner: inner, cache: cache}
}

func (c *cachedChecker) Check(code string) bool {
	key := sha256.Sum256([]byte(code))
	if ok, hit := c.cache.Get(key); hit {
		return ok
	}
	result := c.inner.Check(code)
	c.cache.Add(key, result)
	return result
}
