package sandbox

import "testing"

type countingChecker struct {
	result bool
	calls  int
}

func (c *countingChecker) Check(code string) bool {
	c.calls++
	return c.result
}

func TestGoChecker(t *testing.T) {
	checker := NewGoChecker()

	valid := "package main\n\nfunc add(a, b int) int { return a + b }\n"
	if !checker.Check(valid) {
		t.Error("valid Go source rejected")
	}

	invalid := "package main\n\nfunc add(a, b int int { return a + b }\n"
	if checker.Check(invalid) {
		t.Error("invalid Go source accepted")
	}

	if checker.Check("") {
		t.Error("empty source accepted")
	}
}

func TestCachedChecker_MemoizesByContent(t *testing.T) {
	inner := &countingChecker{result: true}
	cached := NewCachedChecker(inner, 8)

	code := "package main\n"
	for i := 0; i < 5; i++ {
		if !cached.Check(code) {
			t.Fatal("unexpected verdict")
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	// Different content misses the cache.
	cached.Check("package other\n")
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedChecker_CachesNegativeVerdicts(t *testing.T) {
	inner := &countingChecker{result: false}
	cached := NewCachedChecker(inner, 8)

	if cached.Check("broken(") || cached.Check("broken(") {
		t.Error("unexpected verdict")
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestNewChecker_SelectsByLanguage(t *testing.T) {
	if _, ok := NewChecker(LangGo, "", 0).(goChecker); !ok {
		t.Error("Go language did not select the Go checker")
	}
	if _, ok := NewChecker(LangPython, "", 0).(*pythonChecker); !ok {
		t.Error("Python language did not select the Python checker")
	}
}
