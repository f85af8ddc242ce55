package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	baseInstance *baseState
	baseOnce     sync.Once
)

// baseState is the process-wide sink shared by all component loggers. It owns
// the quest-debug.log handle and the current minimum level. Component loggers
// read the level through this pointer, so SetLevel applies to loggers
// constructed before and after the call alike.
type baseState struct {
	mu    sync.Mutex
	out   *log.Logger
	level Level
}

// fileLogger writes leveled, timestamped lines to quest-debug.log in the
// user's home directory, scoped to a component name.
type fileLogger struct {
	base      *baseState
	component string
}

func base() *baseState {
	baseOnce.Do(func() {
		baseInstance = &baseState{level: LevelDebug}

		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path := filepath.Join(home, "quest-debug.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		baseInstance.out = log.New(file, "", 0)
	})
	return baseInstance
}

// NewComponentLogger returns the default application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	return &fileLogger{base: base(), component: component}
}

// SetLevel sets the minimum level on the shared base state.
func SetLevel(level Level) {
	b := base()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = level
}

func (l *fileLogger) log(level Level, format string, args ...any) {
	b := l.base
	b.mu.Lock()
	defer b.mu.Unlock()
	if level < b.level || b.out == nil {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	component := l.component
	if component == "" {
		component = "QUEST"
	}

	// Format: 2025-09-30 12:34:56 [INFO] [component] file.go:123 - message
	b.out.Printf("%s [%s] [%s] %s:%d - %s",
		time.Now().Format("2006-01-02 15:04:05"),
		levelString(level), component, file, line,
		fmt.Sprintf(format, args...))
}

func (l *fileLogger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *fileLogger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *fileLogger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *fileLogger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

func levelString(level Level) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
