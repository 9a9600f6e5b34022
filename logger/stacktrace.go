package logger

import (
	"fmt"
	"runtime"
	"strings"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
	"fatal": 4,
}

// CaptureStacktrace formats the current call stack, at most depth frames
// (0 means 32), skipping skip frames
func CaptureStacktrace(skip int, depth int) string {
	if depth <= 0 {
		depth = 32
	}

	pcs := make([]uintptr, depth*2)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, depth)
	for {
		frame, more := frames.Next()
		out = append(out, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		if len(out) >= depth || !more {
			break
		}
	}
	return strings.Join(out, "\n")
}

// shouldCaptureStacktrace reports whether level reaches the configured stack level
func shouldCaptureStacktrace(level string, config ManagerConfig) bool {
	if !config.EnableStacktrace {
		return false
	}
	threshold, ok := levelRank[config.StacktraceLevel]
	if !ok {
		threshold = levelRank["error"]
	}
	return levelRank[level] >= threshold
}
