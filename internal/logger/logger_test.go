package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileLogger(t *testing.T, level Level, maxSize int64) (*DefaultLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	l, err := NewDefaultLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: maxSize,
		MaxBackups:  3,
		Level:       level,
		StackTraces: true,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return l, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewDefaultLogger(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 1024)
	defer l.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestLogLevels(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 1024*1024)

	l.Debug("debug message", String("key", "value"))
	l.Info("info message", Int("count", 42))
	l.Warn("warn message", Bool("flag", true))
	l.Error("error message", errors.New("test error"), Float64("rate", 3.14))
	l.Close()

	logContent := readLog(t, logPath)
	for _, want := range []string{
		"[DEBUG] debug message", "[INFO] info message", "[WARN] warn message", "[ERROR] error message",
		"key=value", "count=42", "flag=true", "rate=3.14",
		`error="test error"`, "Stack trace:",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("log missing %q", want)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	l, logPath := newFileLogger(t, LevelWarn, 1024*1024)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message", nil)
	l.Close()

	logContent := readLog(t, logPath)
	if strings.Contains(logContent, "[DEBUG]") || strings.Contains(logContent, "[INFO]") {
		t.Error("Debug and Info should be filtered out")
	}
	if !strings.Contains(logContent, "[WARN]") || !strings.Contains(logContent, "[ERROR]") {
		t.Error("Warn and Error should be present")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelDebug)

	l.Debug("debug before")
	l.SetLevel(LevelError)
	l.Debug("debug after")
	l.Warn("warn after")
	l.Error("error after", nil)

	out := buf.String()
	if !strings.Contains(out, "debug before") {
		t.Error("Debug before level change should be present")
	}
	if strings.Contains(out, "debug after") || strings.Contains(out, "warn after") {
		t.Error("messages below the new level should be filtered")
	}
	if !strings.Contains(out, "error after") {
		t.Error("Error after level change should be present")
	}
}

func TestWriterLoggerHasNoStackTrace(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelInfo)
	l.Error("failed", errors.New("x"))

	if strings.Contains(buf.String(), "Stack trace:") {
		t.Error("writer logger should not append stack traces")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLogRotation(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 100)

	for i := 0; i < 20; i++ {
		l.Info("This is a test message that should trigger log rotation eventually")
	}
	l.Close()

	if _, err := os.Stat(logPath + ".1"); os.IsNotExist(err) {
		t.Error("Backup log file was not created after rotation")
	}
	if _, err := os.Stat(logPath + ".5"); !os.IsNotExist(err) {
		t.Error("Backups beyond MaxBackups should be removed")
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelDebug)

	l.Info("test fields",
		String("str", "hello"),
		Int("int", 42),
		Int64("int64", 9223372036854775807),
		Float64("float", 3.14159),
		Bool("bool", true),
		Err(errors.New("sample error")),
		Any("any", map[string]int{"a": 1}),
	)

	out := buf.String()
	for _, want := range []string{
		"str=hello", "int=42", "int64=9223372036854775807", "float=3.14159",
		"bool=true", "error=sample error", "any=map[a:1]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("field %q not formatted correctly in %q", want, out)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "global.log")
	if err := Init(&Config{LogFilePath: logPath, MaxFileSize: 1024 * 1024, MaxBackups: 3, Level: LevelDebug}); err != nil {
		t.Fatalf("Failed to initialize global logger: %v", err)
	}

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error", errors.New("global test error"))
	Close()

	logContent := readLog(t, logPath)
	for _, want := range []string{"global debug", "global info", "global warn", "global error"} {
		if !strings.Contains(logContent, want) {
			t.Errorf("global log missing %q", want)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	SetGlobalLogger(nil)

	Debug("test")
	Info("test")
	Warn("test")
	Error("test", nil)

	if GetLogger() == nil {
		t.Error("GetLogger should return noop logger, not nil")
	}
	if err := Nop().Close(); err != nil {
		t.Errorf("Nop().Close() = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

func TestLogDirectoryCreation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

	l, err := NewDefaultLogger(&Config{LogFilePath: logPath, MaxFileSize: 1024, MaxBackups: 1})
	if err != nil {
		t.Fatalf("Failed to create logger with nested directory: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(filepath.Dir(logPath)); os.IsNotExist(err) {
		t.Error("Nested log directory was not created")
	}
}
