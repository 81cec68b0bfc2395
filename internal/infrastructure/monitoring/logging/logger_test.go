package logging

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 3}, Int("n", 3))
	assert.Equal(t, Field{Key: "n", Value: int64(9)}, Int64("n", 9))
	assert.Equal(t, Field{Key: "f", Value: 1.5}, Float64("f", 1.5))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))

	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(fmt.Errorf("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
}

func TestLevelsAndFields(t *testing.T) {
	l, logs := observedLogger(zapcore.DebugLevel)

	l.Debug("d")
	l.Info("i", String("k", "v"), Float64("score", 72.5))
	l.Warn("w")
	l.Error("e", Err(fmt.Errorf("bad")))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "i", entries[1].Message)
	assert.Equal(t, "v", entries[1].ContextMap()["k"])
	assert.Equal(t, 72.5, entries[1].ContextMap()["score"])
	assert.Equal(t, "bad", entries[3].ContextMap()["error"])
}

func TestLevelFiltering(t *testing.T) {
	l, logs := observedLogger(zapcore.WarnLevel)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "w", logs.All()[0].Message)
}

func TestWithAttachesFieldsToChildOnly(t *testing.T) {
	l, logs := observedLogger(zapcore.InfoLevel)

	child := l.With(String("component", "avm"))
	child.Info("from child")
	l.Info("from parent")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "avm", entries[0].ContextMap()["component"])
	assert.NotContains(t, entries[1].ContextMap(), "component")
}

func TestNamedNestsLoggerNames(t *testing.T) {
	l, logs := observedLogger(zapcore.InfoLevel)

	l.Named("engine").Named("avm").Info("x")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "engine.avm", logs.All()[0].LoggerName)
}

func TestNewLoggerDefaultsAndFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := NewLogger(LogConfig{OutputPaths: []string{path}})
	require.NoError(t, err)
	l.Info("written")

	// Unknown level strings degrade to info rather than failing.
	_, err = NewLogger(LogConfig{Level: "shout", Format: "console", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
}

func TestNewLoggerRejectsBadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"proto://nope"}})
	require.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := observedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil is ignored.
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestNopLoggerIsInert(t *testing.T) {
	n := NewNopLogger()
	n.Debug("x")
	n.Info("x", String("k", "v"))
	n.Warn("x")
	n.Error("x")
	assert.Equal(t, n, n.With(String("k", "v")))
	assert.Equal(t, n, n.Named("child"))
}
