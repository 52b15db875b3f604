package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: VerbosityUser},
		{name: "Console output mode", jsonOutput: false, verbosity: VerbosityDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Cleanup()
			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv+)", LevelName(9))
	assert.Equal(t, "Unknown", LevelName(-3))
}

func TestComponentLogger_NamesEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	defer func() { Logger = zap.NewNop().Sugar() }()

	ComponentLogger("rettype").Warnw("Unknown return variable", FieldExpression, "foo(bar)")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rettype", entries[0].LoggerName)
	assert.Equal(t, "foo(bar)", entries[0].ContextMap()[FieldExpression])
}

func TestConsoleEncoder_RendersKnownFields(t *testing.T) {
	SetTheme("gruvbox")
	defer SetTheme("everforest")

	enc := newConsoleEncoder()
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:      zapcore.WarnLevel,
		Time:       time.Date(2024, 1, 1, 13, 4, 35, 0, time.UTC),
		LoggerName: "rettype",
		Message:    "Unknown return variable",
	}, []zapcore.Field{
		zap.String(FieldExpression, "foo(bar)"),
		zap.Int(FieldCount, 3),
		zap.String("ignored", "x"),
	})
	require.NoError(t, err)

	line := buf.String()
	assert.Contains(t, line, "13:04:35")
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "rettype")
	assert.Contains(t, line, "Unknown return variable")
	assert.Contains(t, line, "expression=")
	assert.Contains(t, line, "foo(bar)")
	assert.Contains(t, line, "count=")
	assert.NotContains(t, line, "ignored")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestSetTheme_IgnoresUnknown(t *testing.T) {
	SetTheme("solarized")
	assert.Equal(t, "everforest", currentTheme)
}
