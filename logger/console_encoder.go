package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	time      string
	component string
	value     string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	"gruvbox": {
		time:      "\x1b[38;5;108m",
		component: "\x1b[38;5;208m",
		value:     "\x1b[38;5;109m",
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
	"everforest": {
		time:      "\x1b[38;5;107m",
		component: "\x1b[38;5;108m",
		value:     "\x1b[38;5;109m",
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
}

// Current active theme (set by logger.Initialize from config or environment)
var currentTheme = "everforest"

// SetTheme configures the color scheme for console output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

// HasTheme reports whether theme names a known color scheme.
func HasTheme(theme string) bool {
	_, ok := themes[theme]
	return ok
}

// fieldOrder lists the fields rendered by the console encoder, in display order.
// Other fields are dropped from console output; use JSON output to see them.
var fieldOrder = []string{FieldFile, FieldClass, FieldMethod, FieldVariable, FieldExpression, FieldPointer, FieldType, FieldCount, FieldFailed, FieldDurationMS, FieldError}

// consoleEncoder renders compact lines for humans.
// Format: "13:04:35  WARN  rettype  Unknown return variable  file=VectorPyImp.cpp expression=foo(bar)"
type consoleEncoder struct {
	zapcore.Encoder // Embedded for field serialization of With() fields
	pool            buffer.Pool
}

func newConsoleEncoder() *consoleEncoder {
	return &consoleEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		pool:    buffer.NewPool(),
	}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{
		Encoder: enc.Encoder.Clone(),
		pool:    enc.pool,
	}
}

func (enc *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	p := themes[currentTheme]
	final := enc.pool.Get()

	final.AppendString(p.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if label := levelLabel(ent.Level, p); label != "" {
		final.AppendString("  ")
		final.AppendString(label)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(p.component)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	if rendered := renderFields(fields, p); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelLabel returns bold + colored + background for WARN/ERROR, plain for DEBUG
func levelLabel(level zapcore.Level, p palette) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.WarnLevel:
		return colorBold + p.warnBg + p.warn + "WARN" + colorReset
	default:
		return colorBold + p.errBg + p.err + level.CapitalString() + colorReset
	}
}

func renderFields(fields []zapcore.Field, p palette) string {
	byKey := make(map[string]string, len(fields))
	for _, f := range fields {
		byKey[f.Key] = fieldValue(f)
	}

	var parts []string
	for _, key := range fieldOrder {
		val, ok := byKey[key]
		if !ok || val == "" {
			continue
		}
		parts = append(parts, key+"="+p.value+val+colorReset)
	}
	return strings.Join(parts, " ")
}

// fieldValue extracts the value from a zap field, handling different field types
func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}
