package cli

import (
	"fmt"
	"strings"

	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
	"github.com/hydra-dynamix/erasmus/internal/ui"
)

// ReportFormatter implements usecases.ReportFormatter over a styled
// terminal Output.
type ReportFormatter struct {
	out *ui.Output
}

var _ usecases.ReportFormatter = (*ReportFormatter)(nil)

// NewReportFormatter creates a ReportFormatter writing to the default
// stdout/stderr Output.
func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{out: ui.NewOutput()}
}

// PrintSuccess prints msg with any keysAndValues rendered as "key=value"
// suffixes.
func (f *ReportFormatter) PrintSuccess(msg string, keysAndValues ...any) {
	f.out.Success(appendFields(msg, keysAndValues))
}

// PrintError renders err in the error style. A nil err is a no-op.
func (f *ReportFormatter) PrintError(err error) {
	if err == nil {
		return
	}
	f.out.Error(err.Error())
}

// PrintInfo prints an informational message.
func (f *ReportFormatter) PrintInfo(msg string) {
	f.out.Info(msg)
}

func appendFields(msg string, keysAndValues []any) string {
	if len(keysAndValues) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		b.WriteString(" ")
		if key, ok := keysAndValues[i].(string); ok {
			b.WriteString(key)
		}
		b.WriteString("=")
		b.WriteString(formatValue(keysAndValues[i+1]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	default:
		return fmt.Sprint(t)
	}
}
