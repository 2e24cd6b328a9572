package history

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportMarkdown renders a run record as a markdown document.
func ExportMarkdown(rec *Record) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", rec.Preset))
	b.WriteString(fmt.Sprintf("- **Run:** %s\n", rec.ID))
	b.WriteString(fmt.Sprintf("- **Program:** %s\n", rec.Program))
	if len(rec.Args) > 0 {
		b.WriteString(fmt.Sprintf("- **Args:** `%s`\n", strings.Join(rec.Args, " ")))
	}
	b.WriteString(fmt.Sprintf("- **Command:** `%s`\n", strings.Join(rec.Argv, " ")))
	b.WriteString(fmt.Sprintf("- **Started:** %s\n", rec.StartedAt.Format("2006-01-02 15:04:05")))
	if !rec.EndedAt.IsZero() {
		b.WriteString(fmt.Sprintf("- **Ended:** %s\n", rec.EndedAt.Format("2006-01-02 15:04:05")))
	}
	b.WriteString(fmt.Sprintf("- **Status:** %s", rec.Status))
	if rec.Status == StatusExited || rec.Status == StatusFailed {
		b.WriteString(fmt.Sprintf(" (exit code %d)", rec.ExitCode))
	}
	b.WriteString("\n")

	return b.String()
}

// ExportJSON renders a run record as formatted JSON.
func ExportJSON(rec *Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}
