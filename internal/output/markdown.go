package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders reports as markdown tables.
type MarkdownFormatter struct{}

// FormatReport renders the report as Markdown.
func (f *MarkdownFormatter) FormatReport(report *RateLimitReport) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Clases\n\n")
	sb.WriteString("| Clase | Ventana | Máx | Bloqueo | En fallo |\n")
	sb.WriteString("|-------|---------|-----|---------|----------|\n")

	for _, name := range sortedClassNames(report.Classes) {
		policy := report.Classes[name]
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
			escapeMarkdownCell(name),
			escapeMarkdownCell(policy.Window),
			policy.MaxRequests,
			escapeMarkdownCell(policy.Block),
			escapeMarkdownCell(policy.OnError),
		))
	}

	sb.WriteString("\n## Ventanas activas\n\n")
	sb.WriteString("| Clave | Peticiones | Inicio de ventana | Bloqueado hasta |\n")
	sb.WriteString("|-------|------------|-------------------|----------------|\n")

	for _, entry := range report.Entries {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
			escapeMarkdownCell(entry.Key),
			entry.Count,
			entry.WindowStart.UTC().Format("2006-01-02 15:04:05"),
			escapeMarkdownCell(blockedLabel(entry)),
		))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	escaped := strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(escaped, "\n", " ")
}
