package output

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders reports as ASCII tables.
type TableFormatter struct{}

// FormatReport renders the class table followed by the live entries.
func (f *TableFormatter) FormatReport(report *RateLimitReport) (string, error) {
	if report == nil {
		return "", nil
	}

	classes := table.NewWriter()
	classes.SetStyle(table.StyleRounded)
	classes.SetTitle("Clases")
	classes.AppendHeader(table.Row{"Clase", "Ventana", "Máx", "Bloqueo", "En fallo"})

	for _, name := range sortedClassNames(report.Classes) {
		policy := report.Classes[name]
		classes.AppendRow(table.Row{name, policy.Window, policy.MaxRequests, policy.Block, policy.OnError})
	}

	entries := table.NewWriter()
	entries.SetStyle(table.StyleRounded)
	entries.SetTitle("Ventanas activas")
	entries.AppendHeader(table.Row{"Clave", "Peticiones", "Inicio de ventana", "Bloqueado hasta"})

	for _, entry := range report.Entries {
		entries.AppendRow(table.Row{
			entry.Key,
			entry.Count,
			entry.WindowStart.UTC().Format("2006-01-02 15:04:05"),
			blockedLabel(entry),
		})
	}

	var sb strings.Builder
	sb.WriteString(classes.Render())
	sb.WriteString("\n")
	sb.WriteString(entries.Render())
	return sb.String(), nil
}

func sortedClassNames(classes map[string]ClassPolicy) []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
