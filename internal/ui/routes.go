package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RouteLine is one row of the startup route table.
type RouteLine struct {
	Method string
	Path   string
}

// Startup renders the banner printed by the serve command: listen address, front-end origin and route table.
func Startup(addr, frontend string, routes []RouteLine) string {
	var b strings.Builder

	b.WriteString(styles.Title("insights relay"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", styles.OK("listening"), "http://"+addr)
	fmt.Fprintf(&b, "%s %s\n", styles.Help("frontend "), frontend)
	b.WriteString(RouteTable(routes))
	b.WriteString("\n")

	return b.String()
}

// RouteTable renders routes as a bordered two-column table.
func RouteTable(routes []RouteLine) string {
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, []string{r.Method, r.Path})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.help).
		Headers("METHOD", "PATH").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 0 {
				return s.Inherit(styles.ok)
			}
			return s
		}).
		String()
}
