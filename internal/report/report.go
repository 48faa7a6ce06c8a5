// Package report renders run summaries for the terminal.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/etrack/internal/analysis"
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/optim"
	"github.com/san-kum/etrack/internal/storage"
)

func num(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, MetricLabel.Render(label), MetricValue.Render(value))
}

// table renders a header and rows in columns sized to their widest cell.
func table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(r[i]))
		}
	}

	render := func(cells []string) string {
		cols := make([]string, len(widths))
		for i, w := range widths {
			text := ""
			if i < len(cells) {
				text = cells[i]
			}
			cols[i] = lipgloss.NewStyle().Width(w + columnGap).Render(text)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	var b strings.Builder
	b.WriteString(Header.Render(render(headers)))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(render(r))
		b.WriteString("\n")
	}
	return b.String()
}

// Summary describes one trajectory and its metrics. dev may be nil when no
// analytic reference exists.
func Summary(title string, tr *dynamo.Trajectory, dev *analysis.Deviation) string {
	lines := []string{Title.Render(title)}
	lines = append(lines,
		row("samples", fmt.Sprint(tr.Len())),
		row("steps", fmt.Sprint(tr.Steps)),
		row("step size [s]", num(tr.StepSize)),
	)
	if tr.Len() > 0 {
		final := tr.Final()
		lines = append(lines,
			row("t end [s]", num(tr.Times[tr.Len()-1])),
			row("final position [m]", fmt.Sprintf("%s %s %s", num(final[0]), num(final[1]), num(final[2]))),
			row("final speed [m/s]", num(final[3:6].Norm())),
		)
	}

	names := make([]string, 0, len(tr.Metrics))
	for name := range tr.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, row(name, num(tr.Metrics[name])))
	}

	if dev != nil {
		lines = append(lines,
			row("max position error [m]", num(dev.MaxPosition)),
			row("rms position error [m]", num(dev.RMSPosition)),
			row("max velocity error", num(dev.MaxRelVelocity)),
		)
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// Sweep tabulates the end state of each traced angle.
func Sweep(angles []float64, trs []*dynamo.Trajectory) string {
	rows := make([][]string, 0, len(trs))
	for i, tr := range trs {
		final := tr.Final()
		rows = append(rows, []string{
			num(angles[i]),
			fmt.Sprint(tr.Steps),
			num(final[2]),
			num(final[3:6].Norm()),
			num(tr.Metrics["kinetic_energy_drift"]),
		})
	}
	return table([]string{"theta [rad]", "steps", "z end [m]", "speed [m/s]", "ke drift"}, rows)
}

// Convergence tabulates a CFL study; passing rows are those within target.
func Convergence(points []optim.Point, target float64) string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		status := Good.Render("ok")
		if p.Deviation > target || math.IsNaN(p.Deviation) {
			status = Bad.Render("over")
		}
		rows = append(rows, []string{p.Method, num(p.CFL), fmt.Sprint(p.Steps), num(p.Deviation), status})
	}
	return table([]string{"method", "cfl", "steps", "deviation", "target"}, rows)
}

// Runs lists stored runs, oldest first.
func Runs(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return Subtle.Render("no stored runs")
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{r.ID, r.Model, r.Method, r.Field, fmt.Sprint(r.Steps)})
	}
	return table([]string{"id", "model", "method", "field", "steps"}, rows)
}

// List renders a titled list of names.
func List(title string, names []string) string {
	lines := []string{Title.Render(title)}
	for _, n := range names {
		lines = append(lines, "  "+n)
	}
	return strings.Join(lines, "\n")
}
