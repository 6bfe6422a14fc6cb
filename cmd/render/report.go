package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/marben/juliaset/render"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
)

// report renders the run summary shown with -stats.
func report(title string, s render.Stats) string {
	row := func(label string, v any) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(fmt.Sprint(v)))
	}
	pct := func(n int) string {
		return fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(max(1, s.Points)))
	}

	rows := []string{
		headerStyle.Render(title),
		row("points", s.Points),
		row("bounded", pct(s.Bounded)),
		row("escaped", pct(s.Escaped)),
		row("faults", pct(s.Faults)),
		row("mean escape", fmt.Sprintf("%.2f", s.MeanEscape)),
	}
	if s.Escaped > 0 {
		chart := asciigraph.Plot(s.Histogram, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("escape count histogram"))
		rows = append(rows, graphStyle.Render(chart))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
