package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/simulation"
)

const (
	graphHeight = 8
	graphWidth  = 60
)

type theme struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	box    lipgloss.Style
}

func newTheme(plain bool) theme {
	if plain {
		plainStyle := lipgloss.NewStyle()
		return theme{
			header: plainStyle,
			label:  plainStyle.Width(14),
			value:  plainStyle,
			graph:  plainStyle,
			box:    plainStyle,
		}
	}
	return theme{
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		graph:  lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0),
		box:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2),
	}
}

func renderSummary(frame simulation.Frame, stats particles.Stats, history map[float64][]float64, plain bool) string {
	th := newTheme(plain)

	var s strings.Builder
	s.WriteString(th.header.Render(strings.ToUpper(frame.Regime.String())+" SIMULATION") + "\n")
	row := func(label, value string) {
		s.WriteString(th.label.Render(label) + th.value.Render(value) + "\n")
	}
	row("Ticks", fmt.Sprintf("%d", frame.Tick))
	row("Temperature", fmt.Sprintf("%g", frame.Temperature))
	row("Particles", fmt.Sprintf("%d", stats.Count))
	row("Mean speed", fmt.Sprintf("%.3f", stats.MeanSpeed))
	if frame.Info != "" {
		row("Info", frame.Info)
	}

	for _, pop := range stats.Populations {
		s.WriteString("\n")
		row("Mass factor", fmt.Sprintf("%g", pop.MassFactor))
		row("  count", fmt.Sprintf("%d", pop.Count))
		row("  mean speed", fmt.Sprintf("%.3f", pop.MeanSpeed))
		row("  right side", fmt.Sprintf("%.1f%%", pop.RightFraction*100))
	}

	if chart := mixingChart(history); chart != "" {
		s.WriteString(th.graph.Render(chart) + "\n")
	}
	return th.box.Render(strings.TrimRight(s.String(), "\n"))
}

// mixingChart plots the right-hand fraction of each population over time.
// It returns "" when fewer than two samples were recorded.
func mixingChart(history map[float64][]float64) string {
	factors := make([]float64, 0, len(history))
	for f, series := range history {
		if len(series) > 1 {
			factors = append(factors, f)
		}
	}
	if len(factors) == 0 {
		return ""
	}
	sort.Float64s(factors)

	data := make([][]float64, len(factors))
	captions := make([]string, len(factors))
	for i, f := range factors {
		data[i] = history[f]
		captions[i] = fmt.Sprintf("m=%g", f)
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.Caption("Fraction right of the midline ("+strings.Join(captions, ", ")+")"),
	)
}
