// Package report exports element data and simulation frames as xlsx workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/stranger0g/NoteBase/internal/formula"
	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/xuri/excelize/v2"
)

const (
	ElementsSheet  = "Relative atomic masses"
	ParticlesSheet = "Particles"
	SummarySheet   = "Summary"

	defaultSheet = "Sheet1"
)

// WriteElementsWorkbook writes the relative atomic mass table, lightest first.
func WriteElementsWorkbook(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, ElementsSheet); err != nil {
		return err
	}
	bold, err := headerStyle(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(ElementsSheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, 2, 14); err != nil {
		return err
	}
	if err := sw.SetRow("A1", header(bold, "Symbol", "Ar")); err != nil {
		return err
	}
	for i, el := range formula.Elements() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []any{el.Symbol, el.Mass}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// WriteFrameWorkbook writes one particle row per particle plus a summary
// sheet with per-population statistics.
func WriteFrameWorkbook(w io.Writer, frame simulation.Frame) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, ParticlesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	bold, err := headerStyle(f)
	if err != nil {
		return err
	}

	if err := writeParticles(f, bold, frame); err != nil {
		return fmt.Errorf("particles sheet: %w", err)
	}
	stats := particles.Summarize(&particles.Set{
		Regime:    frame.Regime,
		Bounds:    frame.Bounds,
		Radius:    frame.Radius,
		Compare:   frame.Compare,
		Started:   frame.Started,
		Particles: frame.Particles,
	})
	if err := writeSummary(f, bold, frame, stats); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

func writeParticles(f *excelize.File, bold int, frame simulation.Frame) error {
	sw, err := f.NewStreamWriter(ParticlesSheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header(bold, "Index", "X", "Y", "VX", "VY", "Speed", "Mass factor", "Colour")); err != nil {
		return err
	}
	for i, p := range frame.Particles {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{i, p.X, p.Y, p.VX, p.VY, p.Speed(), p.MassFactor, p.Color}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func writeSummary(f *excelize.File, bold int, frame simulation.Frame, stats particles.Stats) error {
	sw, err := f.NewStreamWriter(SummarySheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, 6, 16); err != nil {
		return err
	}

	rows := [][]any{
		{"Simulation", string(frame.SimulationID)},
		{"Regime", frame.Regime.String()},
		{"Tick", frame.Tick},
		{"Temperature", frame.Temperature},
		{"Particles", stats.Count},
		{"Mean speed", stats.MeanSpeed},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row[0] = excelize.Cell{StyleID: bold, Value: row[0]}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	// population table after one blank row
	start := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, start)
	if err := sw.SetRow(cell, header(bold, "Mass factor", "Count", "Mean speed", "Right fraction", "Centroid X", "Centroid Y")); err != nil {
		return err
	}
	for i, pop := range stats.Populations {
		cell, _ := excelize.CoordinatesToCellName(1, start+i+1)
		row := []any{pop.MassFactor, pop.Count, pop.MeanSpeed, pop.RightFraction, pop.Centroid.X, pop.Centroid.Y}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
}

func header(style int, names ...string) []any {
	row := make([]any, len(names))
	for i, n := range names {
		row[i] = excelize.Cell{StyleID: style, Value: n}
	}
	return row
}
