package report

import (
	"bytes"
	"testing"

	"github.com/stranger0g/NoteBase/internal/formula"
	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteElementsWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteElementsWorkbook(&buf); err != nil {
		t.Fatalf("WriteElementsWorkbook failed: %v", err)
	}

	f := openWorkbook(t, buf.Bytes())
	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != ElementsSheet {
		t.Fatalf("Expected single sheet %q, got %v", ElementsSheet, sheets)
	}

	rows, err := f.GetRows(ElementsSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != len(formula.Elements())+1 {
		t.Fatalf("Expected %d rows, got %d", len(formula.Elements())+1, len(rows))
	}
	if rows[0][0] != "Symbol" || rows[0][1] != "Ar" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "H" || rows[1][1] != "1" {
		t.Errorf("Expected hydrogen first, got %v", rows[1])
	}
	last := rows[len(rows)-1]
	if last[0] != "Bi" || last[1] != "209" {
		t.Errorf("Expected bismuth last, got %v", last)
	}
}

func TestWriteFrameWorkbook(t *testing.T) {
	sim := simulation.New("export", particles.NewEngine(particles.NewRandom(3)),
		simulation.Config{Regime: particles.Diffusion, Compare: true})
	sim.StartDiffusion()
	for i := 0; i < 10; i++ {
		sim.Step()
	}
	frame := sim.Frame()

	var buf bytes.Buffer
	if err := WriteFrameWorkbook(&buf, frame); err != nil {
		t.Fatalf("WriteFrameWorkbook failed: %v", err)
	}

	f := openWorkbook(t, buf.Bytes())
	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != ParticlesSheet || sheets[1] != SummarySheet {
		t.Fatalf("Expected [Particles Summary], got %v", sheets)
	}

	rows, err := f.GetRows(ParticlesSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != len(frame.Particles)+1 {
		t.Errorf("Expected %d rows, got %d", len(frame.Particles)+1, len(rows))
	}
	if rows[0][6] != "Mass factor" || rows[0][7] != "Colour" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "0" || rows[1][7] != particles.ColorLight {
		t.Errorf("Expected first light particle, got %v", rows[1])
	}
	if rows[len(rows)-1][6] != "4" || rows[len(rows)-1][7] != particles.ColorHeavy {
		t.Errorf("Expected last heavy particle, got %v", rows[len(rows)-1])
	}

	summary, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	want := map[string]string{
		"Simulation":  "export",
		"Regime":      "diffusion",
		"Tick":        "10",
		"Temperature": "2",
		"Particles":   "50",
	}
	for _, row := range summary[:6] {
		if v, ok := want[row[0]]; ok && row[1] != v {
			t.Errorf("%s: expected %s, got %s", row[0], v, row[1])
		}
	}
	if summary[7][0] != "Mass factor" {
		t.Errorf("Expected population header on row 8, got %v", summary[7])
	}
	if len(summary) != 10 {
		t.Errorf("Expected two population rows, got %d rows total", len(summary))
	}
	if summary[8][0] != "1" || summary[9][0] != "4" {
		t.Errorf("Expected populations ordered by mass factor, got %v / %v", summary[8], summary[9])
	}
}

func TestWriteFrameWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	frame := simulation.Frame{SimulationID: "empty", Regime: particles.Gas, Bounds: particles.Bounds{Width: 10, Height: 10}}
	if err := WriteFrameWorkbook(&buf, frame); err != nil {
		t.Fatalf("WriteFrameWorkbook failed: %v", err)
	}
	f := openWorkbook(t, buf.Bytes())
	rows, _ := f.GetRows(ParticlesSheet)
	if len(rows) != 1 {
		t.Errorf("Expected header only, got %d rows", len(rows))
	}
}
