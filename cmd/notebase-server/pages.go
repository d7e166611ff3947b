package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/stranger0g/NoteBase/internal/electrolysis"
	"github.com/stranger0g/NoteBase/internal/quiz"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/stranger0g/NoteBase/internal/stoich"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parsePages() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

type indexPage struct {
	Chapters    []string
	Simulations []simulation.ID
	Cations     []stoich.Ion
	Anions      []stoich.Ion
}

type electrolysisPage struct {
	Electrode    electrolysis.Electrode
	Observations []electrolysis.Observation
}

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	s.render(w, "index.html", indexPage{
		Chapters:    quiz.Chapters(),
		Simulations: s.manager.List(),
		Cations:     stoich.Cations,
		Anions:      stoich.Anions,
	})
}

// GET /electrolysis?electrode=copper
// Renders the observation cards as an HTML fragment
func (s *Server) handleElectrolysisPage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	name := r.URL.Query().Get("electrode")
	if name == "" {
		name = string(electrolysis.Inert)
	}
	electrode, err := electrolysis.ParseElectrode(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obs, err := electrolysis.CopperSulfate(electrode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.render(w, "electrolysis.html", electrolysisPage{Electrode: electrode, Observations: obs})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Errorf("Failed to render %s: %v", name, err)
		http.Error(w, "cannot render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
