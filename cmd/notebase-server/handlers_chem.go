package main

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/stranger0g/NoteBase/internal/atom"
	"github.com/stranger0g/NoteBase/internal/electrolysis"
	"github.com/stranger0g/NoteBase/internal/energetics"
	"github.com/stranger0g/NoteBase/internal/formula"
	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/quiz"
	"github.com/stranger0g/NoteBase/internal/report"
	"github.com/stranger0g/NoteBase/internal/stoich"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type formulaRequest struct {
	Formula string `json:"formula"`
}

type formulaResponse struct {
	Formula string  `json:"formula"`
	Mr      float64 `json:"mr"`
	MathJax string  `json:"mathjax"`
}

// handleFormulaRoutes serves /api/formula/mass and /api/formula/composition
func (s *Server) handleFormulaRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/formula/mass" && r.Method == http.MethodPost:
		s.handleFormulaMass(w, r)
	case r.URL.Path == "/api/formula/composition" && r.Method == http.MethodGet:
		s.handleComposition(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// POST /api/formula/mass
// Body: {"formula": "Ca(OH)2"}
func (s *Server) handleFormulaMass(w http.ResponseWriter, r *http.Request) {
	var req formulaRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := strings.TrimSpace(req.Formula)
	if f == "" {
		http.Error(w, "formula is required", http.StatusBadRequest)
		return
	}

	mr, err := formula.RelativeFormulaMass(f)
	if err != nil {
		writeFormulaError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, formulaResponse{Formula: f, Mr: mr, MathJax: formula.MathJax(f)})
}

// GET /api/formula/composition?formula=H2SO4
func (s *Server) handleComposition(w http.ResponseWriter, r *http.Request) {
	f := strings.TrimSpace(r.URL.Query().Get("formula"))
	if f == "" {
		http.Error(w, "formula query parameter is required", http.StatusBadRequest)
		return
	}

	shares, err := formula.PercentByMass(f)
	if err != nil {
		writeFormulaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"formula": f, "shares": shares})
}

func writeFormulaError(w http.ResponseWriter, err error) {
	var perr *formula.ParseError
	if !errors.As(err, &perr) {
		writeErrorJSON(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": perr.Error(),
		"kind":  perr.Kind,
		"index": perr.Index,
	})
}

// GET /api/elements
func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"elements": formula.Elements()})
}

// GET /api/elements.xlsx
func (s *Server) handleElementsWorkbook(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteElementsWorkbook(&buf); err != nil {
		s.logger.Errorf("Failed to build elements workbook: %v", err)
		http.Error(w, "cannot build workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeWorkbook(w, "relative-atomic-masses.xlsx", buf.Bytes())
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type molesRequest struct {
	Mass      *float64 `json:"mass"`
	MolarMass *float64 `json:"molar_mass"`
	Moles     *float64 `json:"moles"`
	Volume    *float64 `json:"volume"`
	Conc      *float64 `json:"concentration"`
}

type ratioRequest struct {
	Actual      float64 `json:"actual"`
	Theoretical float64 `json:"theoretical"`
	Pure        float64 `json:"pure"`
	Total       float64 `json:"total"`
}

type ionicRequest struct {
	Cation stoich.Ion `json:"cation"`
	Anion  stoich.Ion `json:"anion"`
}

type balanceRequest struct {
	H2  int `json:"h2"`
	O2  int `json:"o2"`
	H2O int `json:"h2o"`
}

type empiricalRequest struct {
	Elements []stoich.ElementInput `json:"elements"`
}

// POST /api/stoich/{calculator}
func (s *Server) handleStoich(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/stoich/")
	if name == "ions" && r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{"cations": stoich.Cations, "anions": stoich.Anions})
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var (
		result any
		err    error
	)
	switch name {
	case "moles-mass", "particles", "gas", "concentration":
		var req molesRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err = molesCalculation(name, req)
	case "empirical":
		var req empiricalRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err = stoich.EmpiricalFormula(req.Elements)
	case "yield", "purity":
		var req ratioRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if name == "yield" {
			result, err = stoich.PercentageYield(req.Actual, req.Theoretical)
		} else {
			result, err = stoich.PercentagePurity(req.Pure, req.Total)
		}
	case "ionic":
		var req ionicRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err = stoich.IonicFormula(req.Cation, req.Anion)
	case "balance":
		var req balanceRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err = stoich.CheckWaterBalance(req.H2, req.O2, req.H2O)
	default:
		http.Error(w, "unknown calculator: "+name, http.StatusNotFound)
		return
	}

	if err != nil {
		if errors.Is(err, stoich.ErrInvalidInput) {
			writeErrorJSON(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.Errorf("Calculator %s failed: %v", name, err)
		writeErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func molesCalculation(name string, req molesRequest) (any, error) {
	switch name {
	case "moles-mass":
		return stoich.MolesMass(req.Mass, req.MolarMass, req.Moles)
	case "particles":
		if req.Moles == nil {
			return nil, &stoich.InputError{Field: "moles", Reason: "moles is required"}
		}
		return stoich.Particles(*req.Moles)
	case "gas":
		return stoich.GasVolume(req.Volume, req.Moles)
	default:
		return stoich.Concentration(req.Moles, req.Volume, req.Conc)
	}
}

// GET /api/atom?protons=11&neutrons=12
func (s *Server) handleAtom(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	protons, err := strconv.Atoi(q.Get("protons"))
	if err != nil {
		http.Error(w, "invalid protons: "+q.Get("protons"), http.StatusBadRequest)
		return
	}
	neutrons := 0
	if v := q.Get("neutrons"); v != "" {
		if neutrons, err = strconv.Atoi(v); err != nil {
			http.Error(w, "invalid neutrons: "+v, http.StatusBadRequest)
			return
		}
	}

	a, err := atom.Build(protons, neutrons)
	if err != nil {
		writeErrorJSON(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"atom":          a,
		"configuration": a.ConfigString(),
	})
}

// handleHeatingCurve returns the caption for ?segment=. Without a segment it
// lists the segments next to the default caption.
func (s *Server) handleHeatingCurve(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	segment := r.URL.Query().Get("segment")
	if segment == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"segments": particles.HeatingCurveSegments,
			"info":     particles.HeatingCurveDefault,
		})
		return
	}
	info, ok := particles.HeatingCurveInfo(segment)
	if !ok {
		http.Error(w, "unknown heating curve segment: "+segment, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"segment": segment, "info": info})
}

type deltaHRequest struct {
	Broken float64 `json:"broken"`
	Formed float64 `json:"formed"`
}

// POST /api/energetics/delta-h
// Body: {"broken": 2648, "formed": 3466}
func (s *Server) handleDeltaH(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req deltaHRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h, err := energetics.DeltaH(req.Broken, req.Formed)
	if err != nil {
		writeErrorJSON(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enthalpy":  h,
		"formatted": h.Formatted(),
		"equation":  h.Equation(),
	})
}

// GET /api/electrolysis/cuso4?electrode=inert
func (s *Server) handleElectrolysis(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	electrode, err := electrolysis.ParseElectrode(r.URL.Query().Get("electrode"))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	obs, err := electrolysis.CopperSulfate(electrode)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"electrode": electrode, "observations": obs})
}

// GET /api/quiz/prompts/{chapter}
// GET /api/quiz/prompts/ lists the chapters
func (s *Server) handleQuizPrompt(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	chapter := strings.TrimPrefix(r.URL.Path, "/api/quiz/prompts/")
	if chapter == "" {
		writeJSON(w, http.StatusOK, map[string]any{"chapters": quiz.Chapters()})
		return
	}

	prompt, err := quiz.ChapterPrompt(chapter)
	if err != nil {
		if errors.Is(err, quiz.ErrUnknownChapter) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"chapter": chapter, "prompt": prompt})
}
