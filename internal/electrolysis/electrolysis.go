// Package electrolysis holds the observations for the electrolysis of aqueous copper(II) sulfate.
package electrolysis

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownElectrode = errors.New("electrolysis: invalid electrode type selected")

// Electrode is the electrode material.
type Electrode string

const (
	Inert  Electrode = "inert"
	Copper Electrode = "copper"
)

// ParseElectrode accepts "inert" or "copper" in any case.
func ParseElectrode(s string) (Electrode, error) {
	switch e := Electrode(strings.ToLower(strings.TrimSpace(s))); e {
	case Inert, Copper:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownElectrode, s)
	}
}

// Observation is one card in the results panel. Text may contain TeX.
type Observation struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Type  string `json:"type"`
}

var (
	cathodeReaction = Observation{
		Title: "Cathode (-) Reaction (Reduction)",
		Text:  `\( Cu^{2+}(aq) + 2e^- \rightarrow Cu(s) \)`,
		Type:  "info",
	}
	cathodeObservation = Observation{
		Title: "Cathode Observation",
		Text:  "Pink/brown solid (copper) deposits.",
		Type:  "info",
	}

	inertObservations = []Observation{
		cathodeReaction,
		cathodeObservation,
		{
			Title: "Anode (+) Reaction (Oxidation)",
			Text:  `\( 4OH^-(aq) \rightarrow O_2(g) + 2H_2O(l) + 4e^- \)<br>(OH⁻ easier to oxidise than SO₄²⁻)`,
			Type:  "info",
		},
		{Title: "Anode Observation", Text: "Bubbles of colourless gas (oxygen) form.", Type: "info"},
		{
			Title: "Electrolyte Change",
			Text:  `Blue colour fades as \(Cu^{2+}\) is removed. Solution becomes acidic (excess \(H^+\) ions).`,
			Type:  "warning",
		},
	}

	copperObservations = []Observation{
		cathodeReaction,
		cathodeObservation,
		{
			Title: "Anode (+) Reaction (Oxidation)",
			Text:  `\( Cu(s) \rightarrow Cu^{2+}(aq) + 2e^- \)<br>(Copper anode itself oxidises)`,
			Type:  "info",
		},
		{Title: "Anode Observation", Text: "Copper anode dissolves / gets smaller.", Type: "info"},
		{
			Title: "Electrolyte Change",
			Text:  `Concentration of \(Cu^{2+}\) and blue colour remain approx. constant.`,
			Type:  "success",
		},
	}
)

// CopperSulfate returns the observations for the given electrodes.
// The returned slice is a copy.
func CopperSulfate(e Electrode) ([]Observation, error) {
	var src []Observation
	switch e {
	case Inert:
		src = inertObservations
	case Copper:
		src = copperObservations
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElectrode, string(e))
	}
	out := make([]Observation, len(src))
	copy(out, src)
	return out, nil
}
