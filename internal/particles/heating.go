package particles

// HeatingCurveSegments lists the heating curve sections in order of rising
// temperature.
var HeatingCurveSegments = []string{"solid", "melting", "liquid", "boiling", "gas"}

// HeatingCurveDefault is shown when no segment is selected.
const HeatingCurveDefault = "Hover over a section of the heating curve above."

var heatingCurveCaptions = map[string]string{
	"solid":   "Solid phase: Added energy increases average kinetic energy (particles vibrate more). Temperature increases.",
	"melting": "Melting: Added energy (latent heat of fusion) overcomes intermolecular forces, increasing potential energy. Average kinetic energy (Temperature) remains constant at the Melting Point.",
	"liquid":  "Liquid phase: Added energy increases average kinetic energy (particles move faster). Temperature increases.",
	"boiling": "Boiling: Added energy (latent heat of vaporization) overcomes remaining intermolecular forces, significantly increasing potential energy. Average kinetic energy (Temperature) remains constant at the Boiling Point.",
	"gas":     "Gas phase: Added energy increases average kinetic energy (particles move faster). Temperature increases.",
}

// HeatingCurveInfo returns the explanation for a heating curve segment.
// Unknown or empty segments get HeatingCurveDefault and false.
func HeatingCurveInfo(segment string) (string, bool) {
	if caption, ok := heatingCurveCaptions[segment]; ok {
		return caption, true
	}
	return HeatingCurveDefault, false
}
