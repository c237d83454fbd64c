package models

// SeriesPoint is one day of per-material demand
type SeriesPoint struct {
	Date  string  `json:"date"`
	Steel float64 `json:"steel"`
	Wood  float64 `json:"wood"`
	Glass float64 `json:"glass"`
}

// ForecastPayload bundles observed history with the predicted window.
// Both sequences are chronologically ordered.
type ForecastPayload struct {
	Historical []SeriesPoint `json:"historical"`
	Forecast   []SeriesPoint `json:"forecast"`
	Message    string        `json:"message,omitempty"`
}

// Frame is a decoded inbound socket frame
type Frame struct {
	Type       string
	Message    string
	HasMessage bool
	// Payload is nil unless both historical and forecast were present as arrays
	Payload *ForecastPayload
	// PayloadErr is set when the series were present but could not be decoded
	PayloadErr error
}

// Material describes one tracked series
type Material struct {
	Key   string
	Label string
	// Color is the hex stroke color used by the chart
	Color string
}

// Tracked materials in display order
var (
	MaterialSteel = Material{Key: "steel", Label: "Steel", Color: "#e74c3c"}
	MaterialWood  = Material{Key: "wood", Label: "Wood", Color: "#8b4513"}
	MaterialGlass = Material{Key: "glass", Label: "Glass", Color: "#3498db"}
)

// Materials returns the tracked materials in display order
func Materials() []Material {
	return []Material{MaterialSteel, MaterialWood, MaterialGlass}
}

// Value returns the point's value for the given material
func (p SeriesPoint) Value(m Material) float64 {
	switch m.Key {
	case MaterialSteel.Key:
		return p.Steel
	case MaterialWood.Key:
		return p.Wood
	case MaterialGlass.Key:
		return p.Glass
	default:
		return 0
	}
}
