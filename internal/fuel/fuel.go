package fuel

import "errors"

// ErrInvalidInput is returned when a fuel calculation receives arguments outside its domain.
var ErrInvalidInput = errors.New("fuel: invalid input")

// LoadStatus represents whether a vehicle is running with cargo or empty.
type LoadStatus string

const (
	LoadStatusLoaded LoadStatus = "loaded"
	LoadStatusEmpty  LoadStatus = "empty"
)

func (s LoadStatus) Valid() bool {
	return s == LoadStatusLoaded || s == LoadStatusEmpty
}

// Profile is the consumption profile of a vehicle in kilometres per liter.
// A loaded vehicle is expected to be no more efficient than an empty one.
type Profile struct {
	EmptyKmPerLiter  float64 `json:"empty_km_per_liter"`
	LoadedKmPerLiter float64 `json:"loaded_km_per_liter"`
}

// Efficiency returns the km/L figure that applies to the given load status.
func (p Profile) Efficiency(status LoadStatus) float64 {
	if status == LoadStatusLoaded {
		return p.LoadedKmPerLiter
	}

	return p.EmptyKmPerLiter
}

// Plan is the fuel required for a single trip. Values are not rounded.
type Plan struct {
	DistanceKm           float64    `json:"distance_km"`
	LoadStatus           LoadStatus `json:"load_status"`
	EfficiencyKmPerLiter float64    `json:"efficiency_km_per_liter"`
	BufferPercent        int        `json:"buffer_percent"`
	BaseLiters           float64    `json:"base_liters"`
	BufferLiters         float64    `json:"buffer_liters"`
	TotalLiters          float64    `json:"total_liters"`
}

// Comparison holds the loaded and empty plans for the same route.
type Comparison struct {
	Loaded       Plan    `json:"loaded"`
	Empty        Plan    `json:"empty"`
	DeltaLiters  float64 `json:"delta_liters"`
	DeltaPercent float64 `json:"delta_percent"`
}
