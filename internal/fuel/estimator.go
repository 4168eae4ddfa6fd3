package fuel

import (
	"fmt"
	"math"
)

const (
	minBufferPercent = 0
	maxBufferPercent = 100
)

// Estimate computes the fuel plan for a trip of distanceKm with the given load status.
// It is a pure function: identical inputs always produce identical plans.
func Estimate(distanceKm float64, status LoadStatus, profile Profile, bufferPercent int) (Plan, error) {
	if err := validateTrip(distanceKm, bufferPercent); err != nil {
		return Plan{}, err
	}

	if !status.Valid() {
		return Plan{}, fmt.Errorf("%w: unknown load status %q", ErrInvalidInput, status)
	}

	efficiency := profile.Efficiency(status)
	if !isPositive(efficiency) {
		return Plan{}, fmt.Errorf("%w: %s efficiency must be positive, got %v", ErrInvalidInput, status, efficiency)
	}

	base := distanceKm / efficiency
	buffer := base * float64(bufferPercent) / 100

	return Plan{
		DistanceKm:           distanceKm,
		LoadStatus:           status,
		EfficiencyKmPerLiter: efficiency,
		BufferPercent:        bufferPercent,
		BaseLiters:           base,
		BufferLiters:         buffer,
		TotalLiters:          base + buffer,
	}, nil
}

// CompareLoadedVsEmpty estimates the same route with and without cargo.
// Profiles where loaded efficiency beats empty efficiency are computed as given.
func CompareLoadedVsEmpty(distanceKm float64, profile Profile, bufferPercent int) (Comparison, error) {
	loaded, err := Estimate(distanceKm, LoadStatusLoaded, profile, bufferPercent)
	if err != nil {
		return Comparison{}, err
	}

	empty, err := Estimate(distanceKm, LoadStatusEmpty, profile, bufferPercent)
	if err != nil {
		return Comparison{}, err
	}

	delta := loaded.TotalLiters - empty.TotalLiters

	return Comparison{
		Loaded:       loaded,
		Empty:        empty,
		DeltaLiters:  delta,
		DeltaPercent: delta / loaded.TotalLiters * 100,
	}, nil
}

func validateTrip(distanceKm float64, bufferPercent int) error {
	if !isPositive(distanceKm) {
		return fmt.Errorf("%w: distance must be positive, got %v", ErrInvalidInput, distanceKm)
	}

	if bufferPercent < minBufferPercent || bufferPercent > maxBufferPercent {
		return fmt.Errorf("%w: buffer percent must be between %d and %d, got %d",
			ErrInvalidInput, minBufferPercent, maxBufferPercent, bufferPercent)
	}

	return nil
}

// isPositive rejects zero, negatives, NaN and infinities.
func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
