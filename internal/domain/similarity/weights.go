package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Signals is the number of similarity matrices blended into one score.
const Signals = 3

// Weights linearly combines the three similarity signals.
type Weights struct {
	Text     float64 `yaml:"text" json:"text"`
	Location float64 `yaml:"location" json:"location"`
	Amenity  float64 `yaml:"amenity" json:"amenity"`
}

// DefaultWeights returns the weights the similarity matrices were tuned with.
func DefaultWeights() Weights {
	return Weights{Text: 0.5, Location: 0.8, Amenity: 1.0}
}

// Values returns the weights in matrix order.
func (w Weights) Values() [Signals]float64 {
	return [Signals]float64{w.Text, w.Location, w.Amenity}
}

// Validate rejects negative, non-finite and all-zero weights.
func (w Weights) Validate() error {
	var sum float64
	for i, v := range w.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %d must be finite", i+1)
		}
		if v < 0 {
			return fmt.Errorf("weight %d must be non-negative, got %g", i+1, v)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}

// Key is a stable string form used in cache keys.
func (w Weights) Key() string {
	return fmt.Sprintf("%g:%g:%g", w.Text, w.Location, w.Amenity)
}

// CompositeRow returns w1*M1[q] + w2*M2[q] + w3*M3[q].
// All matrices must share the same size.
func CompositeRow(ms [Signals]Matrix, w Weights, q int) []float64 {
	out := make([]float64, ms[0].Size())
	for i, wv := range w.Values() {
		if wv == 0 {
			continue
		}
		floats.AddScaled(out, wv, ms[i].Row(q))
	}
	return out
}
