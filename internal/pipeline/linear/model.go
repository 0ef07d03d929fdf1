// Package linear evaluates an exported linear price model with one-hot
// encoded categorical columns.
package linear

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/homedex/internal/domain/estimate"
)

// Model is the on-disk form of an exported model:
//
//	intercept: 11.2
//	numeric:
//	  built_up_area: 0.0004
//	categorical:
//	  sector:
//	    sector 45: 0.31
type Model struct {
	Intercept   float64                       `yaml:"intercept"`
	Numeric     map[string]float64            `yaml:"numeric"`
	Categorical map[string]map[string]float64 `yaml:"categorical"`
}

// Pipeline predicts log(1 + price) as a dot product of the encoded
// features with the model coefficients.
type Pipeline struct {
	intercept float64
	numCols   []string
	numCoef   []float64
	catCoef   map[string]map[string]float64
	levels    estimate.Levels
}

// Load reads a YAML model from path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided model path
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return New(&m)
}

// New validates m and builds a pipeline.
func New(m *Model) (*Pipeline, error) {
	if !finite(m.Intercept) {
		return nil, fmt.Errorf("intercept must be finite")
	}

	p := &Pipeline{
		intercept: m.Intercept,
		catCoef:   make(map[string]map[string]float64, len(m.Categorical)),
		levels:    make(estimate.Levels, len(m.Categorical)),
	}

	for col := range m.Numeric {
		if !slices.Contains(estimate.NumericColumns, col) {
			return nil, fmt.Errorf("unknown numeric column %q", col)
		}
		p.numCols = append(p.numCols, col)
	}
	sort.Strings(p.numCols)
	p.numCoef = make([]float64, len(p.numCols))
	for i, col := range p.numCols {
		c := m.Numeric[col]
		if !finite(c) {
			return nil, fmt.Errorf("numeric coefficient %q must be finite", col)
		}
		p.numCoef[i] = c
	}

	for col, coefs := range m.Categorical {
		if !slices.Contains(estimate.CategoricalColumns, col) {
			return nil, fmt.Errorf("unknown categorical column %q", col)
		}
		if len(coefs) == 0 {
			return nil, fmt.Errorf("categorical column %q has no levels", col)
		}
		levels := make([]string, 0, len(coefs))
		for level, c := range coefs {
			if !finite(c) {
				return nil, fmt.Errorf("coefficient %s=%q must be finite", col, level)
			}
			levels = append(levels, level)
		}
		p.catCoef[col] = coefs
		p.levels[col] = levels
	}
	p.levels = p.levels.Normalize()

	return p, nil
}

// Predict returns the model output for f.
func (p *Pipeline) Predict(_ context.Context, f *estimate.Features) (float64, error) {
	num := f.Numeric()
	x := make([]float64, len(p.numCols))
	for i, col := range p.numCols {
		x[i] = num[col]
	}
	y := p.intercept + floats.Dot(x, p.numCoef)

	cat := f.Categorical()
	for col, coefs := range p.catCoef {
		c, ok := coefs[cat[col]]
		if !ok {
			return 0, fmt.Errorf("found unknown categories [%q] in column %s during transform", cat[col], col)
		}
		y += c
	}
	return y, nil
}

// Levels returns the categorical levels the model was trained on.
func (p *Pipeline) Levels(_ context.Context) (estimate.Levels, error) {
	return p.levels, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
