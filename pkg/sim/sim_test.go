package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalVar(name string, mean, stddev float64) Variable {
	return Variable{
		Name:         name,
		Distribution: "normal",
		Parameters:   map[string]float64{"mean": mean, "stddev": stddev},
	}
}

func TestCompileAcceptsDeclaredVariables(t *testing.T) {
	vars := []Variable{normalVar("revenue", 100, 10), normalVar("cost", 40, 5)}
	for _, formula := range []string{
		"revenue - cost",
		"revenue * 0.3 - cost",
		"(revenue - cost) / revenue",
	} {
		_, err := Compile(formula, vars)
		assert.NoError(t, err, formula)
	}
}

func TestCompileRejectsUndeclaredIdentifiers(t *testing.T) {
	vars := []Variable{normalVar("revenue", 100, 10)}
	tests := []struct {
		name    string
		formula string
	}{
		{"unknown variable", "revenue - cost"},
		{"function call", "exec(revenue)"},
		{"dunder call", "__import__('os').system('ls')"},
		{"builtin", "len(revenue)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.formula, vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "undeclared identifier")
		})
	}
}

func TestCompileEmptyFormula(t *testing.T) {
	_, err := Compile("", []Variable{normalVar("x", 0, 1)})
	require.Error(t, err)
}

func TestRunNormalDifference(t *testing.T) {
	result, err := Run(Request{
		Variables: []Variable{normalVar("revenue", 1000, 50), normalVar("cost", 400, 20)},
		Formula:   "revenue - cost",
		NumTrials: 20000,
	})
	require.NoError(t, err)
	require.Len(t, result.Samples, 20000)

	// revenue - cost ~ N(600, sqrt(50^2+20^2)). Loose bounds keep the test
	// stable across seeds.
	assert.InDelta(t, 600, result.Summary.Mean, 5)
	assert.Less(t, result.Summary.Percentile5, result.Summary.Mean)
	assert.Greater(t, result.Summary.Percentile95, result.Summary.Mean)
}

func TestRunDefaultsTrials(t *testing.T) {
	result, err := Run(Request{
		Variables: []Variable{normalVar("x", 0, 1)},
		Formula:   "x",
	})
	require.NoError(t, err)
	assert.Len(t, result.Samples, 10000)
}

func TestRunTrialLimit(t *testing.T) {
	_, err := Run(Request{
		Variables: []Variable{normalVar("x", 0, 1)},
		Formula:   "x",
		NumTrials: 2_000_000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestRunNoVariables(t *testing.T) {
	_, err := Run(Request{Formula: "1 + 1"})
	require.Error(t, err)
}

func TestSampleUniformWithinBounds(t *testing.T) {
	samples, err := sampleDistribution(Variable{
		Name:         "u",
		Distribution: "uniform",
		Parameters:   map[string]float64{"min": 2, "max": 5},
	}, 5000)
	require.NoError(t, err)
	for _, s := range samples {
		assert.GreaterOrEqual(t, s, 2.0)
		assert.LessOrEqual(t, s, 5.0)
	}
}

func TestSampleTriangularWithinBounds(t *testing.T) {
	samples, err := sampleDistribution(Variable{
		Name:         "t",
		Distribution: "triangular",
		Parameters:   map[string]float64{"min": 10, "mode": 20, "max": 50},
	}, 5000)
	require.NoError(t, err)

	var sum float64
	for _, s := range samples {
		require.GreaterOrEqual(t, s, 10.0)
		require.LessOrEqual(t, s, 50.0)
		sum += s
	}
	// Triangular mean is (min+mode+max)/3.
	assert.InDelta(t, (10+20+50)/3.0, sum/float64(len(samples)), 1.5)
}

func TestSampleLognormalIsPositive(t *testing.T) {
	samples, err := sampleDistribution(Variable{
		Name:         "l",
		Distribution: "lognormal",
		Parameters:   map[string]float64{"mean": 1, "stddev": 0.5},
	}, 2000)
	require.NoError(t, err)
	for _, s := range samples {
		assert.Greater(t, s, 0.0)
		assert.False(t, math.IsNaN(s))
	}
}

func TestSampleDistributionValidation(t *testing.T) {
	tests := []struct {
		name string
		v    Variable
	}{
		{"unsupported distribution", Variable{Name: "x", Distribution: "poisson"}},
		{"normal missing stddev", Variable{Name: "x", Distribution: "normal", Parameters: map[string]float64{"mean": 1}}},
		{"normal negative stddev", Variable{Name: "x", Distribution: "normal", Parameters: map[string]float64{"mean": 1, "stddev": -2}}},
		{"uniform inverted bounds", Variable{Name: "x", Distribution: "uniform", Parameters: map[string]float64{"min": 5, "max": 2}}},
		{"triangular mode out of range", Variable{Name: "x", Distribution: "triangular", Parameters: map[string]float64{"min": 0, "mode": 9, "max": 5}}},
		{"triangular degenerate", Variable{Name: "x", Distribution: "triangular", Parameters: map[string]float64{"min": 3, "mode": 3, "max": 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sampleDistribution(tt.v, 10)
			assert.Error(t, err)
		})
	}
}
