// Package sim is the Monte Carlo simulation engine: it samples user-defined
// variable distributions and evaluates a user-supplied arithmetic formula
// over them, producing an outcome distribution.
package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/montanaflynn/stats"
)

// Variable declares one simulation input: a named random variable with a
// distribution and its parameters.
type Variable struct {
	Name         string             `json:"name"`
	Distribution string             `json:"distribution"`
	Parameters   map[string]float64 `json:"parameters"`
}

// Request is one simulation: the variables, the formula over their names,
// and the trial count.
type Request struct {
	Variables []Variable `json:"variables"`
	Formula   string     `json:"formula"`
	NumTrials int        `json:"num_trials"`
}

// Summary holds the headline statistics of the outcome distribution.
type Summary struct {
	Mean         float64 `json:"mean"`
	Percentile5  float64 `json:"percentile_5"`
	Percentile95 float64 `json:"percentile_95"`
}

// Result is the simulation output: summary statistics plus the raw samples.
type Result struct {
	Summary Summary   `json:"summary"`
	Samples []float64 `json:"samples"`
}

const (
	defaultTrials = 10000
	maxTrials     = 1_000_000
)

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Compile validates and compiles a formula against the declared variable
// set. The formula is untrusted input: every identifier it references must
// be a declared variable name, and anything else fails closed before any
// evaluation happens. Compilation is separate from Run so callers can reject
// bad formulas up front.
func Compile(formula string, variables []Variable) (*vm.Program, error) {
	if formula == "" {
		return nil, fmt.Errorf("formula is empty")
	}

	declared := make(map[string]bool, len(variables))
	env := make(map[string]interface{}, len(variables))
	for _, v := range variables {
		if v.Name == "" {
			return nil, fmt.Errorf("variable with empty name")
		}
		declared[v.Name] = true
		env[v.Name] = float64(0)
	}

	for _, ident := range identifierPattern.FindAllString(formula, -1) {
		if !declared[ident] {
			return nil, fmt.Errorf("formula references undeclared identifier %q", ident)
		}
	}

	program, err := expr.Compile(formula, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("invalid formula %q: %w", formula, err)
	}
	return program, nil
}

// Run executes the simulation: NumTrials draws of every variable, one
// formula evaluation per trial. A zero NumTrials defaults to 10000.
func Run(req Request) (*Result, error) {
	trials := req.NumTrials
	if trials <= 0 {
		trials = defaultTrials
	}
	if trials > maxTrials {
		return nil, fmt.Errorf("num_trials %d exceeds limit of %d", trials, maxTrials)
	}
	if len(req.Variables) == 0 {
		return nil, fmt.Errorf("no variables declared")
	}

	program, err := Compile(req.Formula, req.Variables)
	if err != nil {
		return nil, err
	}

	draws := make(map[string][]float64, len(req.Variables))
	for _, v := range req.Variables {
		samples, err := sampleDistribution(v, trials)
		if err != nil {
			return nil, err
		}
		draws[v.Name] = samples
	}

	outcomes := make([]float64, trials)
	env := make(map[string]interface{}, len(req.Variables))
	for i := 0; i < trials; i++ {
		for name, samples := range draws {
			env[name] = samples[i]
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("formula evaluation failed: %w", err)
		}
		val, ok := toFloat(out)
		if !ok {
			return nil, fmt.Errorf("formula did not evaluate to a number (got %T)", out)
		}
		outcomes[i] = val
	}

	summary, err := summarize(outcomes)
	if err != nil {
		return nil, err
	}
	return &Result{Summary: summary, Samples: outcomes}, nil
}

func summarize(samples []float64) (Summary, error) {
	mean, err := stats.Mean(samples)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean: %w", err)
	}
	p5, err := stats.Percentile(samples, 5)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute 5th percentile: %w", err)
	}
	p95, err := stats.Percentile(samples, 95)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute 95th percentile: %w", err)
	}
	return Summary{Mean: mean, Percentile5: p5, Percentile95: p95}, nil
}

func sampleDistribution(v Variable, n int) ([]float64, error) {
	samples := make([]float64, n)
	p := v.Parameters

	switch v.Distribution {
	case "normal":
		mean, stddev, err := meanStddev(v)
		if err != nil {
			return nil, err
		}
		for i := range samples {
			samples[i] = rand.NormFloat64()*stddev + mean
		}
	case "lognormal":
		mean, stddev, err := meanStddev(v)
		if err != nil {
			return nil, err
		}
		for i := range samples {
			samples[i] = math.Exp(rand.NormFloat64()*stddev + mean)
		}
	case "uniform":
		min, okMin := p["min"]
		max, okMax := p["max"]
		if !okMin || !okMax {
			return nil, fmt.Errorf("uniform variable %q requires min and max", v.Name)
		}
		if max < min {
			return nil, fmt.Errorf("uniform variable %q has max < min", v.Name)
		}
		for i := range samples {
			samples[i] = min + rand.Float64()*(max-min)
		}
	case "triangular":
		min, okMin := p["min"]
		mode, okMode := p["mode"]
		max, okMax := p["max"]
		if !okMin || !okMode || !okMax {
			return nil, fmt.Errorf("triangular variable %q requires min, mode and max", v.Name)
		}
		if !(min <= mode && mode <= max) || min == max {
			return nil, fmt.Errorf("triangular variable %q requires min <= mode <= max", v.Name)
		}
		fc := (mode - min) / (max - min)
		for i := range samples {
			u := rand.Float64()
			if u < fc {
				samples[i] = min + math.Sqrt(u*(max-min)*(mode-min))
			} else {
				samples[i] = max - math.Sqrt((1-u)*(max-min)*(max-mode))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported distribution: %s", v.Distribution)
	}

	return samples, nil
}

func meanStddev(v Variable) (float64, float64, error) {
	mean, okMean := v.Parameters["mean"]
	stddev, okStd := v.Parameters["stddev"]
	if !okMean || !okStd {
		return 0, 0, fmt.Errorf("%s variable %q requires mean and stddev", v.Distribution, v.Name)
	}
	if stddev < 0 {
		return 0, 0, fmt.Errorf("%s variable %q has negative stddev", v.Distribution, v.Name)
	}
	return mean, stddev, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
