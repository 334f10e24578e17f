package distribution

import (
	"fmt"
	"slices"
	"strings"

	"github.com/paveg/tabula/internal/errors"
)

type family struct {
	params []string
	build  func(p []float64) (Distribution, error)
}

// wrap adapts a typed constructor to the registry's untyped form without
// turning a nil *T into a non-nil interface.
func wrap[T Distribution](d T, err error) (Distribution, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

var families = map[string]family{
	"beta":              {[]string{"a", "b"}, func(p []float64) (Distribution, error) { return wrap(NewBeta(p[0], p[1])) }},
	"cauchy":            {[]string{"median", "scale"}, func(p []float64) (Distribution, error) { return wrap(NewCauchy(p[0], p[1])) }},
	"chi":               {[]string{"k"}, func(p []float64) (Distribution, error) { return wrap(NewChi(p[0])) }},
	"chi_squared":       {[]string{"k"}, func(p []float64) (Distribution, error) { return wrap(NewChiSquared(p[0])) }},
	"dirac":             {[]string{"v"}, func(p []float64) (Distribution, error) { return wrap(NewDirac(p[0])) }},
	"erlang":            {[]string{"shape", "rate"}, func(p []float64) (Distribution, error) { return wrap(NewErlang(p[0], p[1])) }},
	"exponential":       {[]string{"rate"}, func(p []float64) (Distribution, error) { return wrap(NewExponential(p[0])) }},
	"fisher_snedecor":   {[]string{"d1", "d2"}, func(p []float64) (Distribution, error) { return wrap(NewFisherSnedecor(p[0], p[1])) }},
	"gamma":             {[]string{"shape", "rate"}, func(p []float64) (Distribution, error) { return wrap(NewGamma(p[0], p[1])) }},
	"gumbel":            {[]string{"location", "scale"}, func(p []float64) (Distribution, error) { return wrap(NewGumbel(p[0], p[1])) }},
	"inverse_gamma":     {[]string{"shape", "rate"}, func(p []float64) (Distribution, error) { return wrap(NewInverseGamma(p[0], p[1])) }},
	"laplace":           {[]string{"location", "scale"}, func(p []float64) (Distribution, error) { return wrap(NewLaplace(p[0], p[1])) }},
	"log_normal":        {[]string{"mu", "sigma"}, func(p []float64) (Distribution, error) { return wrap(NewLogNormal(p[0], p[1])) }},
	"negative_binomial": {[]string{"r", "p"}, func(p []float64) (Distribution, error) { return wrap(NewNegativeBinomial(p[0], p[1])) }},
	"normal":            {[]string{"mu", "sigma"}, func(p []float64) (Distribution, error) { return wrap(NewNormal(p[0], p[1])) }},
	"pareto":            {[]string{"scale", "shape"}, func(p []float64) (Distribution, error) { return wrap(NewPareto(p[0], p[1])) }},
	"students_t": {[]string{"location", "scale", "freedom"}, func(p []float64) (Distribution, error) {
		return wrap(NewStudentsT(p[0], p[1], p[2]))
	}},
	"triangular": {[]string{"min", "max", "mode"}, func(p []float64) (Distribution, error) {
		return wrap(NewTriangular(p[0], p[1], p[2]))
	}},
	"uniform": {[]string{"min", "max"}, func(p []float64) (Distribution, error) { return wrap(NewUniform(p[0], p[1])) }},
	"weibull": {[]string{"shape", "scale"}, func(p []float64) (Distribution, error) { return wrap(NewWeibull(p[0], p[1])) }},
}

// Build constructs the family registered under tag. params are positional
// and must match Params(tag) in number.
func Build(tag string, params []float64) (Distribution, error) {
	f, ok := families[tag]
	if !ok {
		return nil, errors.NewInvalidInputError("sample",
			fmt.Sprintf("unknown distribution %q (known: %s)", tag, strings.Join(Tags(), ", ")))
	}
	if len(params) != len(f.params) {
		return nil, errors.NewParameterError(tag, "",
			fmt.Sprintf("expects %d parameters (%s), got %d", len(f.params), strings.Join(f.params, ", "), len(params)))
	}
	return f.build(params)
}

// Tags lists the registered family tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(families))
	for tag := range families {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Params returns the parameter names of tag in positional order.
func Params(tag string) ([]string, bool) {
	f, ok := families[tag]
	if !ok {
		return nil, false
	}
	return slices.Clone(f.params), true
}
