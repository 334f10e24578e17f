package distribution

import (
	"math"

	"github.com/paveg/tabula/internal/rng"
	"github.com/paveg/tabula/internal/validation"
	"gonum.org/v1/gonum/stat/distuv"
)

// Beta is the beta distribution on (0, 1) with shape parameters a and b.
type Beta struct{ dist distuv.Beta }

// NewBeta validates a, b > 0.
func NewBeta(a, b float64) (*Beta, error) {
	if err := validation.ValidateAll(
		validation.Positive("beta", "a", a),
		validation.Positive("beta", "b", b),
	); err != nil {
		return nil, err
	}
	return &Beta{dist: distuv.Beta{Alpha: a, Beta: b}}, nil
}

// Name returns "beta".
func (d *Beta) Name() string { return "beta" }

// Draw takes the ratio of two gamma variates.
func (d *Beta) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Cauchy is the Cauchy distribution, drawn by inverting its CDF.
type Cauchy struct{ median, scale float64 }

// NewCauchy requires a finite median and a positive scale.
func NewCauchy(median, scale float64) (*Cauchy, error) {
	if err := validation.ValidateAll(
		validation.Finite("cauchy", "median", median),
		validation.Positive("cauchy", "scale", scale),
	); err != nil {
		return nil, err
	}
	return &Cauchy{median: median, scale: scale}, nil
}

// Name returns "cauchy".
func (d *Cauchy) Name() string { return "cauchy" }

// Draw inverts the CDF at one uniform variate.
func (d *Cauchy) Draw(src *rng.Stream) float64 {
	return d.median + d.scale*math.Tan(math.Pi*(src.Float64()-0.5))
}

// Chi is the distribution of the length of a vector of k standard normals.
type Chi struct{ chi2 distuv.ChiSquared }

// NewChi takes a positive whole number of degrees of freedom.
func NewChi(k float64) (*Chi, error) {
	if err := validation.PositiveInteger("chi", "k", k).Validate(); err != nil {
		return nil, err
	}
	return &Chi{chi2: distuv.ChiSquared{K: k}}, nil
}

// Name returns "chi".
func (d *Chi) Name() string { return "chi" }

// Draw is the square root of a chi-squared draw.
func (d *Chi) Draw(src *rng.Stream) float64 {
	dist := d.chi2
	dist.Src = src
	return math.Sqrt(dist.Rand())
}

// ChiSquared is the distribution of a sum of k squared standard normals.
type ChiSquared struct{ dist distuv.ChiSquared }

// NewChiSquared accepts any positive k, not only whole numbers.
func NewChiSquared(k float64) (*ChiSquared, error) {
	if err := validation.Positive("chi_squared", "k", k).Validate(); err != nil {
		return nil, err
	}
	return &ChiSquared{dist: distuv.ChiSquared{K: k}}, nil
}

// Name returns "chi_squared".
func (d *ChiSquared) Name() string { return "chi_squared" }

// Draw samples a gamma with shape k/2 and rate 1/2.
func (d *ChiSquared) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Dirac always yields v and leaves the stream untouched.
type Dirac struct{ v float64 }

// NewDirac accepts any value except NaN, including infinities.
func NewDirac(v float64) (*Dirac, error) {
	if err := validation.NotNaN("dirac", "v", v).Validate(); err != nil {
		return nil, err
	}
	return &Dirac{v: v}, nil
}

// Name returns "dirac".
func (d *Dirac) Name() string { return "dirac" }

// Draw returns v without consuming the stream.
func (d *Dirac) Draw(*rng.Stream) float64 { return d.v }

// Erlang is a gamma distribution with a whole-number shape.
type Erlang struct{ dist distuv.Gamma }

// NewErlang requires a whole-number shape and a positive rate.
func NewErlang(shape, rate float64) (*Erlang, error) {
	if err := validation.ValidateAll(
		validation.PositiveInteger("erlang", "shape", shape),
		validation.Positive("erlang", "rate", rate),
	); err != nil {
		return nil, err
	}
	return &Erlang{dist: distuv.Gamma{Alpha: shape, Beta: rate}}, nil
}

// Name returns "erlang".
func (d *Erlang) Name() string { return "erlang" }

// Draw samples the equivalent gamma.
func (d *Erlang) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Exponential is the waiting-time distribution with the given rate.
type Exponential struct{ dist distuv.Exponential }

// NewExponential validates rate > 0.
func NewExponential(rate float64) (*Exponential, error) {
	if err := validation.Positive("exponential", "rate", rate).Validate(); err != nil {
		return nil, err
	}
	return &Exponential{dist: distuv.Exponential{Rate: rate}}, nil
}

// Name returns "exponential".
func (d *Exponential) Name() string { return "exponential" }

// Draw scales one ziggurat exponential variate by 1/rate.
func (d *Exponential) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// FisherSnedecor is the F distribution with d1 and d2 degrees of freedom.
type FisherSnedecor struct{ dist distuv.F }

// NewFisherSnedecor validates d1, d2 > 0.
func NewFisherSnedecor(d1, d2 float64) (*FisherSnedecor, error) {
	if err := validation.ValidateAll(
		validation.Positive("fisher_snedecor", "d1", d1),
		validation.Positive("fisher_snedecor", "d2", d2),
	); err != nil {
		return nil, err
	}
	return &FisherSnedecor{dist: distuv.F{D1: d1, D2: d2}}, nil
}

// Name returns "fisher_snedecor".
func (d *FisherSnedecor) Name() string { return "fisher_snedecor" }

// Draw takes the ratio of two scaled chi-squared draws.
func (d *FisherSnedecor) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Gamma is parameterised by shape and rate.
type Gamma struct{ dist distuv.Gamma }

// NewGamma validates shape, rate > 0.
func NewGamma(shape, rate float64) (*Gamma, error) {
	if err := validation.ValidateAll(
		validation.Positive("gamma", "shape", shape),
		validation.Positive("gamma", "rate", rate),
	); err != nil {
		return nil, err
	}
	return &Gamma{dist: distuv.Gamma{Alpha: shape, Beta: rate}}, nil
}

// Name returns "gamma".
func (d *Gamma) Name() string { return "gamma" }

// Draw uses Marsaglia-Tsang, switching to a log-space method for shape < 0.2.
func (d *Gamma) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Gumbel is the right-skewed (maximum) Gumbel distribution.
type Gumbel struct{ dist distuv.GumbelRight }

// NewGumbel requires a finite location and a positive scale.
func NewGumbel(location, scale float64) (*Gumbel, error) {
	if err := validation.ValidateAll(
		validation.Finite("gumbel", "location", location),
		validation.Positive("gumbel", "scale", scale),
	); err != nil {
		return nil, err
	}
	return &Gumbel{dist: distuv.GumbelRight{Mu: location, Beta: scale}}, nil
}

// Name returns "gumbel".
func (d *Gumbel) Name() string { return "gumbel" }

// Draw transforms one exponential variate.
func (d *Gumbel) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// InverseGamma is the reciprocal of a gamma variable with the same shape and
// rate.
type InverseGamma struct{ dist distuv.InverseGamma }

// NewInverseGamma validates shape, rate > 0.
func NewInverseGamma(shape, rate float64) (*InverseGamma, error) {
	if err := validation.ValidateAll(
		validation.Positive("inverse_gamma", "shape", shape),
		validation.Positive("inverse_gamma", "rate", rate),
	); err != nil {
		return nil, err
	}
	return &InverseGamma{dist: distuv.InverseGamma{Alpha: shape, Beta: rate}}, nil
}

// Name returns "inverse_gamma".
func (d *InverseGamma) Name() string { return "inverse_gamma" }

// Draw returns the reciprocal of a gamma draw.
func (d *InverseGamma) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Laplace is the double exponential distribution around location.
type Laplace struct{ dist distuv.Laplace }

// NewLaplace requires a finite location and a positive scale.
func NewLaplace(location, scale float64) (*Laplace, error) {
	if err := validation.ValidateAll(
		validation.Finite("laplace", "location", location),
		validation.Positive("laplace", "scale", scale),
	); err != nil {
		return nil, err
	}
	return &Laplace{dist: distuv.Laplace{Mu: location, Scale: scale}}, nil
}

// Name returns "laplace".
func (d *Laplace) Name() string { return "laplace" }

// Draw inverts the CDF at one uniform variate.
func (d *Laplace) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// LogNormal is exp(N(mu, sigma)).
type LogNormal struct{ dist distuv.LogNormal }

// NewLogNormal requires a finite mu and a positive sigma.
func NewLogNormal(mu, sigma float64) (*LogNormal, error) {
	if err := validation.ValidateAll(
		validation.Finite("log_normal", "mu", mu),
		validation.Positive("log_normal", "sigma", sigma),
	); err != nil {
		return nil, err
	}
	return &LogNormal{dist: distuv.LogNormal{Mu: mu, Sigma: sigma}}, nil
}

// Name returns "log_normal".
func (d *LogNormal) Name() string { return "log_normal" }

// Draw exponentiates a normal draw.
func (d *LogNormal) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// NegativeBinomial counts failures before the r-th success with success
// probability p. It is drawn as a gamma-Poisson mixture, which also covers
// non-integer r.
type NegativeBinomial struct {
	r, p float64
}

// NewNegativeBinomial requires r > 0 and p in (0, 1].
func NewNegativeBinomial(r, p float64) (*NegativeBinomial, error) {
	if err := validation.ValidateAll(
		validation.Positive("negative_binomial", "r", r),
		validation.Probability("negative_binomial", "p", p),
	); err != nil {
		return nil, err
	}
	return &NegativeBinomial{r: r, p: p}, nil
}

// Name returns "negative_binomial".
func (d *NegativeBinomial) Name() string { return "negative_binomial" }

// Draw samples a Poisson whose rate is itself gamma distributed. It returns
// 0 when p is 1.
func (d *NegativeBinomial) Draw(src *rng.Stream) float64 {
	if d.p == 1 {
		return 0
	}
	lambda := distuv.Gamma{Alpha: d.r, Beta: d.p / (1 - d.p), Src: src}.Rand()
	if lambda == 0 {
		return 0
	}
	return distuv.Poisson{Lambda: lambda, Src: src}.Rand()
}

// Normal is the Gaussian distribution with mean mu and standard deviation
// sigma.
type Normal struct{ dist distuv.Normal }

// NewNormal requires a finite mu and a positive sigma.
func NewNormal(mu, sigma float64) (*Normal, error) {
	if err := validation.ValidateAll(
		validation.Finite("normal", "mu", mu),
		validation.Positive("normal", "sigma", sigma),
	); err != nil {
		return nil, err
	}
	return &Normal{dist: distuv.Normal{Mu: mu, Sigma: sigma}}, nil
}

// Name returns "normal".
func (d *Normal) Name() string { return "normal" }

// Draw scales and shifts one ziggurat normal variate.
func (d *Normal) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Pareto has support [scale, inf) and tail index shape.
type Pareto struct{ dist distuv.Pareto }

// NewPareto validates scale, shape > 0.
func NewPareto(scale, shape float64) (*Pareto, error) {
	if err := validation.ValidateAll(
		validation.Positive("pareto", "scale", scale),
		validation.Positive("pareto", "shape", shape),
	); err != nil {
		return nil, err
	}
	return &Pareto{dist: distuv.Pareto{Xm: scale, Alpha: shape}}, nil
}

// Name returns "pareto".
func (d *Pareto) Name() string { return "pareto" }

// Draw transforms one exponential variate.
func (d *Pareto) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// StudentsT is the location-scale t distribution.
type StudentsT struct{ dist distuv.StudentsT }

// NewStudentsT requires a finite location, a positive scale and positive
// degrees of freedom.
func NewStudentsT(location, scale, freedom float64) (*StudentsT, error) {
	if err := validation.ValidateAll(
		validation.Finite("students_t", "location", location),
		validation.Positive("students_t", "scale", scale),
		validation.Positive("students_t", "freedom", freedom),
	); err != nil {
		return nil, err
	}
	return &StudentsT{dist: distuv.StudentsT{Mu: location, Sigma: scale, Nu: freedom}}, nil
}

// Name returns "students_t".
func (d *StudentsT) Name() string { return "students_t" }

// Draw divides a standard normal by the root of a scaled chi-squared draw.
func (d *StudentsT) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Triangular is the triangle-shaped distribution on [min, max] peaking at
// mode.
type Triangular struct{ min, max, mode float64 }

// NewTriangular requires min < max and min <= mode <= max, all finite.
func NewTriangular(min, max, mode float64) (*Triangular, error) {
	if err := validation.ValidateAll(
		validation.Finite("triangular", "min", min),
		validation.Finite("triangular", "max", max),
		validation.Less("triangular", "min", "max", min, max),
		validation.Between("triangular", "mode", mode, min, max),
	); err != nil {
		return nil, err
	}
	return &Triangular{min: min, max: max, mode: mode}, nil
}

// Name returns "triangular".
func (d *Triangular) Name() string { return "triangular" }

// Draw inverts the CDF at one uniform variate.
func (d *Triangular) Draw(src *rng.Stream) float64 {
	return distuv.NewTriangle(d.min, d.max, d.mode, src).Rand()
}

// Uniform is continuous on [min, max).
type Uniform struct{ dist distuv.Uniform }

// NewUniform requires finite bounds with min < max.
func NewUniform(min, max float64) (*Uniform, error) {
	if err := validation.ValidateAll(
		validation.Finite("uniform", "min", min),
		validation.Finite("uniform", "max", max),
		validation.Less("uniform", "min", "max", min, max),
	); err != nil {
		return nil, err
	}
	return &Uniform{dist: distuv.Uniform{Min: min, Max: max}}, nil
}

// Name returns "uniform".
func (d *Uniform) Name() string { return "uniform" }

// Draw maps one uniform variate onto [min, max).
func (d *Uniform) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}

// Weibull has shape k and scale lambda.
type Weibull struct{ dist distuv.Weibull }

// NewWeibull validates shape, scale > 0.
func NewWeibull(shape, scale float64) (*Weibull, error) {
	if err := validation.ValidateAll(
		validation.Positive("weibull", "shape", shape),
		validation.Positive("weibull", "scale", scale),
	); err != nil {
		return nil, err
	}
	return &Weibull{dist: distuv.Weibull{K: shape, Lambda: scale}}, nil
}

// Name returns "weibull".
func (d *Weibull) Name() string { return "weibull" }

// Draw inverts the CDF at one uniform variate.
func (d *Weibull) Draw(src *rng.Stream) float64 {
	dist := d.dist
	dist.Src = src
	return dist.Rand()
}
