package density

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Defaults used by MaxUsableWeight.
const (
	DefaultMaxRelError = 0.2
	DefaultLeastWeight = 1e-7
	DefaultMaxN        = 20
)

// ELossFitParams is the result of fitting the energy loss spectrum of one
// ring and eta bin to a sum of i-particle Landau-Gauss responses.
type ELossFitParams struct {
	Detector int     `json:"detector"`
	Ring     string  `json:"ring"`
	EtaBin   int     `json:"eta_bin"`
	Quality  int     `json:"quality"`
	Chi2     float64 `json:"chi2"`
	NDF      int     `json:"ndf"`
	C        float64 `json:"c"`
	Delta    float64 `json:"delta"`
	Xi       float64 `json:"xi"`
	Sigma    float64 `json:"sigma"`
	SigmaN   float64 `json:"sigma_n"`
	LowCut   float64 `json:"low_cut"`
	// A holds the relative weights a_2, a_3, ... of the multi-particle
	// terms. The single particle weight is 1.
	A  []float64 `json:"a"`
	EA []float64 `json:"ea"`

	maxRelError float64
	leastWeight float64
	maxWeight   int
	once        sync.Once
}

// N is the number of particle terms in the fit.
func (f *ELossFitParams) N() int {
	return len(f.A) + 1
}

func (f *ELossFitParams) weight(i int) float64 {
	if i == 1 {
		return 1
	}
	return f.A[i-2]
}

// SetSelection changes the limits used by MaxUsableWeight. It must be
// called before the first call to MaxUsableWeight.
func (f *ELossFitParams) SetSelection(maxRelError, leastWeight float64) {
	f.maxRelError = maxRelError
	f.leastWeight = leastWeight
}

// FindMaxWeight returns the number of leading terms whose weight is at
// least leastWeight and whose relative error is at most maxRelError.
func (f *ELossFitParams) FindMaxWeight(maxRelError, leastWeight float64, maxN int) int {
	n := len(f.A)
	if maxN-1 < n {
		n = maxN - 1
	}
	m := 1
	for i := 0; i < n; i++ {
		if f.A[i] < leastWeight {
			break
		}
		if i < len(f.EA) && f.EA[i]/f.A[i] > maxRelError {
			break
		}
		m++
	}
	return m
}

// MaxUsableWeight is FindMaxWeight with the selection limits of the fit,
// computed once.
func (f *ELossFitParams) MaxUsableWeight() int {
	f.once.Do(func() {
		maxRelError, leastWeight := f.maxRelError, f.leastWeight
		if maxRelError <= 0 {
			maxRelError = DefaultMaxRelError
		}
		if leastWeight <= 0 {
			leastWeight = DefaultLeastWeight
		}
		f.maxWeight = f.FindMaxWeight(maxRelError, leastWeight, DefaultMaxN)
	})
	return f.maxWeight
}

// terms returns a_i f_i(x) for i = 1..n, stopping at the first negative
// weight.
func (f *ELossFitParams) terms(x float64, n int) []float64 {
	if n > f.N() {
		n = f.N()
	}
	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		a := f.weight(i)
		if a < 0 {
			break
		}
		out = append(out, a*NLandauGaus(x, f.Delta, f.Xi, f.Sigma, f.SigmaN, i))
	}
	return out
}

// Evaluate returns the fitted energy loss density at x using n terms.
func (f *ELossFitParams) Evaluate(x float64, n int) float64 {
	return f.C * floats.Sum(f.terms(x, n))
}

// EvaluateWeighted returns sum(i a_i f_i(x)) / sum(a_i f_i(x)) over the
// first n terms, or 1 when the denominator vanishes.
func (f *ELossFitParams) EvaluateWeighted(x float64, n int) float64 {
	terms := f.terms(x, n)
	den := floats.Sum(terms)
	if den <= 0 {
		return 1
	}
	num := 0.0
	for i, v := range terms {
		num += float64(i+1) * v
	}
	return num / den
}

func (f *ELossFitParams) MostProbable() float64 { return f.Delta }
func (f *ELossFitParams) LandauWidth() float64  { return f.Xi }
func (f *ELossFitParams) LowerBound() float64   { return f.LowCut }

func (f *ELossFitParams) String() string {
	return fmt.Sprintf("FMD%d%s bin %d: chi2/ndf=%.2f/%d delta=%.3f xi=%.3f sigma=%.3f n=%d",
		f.Detector, f.Ring, f.EtaBin, f.Chi2, f.NDF, f.Delta, f.Xi, f.Sigma, f.N())
}

// ELossFitTable holds the fits of all rings over a common eta axis.
type ELossFitTable struct {
	Axis   EtaAxis
	LowCut float64
	fits   [NRings][]*ELossFitParams
}

func NewELossFitTable(axis EtaAxis) *ELossFitTable {
	t := &ELossFitTable{Axis: axis}
	for i := range t.fits {
		t.fits[i] = make([]*ELossFitParams, axis.NBins)
	}
	return t
}

// AddFit stores the fit of a ring in the given eta bin.
func (t *ELossFitTable) AddFit(ring RingID, etaBin int, fit *ELossFitParams) error {
	idx := ring.Index()
	if idx < 0 {
		return fmt.Errorf("cannot add fit for unknown ring %v", ring)
	}
	if !t.Axis.InRange(etaBin) {
		return &ErrEtaBinOutOfRange{Ring: ring, Bin: etaBin, NBins: t.Axis.NBins}
	}
	t.fits[idx][etaBin] = fit
	return nil
}

func (t *ELossFitTable) Fit(ring RingID, etaBin int) (ELossFit, bool) {
	p, ok := t.Params(ring, etaBin)
	if !ok {
		return nil, false
	}
	return p, true
}

// Params is Fit returning the concrete parameters.
func (t *ELossFitTable) Params(ring RingID, etaBin int) (*ELossFitParams, bool) {
	idx := ring.Index()
	if idx < 0 || !t.Axis.InRange(etaBin) {
		return nil, false
	}
	fit := t.fits[idx][etaBin]
	return fit, fit != nil
}

func (t *ELossFitTable) FindFit(ring RingID, eta float64) (ELossFit, bool) {
	return t.Fit(ring, t.Axis.FindBin(eta))
}

func (t *ELossFitTable) EtaAxis() EtaAxis {
	return t.Axis
}

// SetSelection forwards the weight selection limits to every fit.
func (t *ELossFitTable) SetSelection(maxRelError, leastWeight float64) {
	for _, ringFits := range t.fits {
		for _, fit := range ringFits {
			if fit != nil {
				fit.SetSelection(maxRelError, leastWeight)
			}
		}
	}
}

// NFits counts the stored fits.
func (t *ELossFitTable) NFits() int {
	n := 0
	for _, ringFits := range t.fits {
		for _, fit := range ringFits {
			if fit != nil {
				n++
			}
		}
	}
	return n
}

// Fits returns the stored fits ordered by ring and eta bin.
func (t *ELossFitTable) Fits() []*ELossFitParams {
	fits := make([]*ELossFitParams, 0, t.NFits())
	for _, ringFits := range t.fits {
		for _, fit := range ringFits {
			if fit != nil {
				fits = append(fits, fit)
			}
		}
	}
	return fits
}
