package density

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-hep.org/x/hep/hbook"
)

// Monitor holds the diagnostics shared by all rings. It is safe for
// concurrent use.
type Monitor struct {
	mu           sync.Mutex
	SumOfWeights *hbook.H1D
	WeightedSum  *hbook.H1D
	Corrections  *hbook.H1D
}

func NewMonitor() *Monitor {
	m := &Monitor{
		SumOfWeights: hbook.NewH1D(200, 0, 20),
		WeightedSum:  hbook.NewH1D(200, 0, 20),
		Corrections:  hbook.NewH1D(100, 0, 10),
	}
	m.SumOfWeights.Annotation()["name"] = "sumOfWeights"
	m.SumOfWeights.Annotation()["title"] = "Sum of Landau weights"
	m.WeightedSum.Annotation()["name"] = "weightedSum"
	m.WeightedSum.Annotation()["title"] = "Weighted sum of Landau propability"
	m.Corrections.Annotation()["name"] = "corrections"
	m.Corrections.Annotation()["title"] = "Distribution of corrections"
	return m
}

func (m *Monitor) fillWeights(n float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SumOfWeights.Fill(n, 1)
	m.WeightedSum.Fill(n, 1)
}

func (m *Monitor) fillCorrection(c float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Corrections.Fill(c, 1)
}

// MultiplicityEstimator turns the signal of a strip into an expected number
// of particles by inverting the energy loss fit of its ring and eta bin.
type MultiplicityEstimator struct {
	calib        ELossCalibration
	cache        *WeightCache
	maxParticles int
	monitor      *Monitor
}

func NewMultiplicityEstimator(calib ELossCalibration, cache *WeightCache, maxParticles int, monitor *Monitor) *MultiplicityEstimator {
	return &MultiplicityEstimator{
		calib:        calib,
		cache:        cache,
		maxParticles: maxParticles,
		monitor:      monitor,
	}
}

// NParticles returns the number of particles for the signal. In low flux
// events every accepted strip counts as one particle. Missing calibration
// gives 0 and a warning.
func (e *MultiplicityEstimator) NParticles(signal float64, ring RingID, eta float64, lowFlux bool) float64 {
	if lowFlux {
		return 1
	}
	if e.calib == nil {
		logger.Warning(fmt.Sprintf("No energy loss fits for %v at eta=%f", ring, eta), "estimator")
		return 0
	}
	fit, ok := e.calib.FindFit(ring, eta)
	if !ok {
		logger.Warning(fmt.Sprintf("No energy loss fit for %v at eta=%f", ring, eta), "estimator")
		return 0
	}
	m := e.cache.MaxWeight(ring, eta)
	if m < 1 {
		logger.Warning(fmt.Sprintf("No good fits for %v at eta=%f", ring, eta), "estimator")
		return 0
	}
	n := min(e.maxParticles, m)
	ret := fit.EvaluateWeighted(signal, n)
	if e.monitor != nil {
		e.monitor.fillWeights(ret)
	}
	return ret
}

// CorrectionFactor computes the inverse correction the estimated number of
// particles is divided by.
type CorrectionFactor struct {
	mode       PhiAcceptance
	acceptance *AcceptanceGeometry
	doubleHit  DoubleHitCorrection
	monitor    *Monitor

	// rings already reported for a double hit correction above 1
	flagged [NRings]atomic.Bool
}

func NewCorrectionFactor(mode PhiAcceptance, acceptance *AcceptanceGeometry, doubleHit DoubleHitCorrection, monitor *Monitor) *CorrectionFactor {
	return &CorrectionFactor{
		mode:       mode,
		acceptance: acceptance,
		doubleHit:  doubleHit,
		monitor:    monitor,
	}
}

// InverseCorrection returns the product of the acceptance (in particle mode)
// and, for low flux events, the double hit correction. It is 1 when no
// correction applies.
func (c *CorrectionFactor) InverseCorrection(ring RingID, strip int, eta float64, lowFlux bool) float64 {
	correction := 1.0
	if c.mode == PhiAcceptanceNch {
		correction *= c.acceptance.AcceptanceAt(ring.Ring, strip)
	}
	if lowFlux {
		var table DoubleHitTable
		ok := false
		if c.doubleHit != nil {
			table, ok = c.doubleHit.Correction(ring)
		}
		if !ok {
			logger.Warning(fmt.Sprintf("Missing double hit correction for %v", ring), "correction")
		} else if dbl := table.ValueAt(eta); dbl > 0 {
			if dbl > 1 {
				c.flagDoubleHit(ring, eta, dbl)
			}
			correction *= dbl
		}
	}
	if c.monitor != nil {
		c.monitor.fillCorrection(correction)
	}
	return correction
}

// flagDoubleHit warns once per ring about a double hit correction that
// raises the number of particles instead of lowering it.
func (c *CorrectionFactor) flagDoubleHit(ring RingID, eta, value float64) {
	idx := ring.Index()
	if idx < 0 || c.flagged[idx].Swap(true) {
		return
	}
	message := fmt.Sprintf("Double hit correction %f > 1 for %v at eta=%f, calibration is outside the modelled regime", value, ring, eta)
	logger.Warning(message, "correction")
}
