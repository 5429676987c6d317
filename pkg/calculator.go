package density

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"
)

// Providers are the external collaborators of the density calculator. Cuts
// and Occupancy may be left nil, in which case they are built from the
// configuration.
type Providers struct {
	ELoss     ELossCalibration
	DoubleHit DoubleHitCorrection
	Cuts      MultCutProvider
	Occupancy OccupancyFactory
}

// DensityCalculator converts the strip signals of an event into the
// inclusive charged particle density per ring.
type DensityCalculator struct {
	config     Configuration
	providers  Providers
	acceptance *AcceptanceGeometry
	cache      *WeightCache
	estimator  *MultiplicityEstimator
	correction *CorrectionFactor
	monitor    *Monitor
	rings      [NRings]*RingHistos

	MaxWeights *hbook.H2D
	LowCuts    *hbook.H2D
}

type selector interface {
	SetSelection(maxRelError, leastWeight float64)
}

func NewDensityCalculator(config Configuration, providers Providers) (*DensityCalculator, error) {
	if providers.Cuts == nil {
		cuts, err := NewMultCuts(config.MultCuts, providers.ELoss)
		if err != nil {
			return nil, fmt.Errorf("creating multiplicity cuts: %w", err)
		}
		providers.Cuts = cuts
	}
	if providers.Occupancy == nil {
		providers.Occupancy = PoissonFactory(config.EtaLumping, config.PhiLumping)
	}
	if s, ok := providers.ELoss.(selector); ok {
		s.SetSelection(config.MaxRelError, config.LeastWeight)
	}

	d := &DensityCalculator{
		config:     config,
		providers:  providers,
		acceptance: NewAcceptanceGeometry(),
		cache:      NewWeightCache(config.MaxParticles),
		monitor:    NewMonitor(),
	}
	d.estimator = NewMultiplicityEstimator(providers.ELoss, d.cache, config.MaxParticles, d.monitor)
	d.correction = NewCorrectionFactor(config.PhiAcceptance, d.acceptance, providers.DoubleHit, d.monitor)
	for i, ring := range Rings {
		d.rings[i] = NewRingHistos(ring, config.DensityAxis, providers.Occupancy(ring))
	}
	return d, nil
}

// Init caches the maximum weights and cuts. axis is used when the energy
// loss calibration does not provide its own eta axis.
func (d *DensityCalculator) Init(axis EtaAxis) {
	d.cache.Rebuild(axis, d.providers.ELoss, d.providers.Cuts)

	eta := d.cache.Axis()
	d.MaxWeights = hbook.NewH2D(eta.NBins, eta.Min, eta.Max, NRings, 0.5, NRings+0.5)
	d.LowCuts = hbook.NewH2D(eta.NBins, eta.Min, eta.Max, NRings, 0.5, NRings+0.5)
	annotate(d.MaxWeights, "maxWeights", "Maximum i of a_i's to use")
	annotate(d.LowCuts, "lowCuts", "Low cuts used")

	for i, ring := range Rings {
		weights := d.cache.Weights(ring)
		cuts := d.cache.LowCuts(ring)
		sum, n := 0.0, 0
		for bin := 0; bin < eta.NBins; bin++ {
			x := eta.BinCenter(bin)
			if weights[bin] > 0 {
				d.MaxWeights.Fill(x, float64(i+1), float64(weights[bin]))
			}
			if cuts[bin] > 0 {
				d.LowCuts.Fill(x, float64(i+1), cuts[bin])
				sum += cuts[bin]
				n++
			}
		}
		d.rings[i].MultCut = -1
		if n > 0 {
			d.rings[i].MultCut = sum / float64(n)
		}
	}
}

// MultCut returns the lower signal threshold of a ring at eta. Strips with
// an invalid eta get a cut no signal can pass.
func (d *DensityCalculator) MultCut(ring RingID, eta float64) float64 {
	if eta == float64(InvalidEta) {
		return DisabledCut
	}
	return d.providers.Cuts.CutAt(ring, eta)
}

// Calculate estimates the number of particles in every strip of the event
// and adds the result to the maps in histos. Only a missing ring map is an
// error; problems with single strips are logged and the strip is skipped.
func (d *DensityCalculator) Calculate(ev *Event, histos *Histos, lowFlux bool, zvtx float64) error {
	var maps [NRings]*DensityMap
	for i, ring := range Rings {
		h, ok := histos.Get(ring)
		if !ok || d.rings[i] == nil {
			logger.Error((&ErrRingNotFound{Ring: ring}).Error())
			return &ErrRingNotFound{Ring: ring}
		}
		maps[i] = h
	}

	if !d.config.Parallel {
		for i := range Rings {
			d.calculateRing(ev, d.rings[i], maps[i], lowFlux, zvtx)
		}
		return nil
	}

	var g errgroup.Group
	for i := range Rings {
		g.Go(func() error {
			d.calculateRing(ev, d.rings[i], maps[i], lowFlux, zvtx)
			return nil
		})
	}
	return g.Wait()
}

func (d *DensityCalculator) calculateRing(ev *Event, rh *RingHistos, h *DensityMap, lowFlux bool, zvtx float64) {
	ring := rh.Ring
	rh.startEvent()
	occupancy := rh.occupancy

	for s := 0; s < ring.NSectors(); s++ {
		for t := 0; t < ring.NStrips(); t++ {
			mult := float64(ev.Multiplicity(ring, s, t))
			phi := float64(ev.Phi(ring, s, t)) / 180 * math.Pi
			eta := d.stripEta(ev, ring, s, t, zvtx)

			if mult == float64(InvalidSignal) || mult > d.config.SanityBound {
				occupancy.Fill(t, s, false, 1)
				rh.EvsM.Fill(mult, 0, 1)
				continue
			}
			if d.config.PhiAcceptance == PhiAcceptanceELoss {
				mult *= d.acceptance.AcceptanceAt(ring.Ring, t)
			}

			cut := d.MultCut(ring, eta)
			n := 0.0
			if cut > 0 && mult > cut {
				n = d.estimator.NParticles(mult, ring, eta, lowFlux)
			}
			rh.ELoss.Fill(mult, 1)
			rh.EvsN.Fill(mult, n, 1)
			rh.EtaVsN.Fill(eta, n, 1)

			c := d.correction.InverseCorrection(ring, t, eta, lowFlux)
			corrected := n
			if c > 0 {
				corrected /= c
			}
			rh.EvsM.Fill(mult, corrected, 1)
			rh.EtaVsM.Fill(eta, corrected, 1)
			rh.Corr.Fill(eta, c, 1)

			hit := n > d.config.HitThreshold && c > 0
			if hit {
				rh.ELossUsed.Fill(mult, 1)
			}
			weight := 1.0
			if c > 0 {
				weight = 1 / c
			}
			occupancy.Fill(t, s, hit, weight)

			if corrected == 0 {
				continue
			}
			rh.eloss.Fill(eta, phi, corrected)
			if d.config.Method == MethodEnergyLoss {
				rh.Density.Fill(eta, phi, corrected)
			}
		}
	}

	res := occupancy.Result()
	for s := 0; s < ring.NSectors(); s++ {
		for t := 0; t < ring.NStrips(); t++ {
			v := res.At(s, t)
			if v == 0 {
				continue
			}
			phi := float64(ev.Phi(ring, s, t)) / 180 * math.Pi
			eta := d.stripEta(ev, ring, s, t, zvtx)
			rh.poisson.Fill(eta, phi, v)
			if d.config.Method == MethodPoisson {
				rh.Density.Fill(eta, phi, v)
			}
		}
	}

	switch d.config.Method {
	case MethodEnergyLoss:
		h.Add(rh.eloss)
	case MethodPoisson:
		h.Add(rh.poisson)
	}
	rh.correlate()
}

func (d *DensityCalculator) stripEta(ev *Event, ring RingID, s, t int, zvtx float64) float64 {
	if d.config.RecalculateEta {
		return EtaFromStrip(ring, s, t, zvtx)
	}
	return float64(ev.Eta(ring, s, t))
}

func (d *DensityCalculator) RingHistos(ring RingID) (*RingHistos, bool) {
	idx := ring.Index()
	if idx < 0 || d.rings[idx] == nil {
		return nil, false
	}
	return d.rings[idx], true
}

func (d *DensityCalculator) Monitor() *Monitor {
	return d.monitor
}

func (d *DensityCalculator) WeightCache() *WeightCache {
	return d.cache
}

func (d *DensityCalculator) Acceptance() *AcceptanceGeometry {
	return d.acceptance
}

func (d *DensityCalculator) Configuration() Configuration {
	return d.config
}
