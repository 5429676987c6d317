package density

import (
	"math"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/exp/constraints"
)

// OccupancyEstimator estimates the number of particles per strip from the
// fraction of hit strips in a region, independently of the energy loss.
type OccupancyEstimator interface {
	// Reset clears the per-event counters.
	Reset()
	// Fill records one strip. weight is the inverse correction of a hit.
	Fill(strip, sector int, hit bool, weight float64)
	// Result returns the estimate of every strip of the ring.
	Result() OccupancyResult
}

// OccupancyFactory creates the estimator of a ring.
type OccupancyFactory func(ring RingID) OccupancyEstimator

// OccupancyResult holds one value per strip, indexed like RingData.
type OccupancyResult struct {
	NSectors int
	NStrips  int
	Values   []float64
}

func (r OccupancyResult) At(sector, strip int) float64 {
	if sector < 0 || sector >= r.NSectors || strip < 0 || strip >= r.NStrips {
		return 0
	}
	return r.Values[sector*r.NStrips+strip]
}

// PoissonCalculator lumps etaLumping strips times phiLumping sectors into a
// cell and assumes the hits in a cell follow a Poisson distribution. With
// mean m = -ln(empty/total) each hit strip then carries m/(1-exp(-m))
// particles.
type PoissonCalculator struct {
	ring       RingID
	etaLumping int
	phiLumping int
	nx, ny     int

	total []float64
	empty []float64
	hits  []float64

	Occupancy *hbook.H1D
	Mean      *hbook.H1D
}

func NewPoissonCalculator(ring RingID, etaLumping, phiLumping int) *PoissonCalculator {
	etaLumping = clamp(etaLumping, 1, ring.NStrips())
	phiLumping = clamp(phiLumping, 1, ring.NSectors())
	p := &PoissonCalculator{
		ring:       ring,
		etaLumping: etaLumping,
		phiLumping: phiLumping,
		nx:         (ring.NStrips() + etaLumping - 1) / etaLumping,
		ny:         (ring.NSectors() + phiLumping - 1) / phiLumping,
		hits:       make([]float64, ring.NChannels()),
		Occupancy:  hbook.NewH1D(101, -0.5, 100.5),
		Mean:       hbook.NewH1D(100, 0, 10),
	}
	p.total = make([]float64, p.nx*p.ny)
	p.empty = make([]float64, p.nx*p.ny)
	p.Occupancy.Annotation()["name"] = "occupancy" + ring.String()
	p.Occupancy.Annotation()["title"] = "Occupancy in " + ring.String() + " [%]"
	p.Mean.Annotation()["name"] = "mean" + ring.String()
	p.Mean.Annotation()["title"] = "Poisson mean in " + ring.String()
	return p
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// PoissonFactory returns a factory of Poisson calculators with the given
// lumping.
func PoissonFactory(etaLumping, phiLumping int) OccupancyFactory {
	return func(ring RingID) OccupancyEstimator {
		return NewPoissonCalculator(ring, etaLumping, phiLumping)
	}
}

func (p *PoissonCalculator) cell(strip, sector int) int {
	return (sector/p.phiLumping)*p.nx + strip/p.etaLumping
}

func (p *PoissonCalculator) Reset() {
	clear(p.total)
	clear(p.empty)
	clear(p.hits)
}

func (p *PoissonCalculator) Fill(strip, sector int, hit bool, weight float64) {
	if strip < 0 || strip >= p.ring.NStrips() || sector < 0 || sector >= p.ring.NSectors() {
		return
	}
	c := p.cell(strip, sector)
	p.total[c]++
	if !hit {
		p.empty[c]++
		return
	}
	p.hits[sector*p.ring.NStrips()+strip] += weight
}

// correction returns the number of particles per hit strip of a cell.
func (p *PoissonCalculator) correction(c int) float64 {
	total := p.total[c]
	if total <= 0 {
		return 0
	}
	empty := max(p.empty[c], 1)
	mean := -math.Log(empty / total)
	p.Occupancy.Fill(100*(total-p.empty[c])/total, 1)
	p.Mean.Fill(mean, 1)
	if mean <= 0 {
		return 1
	}
	return mean / (1 - math.Exp(-mean))
}

func (p *PoissonCalculator) Result() OccupancyResult {
	corrections := make([]float64, len(p.total))
	for c := range corrections {
		corrections[c] = p.correction(c)
	}
	nStrips := p.ring.NStrips()
	res := OccupancyResult{
		NSectors: p.ring.NSectors(),
		NStrips:  nStrips,
		Values:   make([]float64, len(p.hits)),
	}
	for i, h := range p.hits {
		if h == 0 {
			continue
		}
		res.Values[i] = h * corrections[p.cell(i%nStrips, i/nStrips)]
	}
	return res
}
