package density

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// RingHistos are the diagnostics of one ring, accumulated over all
// processed events.
type RingHistos struct {
	Ring RingID

	EvsN           *hbook.H2D // signal vs uncorrected N
	EvsM           *hbook.H2D // signal vs corrected N
	EtaVsN         *hbook.P1D
	EtaVsM         *hbook.P1D
	Corr           *hbook.P1D
	Density        *hbook.H2D
	ELossVsPoisson *hbook.H2D
	ELoss          *hbook.H1D // signal in all strips
	ELossUsed      *hbook.H1D // signal in strips counted as hits
	MultCut        float64

	occupancy OccupancyEstimator

	// per-event work maps
	eloss   *DensityMap
	poisson *DensityMap
}

func annotate(h interface{ Annotation() hbook.Annotation }, n, title string) {
	h.Annotation()["name"] = n
	h.Annotation()["title"] = title
}

func NewRingHistos(ring RingID, axis EtaAxis, occupancy OccupancyEstimator) *RingHistos {
	rh := &RingHistos{
		Ring:           ring,
		EvsN:           hbook.NewH2D(250, -0.5, 24.5, 250, -0.5, 24.5),
		EvsM:           hbook.NewH2D(250, -0.5, 24.5, 250, -0.5, 24.5),
		EtaVsN:         hbook.NewP1D(200, -4, 6),
		EtaVsM:         hbook.NewP1D(200, -4, 6),
		Corr:           hbook.NewP1D(200, -4, 6),
		Density:        hbook.NewH2D(200, -4, 6, ring.NSectors(), 0, 2*math.Pi),
		ELossVsPoisson: hbook.NewH2D(500, 0, 100, 500, 0, 100),
		ELoss:          hbook.NewH1D(600, 0, 15),
		ELossUsed:      hbook.NewH1D(600, 0, 15),
		occupancy:      occupancy,
		eloss:          NewDensityMap(ring, axis),
		poisson:        NewDensityMap(ring, axis),
	}
	prefix := ring.String() + "/"
	annotate(rh.EvsN, prefix+"elossVsNnocorr", "Delta E/Delta E_mip vs uncorrected inclusive N_ch")
	annotate(rh.EvsM, prefix+"elossVsNcorr", "Delta E/Delta E_mip vs corrected inclusive N_ch")
	annotate(rh.EtaVsN, prefix+"etaVsNnocorr", "Average inclusive N_ch vs eta (uncorrected)")
	annotate(rh.EtaVsM, prefix+"etaVsNcorr", "Average inclusive N_ch vs eta (corrected)")
	annotate(rh.Corr, prefix+"corr", "Average correction")
	annotate(rh.Density, prefix+"inclDensity", "Inclusive N_ch density")
	annotate(rh.ELossVsPoisson, prefix+"elossVsPoisson", "N_ch from energy loss vs from Poisson")
	annotate(rh.ELoss, prefix+"eloss", "Delta/Delta_mip in all strips")
	annotate(rh.ELossUsed, prefix+"elossUsed", "Delta/Delta_mip in used strips")
	return rh
}

// Occupancy returns the occupancy estimator of the ring.
func (rh *RingHistos) Occupancy() OccupancyEstimator {
	return rh.occupancy
}

// startEvent clears the per-event state.
func (rh *RingHistos) startEvent() {
	if rh.occupancy != nil {
		rh.occupancy.Reset()
	}
	rh.eloss.Reset()
	rh.poisson.Reset()
}

// correlate fills the energy loss vs Poisson correlation bin by bin.
func (rh *RingHistos) correlate() {
	for ix := 0; ix < rh.eloss.NX(); ix++ {
		for iy := 0; iy < rh.eloss.NY(); iy++ {
			rh.ELossVsPoisson.Fill(rh.eloss.At(ix, iy), rh.poisson.At(ix, iy), 1)
		}
	}
}

// Scale divides the accumulated density by the number of events.
func (rh *RingHistos) Scale(nEvents int) {
	if nEvents <= 0 {
		return
	}
	rh.Density = scaleH2D(rh.Density, 1/float64(nEvents))
}

// scaleH2D returns a copy of h with every bin content multiplied by factor.
func scaleH2D(h *hbook.H2D, factor float64) *hbook.H2D {
	bng := &h.Binning
	xmin, xmax := bng.XRange.Min, bng.XRange.Max
	ymin, ymax := bng.YRange.Min, bng.YRange.Max
	out := hbook.NewH2D(bng.Nx, xmin, xmax, bng.Ny, ymin, ymax)
	for k, v := range h.Annotation() {
		out.Annotation()[k] = v
	}
	dx := (xmax - xmin) / float64(bng.Nx)
	dy := (ymax - ymin) / float64(bng.Ny)
	for iy := 0; iy < bng.Ny; iy++ {
		for ix := 0; ix < bng.Nx; ix++ {
			w := bng.Bins[iy*bng.Nx+ix].SumW()
			if w == 0 {
				continue
			}
			out.Fill(xmin+(float64(ix)+0.5)*dx, ymin+(float64(iy)+0.5)*dy, w*factor)
		}
	}
	return out
}

// EtaProjection sums the accumulated density over phi and divides by the
// eta bin width.
func (rh *RingHistos) EtaProjection() *hbook.H1D {
	bng := &rh.Density.Binning
	xmin, xmax := bng.XRange.Min, bng.XRange.Max
	proj := hbook.NewH1D(bng.Nx, xmin, xmax)
	annotate(proj, rh.Ring.String(), "Sum N_ch,incl in "+rh.Ring.String())
	width := (xmax - xmin) / float64(bng.Nx)
	for ix := 0; ix < bng.Nx; ix++ {
		sum := 0.0
		for iy := 0; iy < bng.Ny; iy++ {
			sum += bng.Bins[iy*bng.Nx+ix].SumW()
		}
		if sum != 0 {
			proj.Fill(xmin+(float64(ix)+0.5)*width, sum/width)
		}
	}
	return proj
}
