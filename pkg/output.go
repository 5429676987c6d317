package density

import (
	"fmt"
	"io"
	"strings"

	"go-hep.org/x/hep/hbook"
)

// AcceptanceHistogram returns the acceptance of a ring type as a function of
// the strip number.
func (d *DensityCalculator) AcceptanceHistogram(r RingType) *hbook.H1D {
	table := d.acceptance.Table(r)
	n := len(table.Values)
	h := hbook.NewH1D(n, -0.5, float64(n)-0.5)
	annotate(h, "acc"+r.String(), "Acceptance correction for FMDx"+r.String())
	for t, v := range table.Values {
		h.Fill(float64(t), v)
	}
	return h
}

// ScaleHistograms normalises the accumulated densities to the number of
// events and returns, per ring, the density summed over phi divided by the
// eta bin width.
func (d *DensityCalculator) ScaleHistograms(nEvents int) []*hbook.H1D {
	if nEvents <= 0 {
		return nil
	}
	sums := make([]*hbook.H1D, 0, NRings)
	for _, rh := range d.rings {
		rh.Scale(nEvents)
		sums = append(sums, rh.EtaProjection())
	}
	return sums
}

// Print logs the settings of the calculator and, if withMaxWeights is set,
// the cached maximum weights of every ring.
func (d *DensityCalculator) Print(withMaxWeights bool) {
	logger.Info(fmt.Sprintf("Max(particles):         %d", d.config.MaxParticles), "density")
	logger.Info(fmt.Sprintf("Method:                 %v", d.config.Method), "density")
	logger.Info(fmt.Sprintf("Use phi acceptance:     %v", d.config.PhiAcceptance), "density")
	logger.Info(fmt.Sprintf("Eta lumping:            %d", d.config.EtaLumping), "density")
	logger.Info(fmt.Sprintf("Phi lumping:            %d", d.config.PhiLumping), "density")
	logger.Info(fmt.Sprintf("Recalculate eta:        %t", d.config.RecalculateEta), "density")
	logger.Info(fmt.Sprintf("Lower cut:              %v", d.providers.Cuts), "density")
	if !withMaxWeights {
		return
	}
	logger.Info("Max weights:", "density")
	for _, ring := range Rings {
		var sb strings.Builder
		j := 0
		for i, w := range d.cache.Weights(ring) {
			if w < 1 {
				continue
			}
			if j%6 == 0 {
				sb.WriteString("\n ")
			}
			j++
			fmt.Fprintf(&sb, "  %3d: %d", i, w)
		}
		logger.Info(fmt.Sprintf("%v:%s", ring, sb.String()), "density")
	}
}

// YODAMarshaler is implemented by the hbook histograms and profiles.
type YODAMarshaler interface {
	MarshalYODA() ([]byte, error)
}

// Objects returns every diagnostic histogram of the calculator.
func (d *DensityCalculator) Objects() []YODAMarshaler {
	objs := []YODAMarshaler{
		d.monitor.WeightedSum,
		d.monitor.SumOfWeights,
		d.monitor.Corrections,
		d.AcceptanceHistogram(Inner),
		d.AcceptanceHistogram(Outer),
	}
	if d.MaxWeights != nil {
		objs = append(objs, d.MaxWeights, d.LowCuts)
	}
	for _, rh := range d.rings {
		objs = append(objs, rh.EvsN, rh.EvsM, rh.EtaVsN, rh.EtaVsM, rh.Corr,
			rh.Density, rh.ELossVsPoisson, rh.ELoss, rh.ELossUsed)
		if p, ok := rh.occupancy.(*PoissonCalculator); ok {
			objs = append(objs, p.Occupancy, p.Mean)
		}
	}
	return objs
}

// WriteYODA writes the diagnostics in the YODA text format.
func (d *DensityCalculator) WriteYODA(w io.Writer) error {
	for _, obj := range d.Objects() {
		raw, err := obj.MarshalYODA()
		if err != nil {
			return fmt.Errorf("marshaling histogram to YODA: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("writing YODA: %w", err)
		}
	}
	return nil
}
