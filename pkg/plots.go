package density

import (
	"fmt"
	"image/color"
	"path/filepath"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
)

var ringColors = [NRings]color.RGBA{
	{R: 255, A: 255},
	{G: 160, A: 255},
	{G: 160, B: 160, A: 255},
	{B: 255, A: 255},
	{R: 160, B: 255, A: 255},
}

// SavePlots draws the eta distributions of all rings in one plot and the
// accumulated density of each ring in its own plot. sums are the
// projections returned by ScaleHistograms.
func (d *DensityCalculator) SavePlots(dir string, sums []*hbook.H1D) error {
	p := hplot.New()
	p.Title.Text = "Inclusive N_ch per ring"
	p.Title.Padding = 2 * vg.Millimeter
	p.X.Label.Text = "eta"
	p.Y.Label.Text = "sum N_ch,incl"
	p.Legend.Top = true
	for i, sum := range sums {
		h := hplot.NewH1D(sum)
		h.LineStyle.Color = ringColors[i%NRings]
		p.Add(h)
		p.Legend.Add(Rings[i%NRings].String(), h)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(dir, "sums.png")); err != nil {
		return fmt.Errorf("saving ring sums: %w", err)
	}

	for _, rh := range d.rings {
		p := hplot.New()
		p.Title.Text = "Inclusive N_ch density in " + rh.Ring.String()
		p.X.Label.Text = "eta"
		p.Y.Label.Text = "phi [radians]"
		p.Add(hplot.NewH2D(rh.Density, palette.Heat(16, 1)))
		file := filepath.Join(dir, rh.Ring.String()+"_density.png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
			return fmt.Errorf("saving density of %v: %w", rh.Ring, err)
		}
	}

	p = hplot.New()
	p.Title.Text = "Acceptance"
	p.X.Label.Text = "strip"
	p.Y.Label.Text = "phi acceptance"
	for i, r := range []RingType{Inner, Outer} {
		h := hplot.NewH1D(d.AcceptanceHistogram(r))
		h.LineStyle.Color = ringColors[2*i]
		p.Add(h)
		p.Legend.Add("FMDx"+r.String(), h)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(dir, "acceptance.png")); err != nil {
		return fmt.Errorf("saving acceptance: %w", err)
	}
	return nil
}
