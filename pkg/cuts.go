package density

import "fmt"

// DisabledCut is a cut no physical signal can pass.
const DisabledCut = 1024

// MultCuts derives the lower multiplicity cut of a ring, either from fixed
// values or from the energy loss fits.
type MultCuts struct {
	Mode        CutMode
	Fixed       [NRings]float64
	MPVFraction float64
	NXi         float64
	fits        ELossCalibration
}

// NewMultCuts builds the cut provider from the configuration. Fit derived
// modes take their input from calib, which may be nil for fixed cuts.
func NewMultCuts(config MultCutsConfig, calib ELossCalibration) (*MultCuts, error) {
	c := &MultCuts{
		Mode:        config.Mode,
		MPVFraction: config.MPVFraction,
		NXi:         config.NXi,
		fits:        calib,
	}
	// "all" first so that per-ring values override it
	if all, ok := config.Fixed["all"]; ok {
		for i := range c.Fixed {
			c.Fixed[i] = all
		}
	}
	for name, value := range config.Fixed {
		if name == "all" {
			continue
		}
		found := false
		for i, ring := range Rings {
			if ring.String() == name {
				c.Fixed[i] = value
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown ring %q in fixed cuts", name)
		}
	}
	if c.Mode != CutFixed && calib == nil {
		return nil, fmt.Errorf("cut mode %v needs energy loss fits", c.Mode)
	}
	return c, nil
}

// NewFixedCuts returns a provider with the same cut in every ring.
func NewFixedCuts(cut float64) *MultCuts {
	c := &MultCuts{Mode: CutFixed}
	for i := range c.Fixed {
		c.Fixed[i] = cut
	}
	return c
}

// CutAtBin returns the cut of a ring in an eta bin of the fit axis. A
// negative value means no cut could be determined.
func (c *MultCuts) CutAtBin(ring RingID, etaBin int) float64 {
	idx := ring.Index()
	if idx < 0 {
		return -1
	}
	if c.Mode == CutFixed {
		return c.Fixed[idx]
	}
	fit, ok := c.fits.Fit(ring, etaBin)
	if !ok {
		return -1
	}
	return c.fromFit(fit)
}

// CutAt returns the cut of a ring at eta.
func (c *MultCuts) CutAt(ring RingID, eta float64) float64 {
	if c.Mode == CutFixed {
		return c.CutAtBin(ring, 0)
	}
	return c.CutAtBin(ring, c.fits.EtaAxis().FindBin(eta))
}

func (c *MultCuts) fromFit(fit ELossFit) float64 {
	shape, ok := fit.(FitShape)
	if !ok {
		return -1
	}
	switch c.Mode {
	case CutFitRange:
		return shape.LowerBound()
	case CutMPVFraction:
		return c.MPVFraction * shape.MostProbable()
	case CutNXi:
		return shape.MostProbable() - c.NXi*shape.LandauWidth()
	}
	return -1
}

func (c *MultCuts) String() string {
	switch c.Mode {
	case CutFixed:
		return fmt.Sprintf("fixed %v", c.Fixed)
	case CutMPVFraction:
		return fmt.Sprintf("%v of MPV", c.MPVFraction)
	case CutNXi:
		return fmt.Sprintf("MPV - %v xi", c.NXi)
	}
	return c.Mode.String()
}
