package density

// ELossFit is the energy loss parametrisation of one ring and eta bin.
type ELossFit interface {
	// MaxUsableWeight is the largest number of particles the fit can
	// describe reliably.
	MaxUsableWeight() int
	// EvaluateWeighted returns the expected number of particles for the
	// signal using the first n terms of the fit.
	EvaluateWeighted(signal float64, n int) float64
}

// ELossCalibration provides the energy loss fits.
type ELossCalibration interface {
	Fit(ring RingID, etaBin int) (ELossFit, bool)
	FindFit(ring RingID, eta float64) (ELossFit, bool)
	EtaAxis() EtaAxis
}

// DoubleHitTable is the double hit correction of one ring as a function of
// eta.
type DoubleHitTable interface {
	ValueAt(eta float64) float64
}

// DoubleHitCorrection provides the double hit correction per ring.
type DoubleHitCorrection interface {
	Correction(ring RingID) (DoubleHitTable, bool)
}

// MultCutProvider gives the lower signal threshold of a ring.
type MultCutProvider interface {
	CutAtBin(ring RingID, etaBin int) float64
	CutAt(ring RingID, eta float64) float64
}

// FitShape is implemented by fits that expose their parameters, which the
// fit-derived multiplicity cuts need.
type FitShape interface {
	MostProbable() float64
	LandauWidth() float64
	LowerBound() float64
}
