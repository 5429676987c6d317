package density

import "fmt"

// WeightCache caches, per ring and eta bin, the maximum number of particle
// terms usable in the energy loss inversion together with the multiplicity
// cut used in that bin. It is built once per eta binning and only read
// while events are processed.
type WeightCache struct {
	maxParticles int
	axis         EtaAxis
	weights      [NRings][]int
	lowCuts      [NRings][]float64
}

func NewWeightCache(maxParticles int) *WeightCache {
	return &WeightCache{maxParticles: maxParticles}
}

// findMaxWeight returns min(maxParticles, fit maximum) or -1 when there is
// no fit.
func (w *WeightCache) findMaxWeight(calib ELossCalibration, ring RingID, etaBin int) int {
	if calib == nil {
		return -1
	}
	fit, ok := calib.Fit(ring, etaBin)
	if !ok {
		return -1
	}
	return min(w.maxParticles, fit.MaxUsableWeight())
}

// Rebuild recomputes the cache. The eta axis is taken from the calibration
// when there is one, otherwise def is used.
func (w *WeightCache) Rebuild(def EtaAxis, calib ELossCalibration, cuts MultCutProvider) {
	axis := def
	if calib != nil {
		axis = calib.EtaAxis()
	}
	w.axis = axis
	logger.Info(fmt.Sprintf("Get eta axis with %d bins from %f to %f", axis.NBins, axis.Min, axis.Max), "weights")

	for i, ring := range Rings {
		weights := make([]int, axis.NBins)
		cutValues := make([]float64, axis.NBins)
		for bin := 0; bin < axis.NBins; bin++ {
			weights[bin] = w.findMaxWeight(calib, ring, bin)
			cutValues[bin] = -1
			if cuts != nil {
				cutValues[bin] = cuts.CutAtBin(ring, bin)
			}
		}
		w.weights[i] = weights
		w.lowCuts[i] = cutValues
	}
}

func (w *WeightCache) Axis() EtaAxis {
	return w.axis
}

func (w *WeightCache) MaxParticles() int {
	return w.maxParticles
}

// MaxWeightAt returns the cached maximum weight of a ring in an eta bin.
// Values <= 0 mean there is no usable calibration.
func (w *WeightCache) MaxWeightAt(ring RingID, etaBin int) int {
	idx := ring.Index()
	if idx < 0 {
		logger.Warning(fmt.Sprintf("No array for %v", ring), "weights")
		return -1
	}
	weights := w.weights[idx]
	if etaBin < 0 || etaBin >= len(weights) {
		err := &ErrEtaBinOutOfRange{Ring: ring, Bin: etaBin, NBins: len(weights)}
		logger.Warning(err.Error(), "weights")
		return -1
	}
	return weights[etaBin]
}

// MaxWeight returns the cached maximum weight of a ring at eta.
func (w *WeightCache) MaxWeight(ring RingID, eta float64) int {
	return w.MaxWeightAt(ring, w.axis.FindBin(eta))
}

// Weights returns the cached weights of a ring. The slice must not be
// modified.
func (w *WeightCache) Weights(ring RingID) []int {
	idx := ring.Index()
	if idx < 0 {
		return nil
	}
	return w.weights[idx]
}

// LowCuts returns the cached cuts of a ring. The slice must not be
// modified.
func (w *WeightCache) LowCuts(ring RingID) []float64 {
	idx := ring.Index()
	if idx < 0 {
		return nil
	}
	return w.lowCuts[idx]
}
