package density

import (
	"sync"
	"sync/atomic"
)

// constFit returns the same number of particles for every signal.
type constFit struct {
	maxWeight int
	value     float64
	calls     *atomic.Int64
}

func (f constFit) MaxUsableWeight() int { return f.maxWeight }

func (f constFit) EvaluateWeighted(signal float64, n int) float64 {
	if f.calls != nil {
		f.calls.Add(1)
	}
	return f.value
}

// constCalibration has the same fit in every ring and eta bin.
type constCalibration struct {
	axis EtaAxis
	fit  constFit
}

func newConstCalibration(maxWeight int, value float64) *constCalibration {
	return &constCalibration{
		axis: EtaAxis{NBins: 200, Min: -4, Max: 6},
		fit:  constFit{maxWeight: maxWeight, value: value, calls: &atomic.Int64{}},
	}
}

func (c *constCalibration) Fit(ring RingID, etaBin int) (ELossFit, bool) {
	if ring.Index() < 0 || !c.axis.InRange(etaBin) {
		return nil, false
	}
	return c.fit, true
}

func (c *constCalibration) FindFit(ring RingID, eta float64) (ELossFit, bool) {
	return c.Fit(ring, c.axis.FindBin(eta))
}

func (c *constCalibration) EtaAxis() EtaAxis { return c.axis }

func (c *constCalibration) calls() int64 { return c.fit.calls.Load() }

type occupancyFill struct {
	strip, sector int
	hit           bool
	weight        float64
}

// occupancyRecorder remembers every strip it is given and estimates
// nothing.
type occupancyRecorder struct {
	ring   RingID
	resets int
	fills  []occupancyFill
}

func (o *occupancyRecorder) Reset() {
	o.resets++
	o.fills = o.fills[:0]
}

func (o *occupancyRecorder) Fill(strip, sector int, hit bool, weight float64) {
	o.fills = append(o.fills, occupancyFill{strip, sector, hit, weight})
}

func (o *occupancyRecorder) Result() OccupancyResult {
	return OccupancyResult{
		NSectors: o.ring.NSectors(),
		NStrips:  o.ring.NStrips(),
		Values:   make([]float64, o.ring.NChannels()),
	}
}

func (o *occupancyRecorder) hits() int {
	n := 0
	for _, f := range o.fills {
		if f.hit {
			n++
		}
	}
	return n
}

func (o *occupancyRecorder) find(sector, strip int) (occupancyFill, bool) {
	for _, f := range o.fills {
		if f.sector == sector && f.strip == strip {
			return f, true
		}
	}
	return occupancyFill{}, false
}

// recorders keeps the recorder created for each ring.
type recorders struct {
	mu    sync.Mutex
	rings map[RingID]*occupancyRecorder
}

func (r *recorders) factory() OccupancyFactory {
	r.rings = make(map[RingID]*occupancyRecorder)
	return func(ring RingID) OccupancyEstimator {
		r.mu.Lock()
		defer r.mu.Unlock()
		rec := &occupancyRecorder{ring: ring}
		r.rings[ring] = rec
		return rec
	}
}

// testLogger counts warnings.
type testLogger struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
}

func (l *testLogger) Info(string, string) {}

func (l *testLogger) Warning(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, message)
}

func (l *testLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

func useTestLogger(t interface{ Cleanup(func()) }) *testLogger {
	l := &testLogger{}
	SetLogger(l)
	t.Cleanup(func() { SetLogger(nil) })
	return l
}
