package density

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCut = 0.5

type calculatorFixture struct {
	calc   *DensityCalculator
	calib  *constCalibration
	occ    *recorders
	histos *Histos
}

func newFixture(t *testing.T, modify func(*Configuration)) *calculatorFixture {
	t.Helper()
	config := DefaultConfiguration()
	config.MultCuts.Mode = CutFixed
	if modify != nil {
		modify(&config)
	}
	f := &calculatorFixture{
		calib: newConstCalibration(3, 1.5),
		occ:   &recorders{},
	}
	calc, err := NewDensityCalculator(config, Providers{
		ELoss:     f.calib,
		DoubleHit: NewDoubleHitTables(),
		Cuts:      NewFixedCuts(testCut),
		Occupancy: f.occ.factory(),
	})
	require.NoError(t, err)
	calc.Init(config.DefaultEtaAxis)
	f.calc = calc
	f.histos = NewHistos(config.DensityAxis)
	return f
}

func (f *calculatorFixture) total(ring RingID) float64 {
	m, _ := f.histos.Get(ring)
	return m.Total()
}

func TestCalculateSignalAtCut(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.SetSignal(Rings[0], 0, 100, testCut)

	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.Equal(t, 0.0, f.total(Rings[0]))
	assert.Zero(t, f.calib.calls())

	fill, ok := f.occ.rings[Rings[0]].find(0, 100)
	require.True(t, ok)
	assert.False(t, fill.hit)
}

func TestCalculateAboveCut(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.SetSignal(Rings[0], 0, 0, 1)

	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	// strip 0 has full acceptance so the estimate is not corrected
	assert.Equal(t, 1.5, f.total(Rings[0]))
	for _, ring := range Rings[1:] {
		assert.Equal(t, 0.0, f.total(ring), "%v", ring)
	}
	assert.Equal(t, int64(1), f.calib.calls())

	rec := f.occ.rings[Rings[0]]
	assert.Equal(t, 1, rec.resets)
	assert.Len(t, rec.fills, Rings[0].NChannels())
	assert.Equal(t, 1, rec.hits())
	fill, _ := rec.find(0, 0)
	assert.Equal(t, occupancyFill{strip: 0, sector: 0, hit: true, weight: 1}, fill)

	rh, ok := f.calc.RingHistos(Rings[0])
	require.True(t, ok)
	assert.Equal(t, 1.5, rh.Density.SumW())
	assert.Equal(t, 1.0, rh.ELossUsed.SumW())
}

func TestCalculateInvalidSignal(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.SetSignal(Rings[2], 3, 10, InvalidSignal)
	ev.SetSignal(Rings[2], 3, 11, 25)

	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.Equal(t, 0.0, f.total(Rings[2]))
	assert.Zero(t, f.calib.calls())

	rec := f.occ.rings[Rings[2]]
	for _, strip := range []int{10, 11} {
		fill, ok := rec.find(3, strip)
		require.True(t, ok)
		assert.Equal(t, occupancyFill{strip: strip, sector: 3, hit: false, weight: 1}, fill)
	}
	rh, _ := f.calc.RingHistos(Rings[2])
	assert.Equal(t, 0.0, rh.ELoss.SumW())
}

func TestCalculateInvalidEta(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.SetStrip(Rings[1], 0, 0, 2, InvalidEta, 9)
	assert.Equal(t, float64(DisabledCut), f.calc.MultCut(Rings[1], float64(InvalidEta)))

	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.Equal(t, 0.0, f.total(Rings[1]))
	assert.Zero(t, f.calib.calls())

	// with the eta recalculated from the geometry the strip is used
	f = newFixture(t, func(c *Configuration) { c.RecalculateEta = true })
	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.Equal(t, 1.5, f.total(Rings[1]))
}

func TestCalculateLowFluxNothingAboveCut(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.LowFlux = true
	for i, ring := range Rings {
		for s := 0; s < ring.NSectors(); s += 3 {
			ev.SetSignal(ring, s, 7*i, 0.2)
		}
	}

	require.NoError(t, f.calc.Calculate(ev, f.histos, true, 0))
	for _, ring := range Rings {
		assert.Equal(t, 0.0, f.total(ring), "%v", ring)
		rec := f.occ.rings[ring]
		assert.Len(t, rec.fills, ring.NChannels(), "%v", ring)
		assert.Zero(t, rec.hits(), "%v", ring)
	}
}

func TestCalculateLowFlux(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.LowFlux = true
	ev.SetSignal(Rings[3], 5, 2, 3)

	require.NoError(t, f.calc.Calculate(ev, f.histos, true, 0))
	// one particle, no double hit table for the ring
	assert.Equal(t, 1.0, f.total(Rings[3]))
	assert.Zero(t, f.calib.calls())
}

func TestCalculateAcceptanceModes(t *testing.T) {
	strip := 511
	acc := NewAcceptanceGeometry().AcceptanceAt(Inner, strip)
	require.Less(t, acc*1, testCut)

	f := newFixture(t, func(c *Configuration) { c.PhiAcceptance = PhiAcceptanceNch })
	ev := NewEvent()
	ev.SetSignal(Rings[0], 2, strip, 1)
	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.InDelta(t, 1.5/acc, f.total(Rings[0]), 1e-9)

	// the scaled signal no longer passes the cut
	f = newFixture(t, func(c *Configuration) { c.PhiAcceptance = PhiAcceptanceELoss })
	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.Equal(t, 0.0, f.total(Rings[0]))

	f = newFixture(t, func(c *Configuration) { c.PhiAcceptance = PhiAcceptanceDisabled })
	require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	assert.Equal(t, 1.5, f.total(Rings[0]))
}

func TestCalculateMissingRing(t *testing.T) {
	log := useTestLogger(t)
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.SetSignal(Rings[0], 0, 0, 1)

	err := f.calc.Calculate(ev, &Histos{}, false, 0)
	var ringErr *ErrRingNotFound
	require.ErrorAs(t, err, &ringErr)
	assert.Equal(t, Rings[0], ringErr.Ring)
	assert.Len(t, log.errors, 1)
	// nothing was processed
	assert.Zero(t, f.calib.calls())
}

func TestCalculateParallel(t *testing.T) {
	f := newFixture(t, func(c *Configuration) { c.Parallel = true })
	ev := NewEvent()
	for _, ring := range Rings {
		ev.SetSignal(ring, 1, 0, 1)
	}
	for i := 0; i < 3; i++ {
		f.histos.Clear()
		require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
		for _, ring := range Rings {
			assert.Equal(t, 1.5, f.total(ring), "%v", ring)
		}
	}
	assert.Equal(t, int64(3*NRings), f.calib.calls())
	assert.Equal(t, int64(3*NRings), f.calc.Monitor().SumOfWeights.Entries())
}

func TestCalculatePoisson(t *testing.T) {
	config := DefaultConfiguration()
	config.MultCuts.Mode = CutFixed
	config.Method = MethodPoisson
	config.EtaLumping = 32
	config.PhiLumping = 4
	calc, err := NewDensityCalculator(config, Providers{
		ELoss: newConstCalibration(3, 1.5),
		Cuts:  NewFixedCuts(testCut),
	})
	require.NoError(t, err)
	calc.Init(config.DefaultEtaAxis)

	ev := NewEvent()
	ev.SetSignal(Rings[0], 0, 0, 1)
	histos := NewHistos(config.DensityAxis)
	require.NoError(t, calc.Calculate(ev, histos, false, 0))

	total := 32.0 * 4
	mean := -math.Log((total - 1) / total)
	m, _ := histos.Get(Rings[0])
	assert.InDelta(t, mean/(1-math.Exp(-mean)), m.Total(), 1e-9)

	rh, _ := calc.RingHistos(Rings[0])
	_, ok := rh.Occupancy().(*PoissonCalculator)
	assert.True(t, ok)
	assert.Equal(t, int64(m.NX()*m.NY()), rh.ELossVsPoisson.Entries())
}

func TestInitCaches(t *testing.T) {
	f := newFixture(t, nil)
	for _, ring := range Rings {
		rh, _ := f.calc.RingHistos(ring)
		assert.Equal(t, testCut, rh.MultCut)
		assert.Equal(t, 3, f.calc.WeightCache().MaxWeight(ring, 2))
	}
	nBins := f.calib.axis.NBins
	assert.Equal(t, float64(3*nBins*NRings), f.calc.MaxWeights.SumW())
	assert.InDelta(t, testCut*float64(nBins*NRings), f.calc.LowCuts.SumW(), 1e-9)

	config := DefaultConfiguration()
	config.MultCuts.Mode = CutFixed
	calc, err := NewDensityCalculator(config, Providers{})
	require.NoError(t, err)
	calc.Init(EtaAxis{NBins: 10, Min: -4, Max: 6})
	assert.Equal(t, 10, calc.WeightCache().Axis().NBins)
	rh, _ := calc.RingHistos(Rings[0])
	assert.Equal(t, -1.0, rh.MultCut)
}

func TestScaleAndYODA(t *testing.T) {
	f := newFixture(t, nil)
	ev := NewEvent()
	ev.SetSignal(Rings[0], 0, 0, 1)
	for i := 0; i < 2; i++ {
		f.histos.Clear()
		require.NoError(t, f.calc.Calculate(ev, f.histos, false, 0))
	}

	assert.Nil(t, f.calc.ScaleHistograms(0))
	sums := f.calc.ScaleHistograms(2)
	require.Len(t, sums, NRings)
	width := f.calc.Configuration().DensityAxis.Width()
	assert.InDelta(t, 1.5/width, sums[0].SumW(), 1e-9)
	assert.Equal(t, 0.0, sums[1].SumW())
	rh, ok := f.calc.RingHistos(Rings[0])
	require.True(t, ok)
	assert.InDelta(t, 1.5, rh.Density.SumW(), 1e-12)
	assert.Equal(t, "FMD1i/inclDensity", rh.Density.Annotation()["name"])

	var buf bytes.Buffer
	require.NoError(t, f.calc.WriteYODA(&buf))
	assert.Contains(t, buf.String(), "BEGIN YODA")
	assert.Contains(t, buf.String(), "FMD1i/inclDensity")
}
