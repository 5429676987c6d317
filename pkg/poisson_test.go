package density

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillRing(p *PoissonCalculator, ring RingID, hit func(sector, strip int) bool) {
	for s := 0; s < ring.NSectors(); s++ {
		for t := 0; t < ring.NStrips(); t++ {
			p.Fill(t, s, hit(s, t), 1)
		}
	}
}

func TestPoissonLumping(t *testing.T) {
	p := NewPoissonCalculator(Rings[0], 0, 1000)
	assert.Equal(t, 1, p.etaLumping)
	assert.Equal(t, 20, p.phiLumping)
	assert.Equal(t, 512, p.nx)
	assert.Equal(t, 1, p.ny)

	p = NewPoissonCalculator(Rings[2], 32, 4)
	assert.Equal(t, 8, p.nx)
	assert.Equal(t, 10, p.ny)
}

func TestPoissonSingleHit(t *testing.T) {
	ring := Rings[0]
	p := NewPoissonCalculator(ring, 32, 4)
	fillRing(p, ring, func(s, t int) bool { return s == 1 && t == 40 })

	res := p.Result()
	require.Len(t, res.Values, ring.NChannels())

	total := 32.0 * 4
	mean := -math.Log((total - 1) / total)
	want := mean / (1 - math.Exp(-mean))
	assert.InDelta(t, want, res.At(1, 40), 1e-12)
	assert.Greater(t, res.At(1, 40), 1.0)

	sum := 0.0
	for _, v := range res.Values {
		sum += v
	}
	assert.InDelta(t, want, sum, 1e-12)
	assert.Equal(t, 0.0, res.At(-1, 40))
	assert.Equal(t, 0.0, res.At(1, 512))
}

func TestPoissonSaturated(t *testing.T) {
	ring := Rings[4]
	p := NewPoissonCalculator(ring, 4, 2)
	// the first cell is completely hit
	fillRing(p, ring, func(s, t int) bool { return s < 2 && t < 4 })

	res := p.Result()
	mean := math.Log(8)
	want := mean / (1 - math.Exp(-mean))
	for sector := 0; sector < 2; sector++ {
		for strip := 0; strip < 4; strip++ {
			assert.InDelta(t, want, res.At(sector, strip), 1e-12)
		}
	}
}

func TestPoissonReset(t *testing.T) {
	ring := Rings[1]
	p := NewPoissonCalculator(ring, 32, 4)
	fillRing(p, ring, func(s, t int) bool { return t%2 == 0 })
	p.Reset()
	fillRing(p, ring, func(int, int) bool { return false })

	for _, v := range p.Result().Values {
		require.Equal(t, 0.0, v)
	}
}

func TestPoissonWeights(t *testing.T) {
	ring := Rings[3]
	p := NewPoissonCalculator(ring, 512, 20)
	for sector := 0; sector < ring.NSectors(); sector++ {
		for strip := 0; strip < ring.NStrips(); strip++ {
			p.Fill(strip, sector, sector == 0 && strip == 0, 2)
		}
	}
	// out of the ring
	p.Fill(600, 0, true, 1)

	total := float64(ring.NChannels())
	mean := -math.Log((total - 1) / total)
	assert.InDelta(t, 2*mean/(1-math.Exp(-mean)), p.Result().At(0, 0), 1e-12)
}
