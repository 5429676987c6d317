package density

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingIDs(t *testing.T) {
	names := []string{"FMD1i", "FMD2i", "FMD2o", "FMD3i", "FMD3o"}
	for i, ring := range Rings {
		assert.Equal(t, i, ring.Index())
		assert.Equal(t, names[i], ring.String())
		assert.Equal(t, ring.NSectors()*ring.NStrips(), ring.NChannels())
	}
	assert.Equal(t, -1, RingID{Detector: 1, Ring: Outer}.Index())
	assert.Equal(t, -1, RingID{Detector: 4, Ring: Inner}.Index())

	ring, err := NewRingID(2, "o")
	require.NoError(t, err)
	assert.Equal(t, Rings[2], ring)

	_, err = NewRingID(1, "O")
	assert.Error(t, err)
	_, err = NewRingID(3, "x")
	assert.Error(t, err)
}

func TestEtaAxis(t *testing.T) {
	axis := EtaAxis{NBins: 10, Min: -4, Max: 6}
	require.True(t, axis.Valid())
	assert.Equal(t, 1.0, axis.Width())
	assert.Equal(t, 0, axis.FindBin(-4))
	assert.Equal(t, 4, axis.FindBin(0.5))
	assert.Equal(t, 9, axis.FindBin(5.99))
	assert.Equal(t, -1, axis.FindBin(-4.1))
	assert.Equal(t, 10, axis.FindBin(6))
	assert.False(t, axis.InRange(axis.FindBin(6)))
	assert.InDelta(t, 0.5, axis.BinCenter(4), 1e-12)
	assert.InDelta(t, 0.0, axis.BinLow(4), 1e-12)

	assert.False(t, EtaAxis{}.Valid())
	assert.Equal(t, -1, EtaAxis{}.FindBin(0))
}

func TestEtaFromStrip(t *testing.T) {
	// FMD1 and FMD2 look forward, FMD3 backward
	assert.Greater(t, EtaFromStrip(Rings[0], 0, 0, 0), 3.0)
	assert.Greater(t, EtaFromStrip(Rings[1], 0, 0, 0), 1.5)
	assert.Less(t, EtaFromStrip(Rings[3], 0, 0, 0), -1.5)
	assert.Less(t, EtaFromStrip(Rings[4], 0, 0, 0), -1.5)

	// larger radius means smaller |eta|
	assert.Greater(t, EtaFromStrip(Rings[0], 0, 0, 0), EtaFromStrip(Rings[0], 0, 511, 0))
	// moving the vertex towards the ring increases the angle
	assert.Less(t, EtaFromStrip(Rings[0], 0, 100, 10), EtaFromStrip(Rings[0], 0, 100, 0))
}

func TestPhiFromSector(t *testing.T) {
	assert.InDelta(t, 9.0, PhiFromSector(Rings[0], 0), 1e-12)
	assert.InDelta(t, 4.5, PhiFromSector(Rings[2], 0), 1e-12)
	assert.InDelta(t, 351.0, PhiFromSector(Rings[0], 19), 1e-12)
}

func TestAcceptance(t *testing.T) {
	geom := NewAcceptanceGeometry()

	inner := geom.Table(Inner)
	require.Len(t, inner.Values, 512)
	outer := geom.Table(Outer)
	require.Len(t, outer.Values, 256)

	for _, table := range []AcceptanceTable{inner, outer} {
		for strip, v := range table.Values {
			assert.Greater(t, v, 0.0, "strip %d of %v", strip, table.Ring)
			assert.LessOrEqual(t, v, 1.0, "strip %d of %v", strip, table.Ring)
		}
	}

	// strips inside the sensor corners are fully covered
	assert.Equal(t, 1.0, geom.AcceptanceAt(Inner, 0))
	assert.Equal(t, 1.0, geom.AcceptanceAt(Outer, 0))
	for strip := 0; strip < 470; strip++ {
		assert.Equal(t, 1.0, inner.Values[strip], "inner strip %d", strip)
	}
	for strip := 0; strip < 236; strip++ {
		assert.Equal(t, 1.0, outer.Values[strip], "outer strip %d", strip)
	}
	assert.Less(t, inner.Values[511], inner.Values[480])
	assert.Less(t, inner.Values[511], 1.0)
	assert.Less(t, outer.Values[255], 1.0)

	// outside the table
	assert.Equal(t, 1.0, geom.AcceptanceAt(Inner, 512))
	assert.Equal(t, 1.0, geom.AcceptanceAt(Outer, -1))
}
