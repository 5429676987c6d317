package density

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// DensityMap is the number of particles of a ring binned in eta and phi
// (radians). There is one phi bin per sector.
type DensityMap struct {
	Ring RingID
	Axis EtaAxis
	h    *hbook.H2D
}

func NewDensityMap(ring RingID, axis EtaAxis) *DensityMap {
	m := &DensityMap{Ring: ring, Axis: axis}
	m.Reset()
	return m
}

func (m *DensityMap) Reset() {
	m.h = hbook.NewH2D(m.Axis.NBins, m.Axis.Min, m.Axis.Max, m.Ring.NSectors(), 0, 2*math.Pi)
	m.h.Annotation()["name"] = m.Ring.String()
	m.h.Annotation()["title"] = "dN/d#eta d#phi in " + m.Ring.String()
}

// Fill adds w at (eta, phi). Values outside the map end up in the
// under/overflow.
func (m *DensityMap) Fill(eta, phi, w float64) {
	m.h.Fill(eta, phi, w)
}

func (m *DensityMap) NX() int { return m.h.Binning.Nx }
func (m *DensityMap) NY() int { return m.h.Binning.Ny }

// At returns the content of bin (ix, iy), counting from 0.
func (m *DensityMap) At(ix, iy int) float64 {
	if ix < 0 || ix >= m.NX() || iy < 0 || iy >= m.NY() {
		return 0
	}
	return m.h.Binning.Bins[iy*m.NX()+ix].SumW()
}

// Total is the sum of the in-range bins.
func (m *DensityMap) Total() float64 {
	sum := 0.0
	for i := range m.h.Binning.Bins {
		sum += m.h.Binning.Bins[i].SumW()
	}
	return sum
}

// Add fills the content of o into m bin by bin. Both maps must share the
// same binning.
func (m *DensityMap) Add(o *DensityMap) {
	for i := range o.h.Binning.Bins {
		bin := &o.h.Binning.Bins[i]
		if w := bin.SumW(); w != 0 {
			m.h.Fill(bin.XMid(), bin.YMid(), w)
		}
	}
}

func (m *DensityMap) H2D() *hbook.H2D {
	return m.h
}

// Histos is the set of per-event density maps owned by the caller of
// DensityCalculator.Calculate, one per ring.
type Histos struct {
	maps [NRings]*DensityMap
}

func NewHistos(axis EtaAxis) *Histos {
	h := &Histos{}
	for i, ring := range Rings {
		h.maps[i] = NewDensityMap(ring, axis)
	}
	return h
}

func (h *Histos) Get(ring RingID) (*DensityMap, bool) {
	idx := ring.Index()
	if h == nil || idx < 0 || h.maps[idx] == nil {
		return nil, false
	}
	return h.maps[idx], true
}

// Clear resets every map. It is called between events.
func (h *Histos) Clear() {
	for _, m := range h.maps {
		if m != nil {
			m.Reset()
		}
	}
}
