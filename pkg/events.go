package density

// Sentinel values used by the data source for strips without a valid
// signal or pseudorapidity.
const (
	InvalidSignal float32 = 1024
	InvalidEta    float32 = 1024
)

// RingData holds the per-strip values of one ring. Index with
// sector*NStrips + strip.
type RingData struct {
	Signal []float32
	Eta    []float32
	// Phi is in degrees.
	Phi []float32
}

type Event struct {
	RunNumber uint32
	EventID   uint32
	VertexZ   float64
	LowFlux   bool
	Rings     [NRings]RingData
	Error     bool
}

// NewEvent returns an event with every strip marked invalid. Phi is filled
// from the sector geometry.
func NewEvent() *Event {
	ev := &Event{}
	for i, ring := range Rings {
		n := ring.NChannels()
		data := RingData{
			Signal: make([]float32, n),
			Eta:    make([]float32, n),
			Phi:    make([]float32, n),
		}
		for s := 0; s < ring.NSectors(); s++ {
			phi := float32(PhiFromSector(ring, s))
			for t := 0; t < ring.NStrips(); t++ {
				idx := s*ring.NStrips() + t
				data.Signal[idx] = InvalidSignal
				data.Eta[idx] = InvalidEta
				data.Phi[idx] = phi
			}
		}
		ev.Rings[i] = data
	}
	return ev
}

func channel(ring RingID, sector, strip int) int {
	return sector*ring.NStrips() + strip
}

func (e *Event) Multiplicity(ring RingID, sector, strip int) float32 {
	return e.Rings[ring.Index()].Signal[channel(ring, sector, strip)]
}

func (e *Event) Eta(ring RingID, sector, strip int) float32 {
	return e.Rings[ring.Index()].Eta[channel(ring, sector, strip)]
}

func (e *Event) Phi(ring RingID, sector, strip int) float32 {
	return e.Rings[ring.Index()].Phi[channel(ring, sector, strip)]
}

func (e *Event) SetStrip(ring RingID, sector, strip int, signal, eta, phi float32) {
	data := &e.Rings[ring.Index()]
	idx := channel(ring, sector, strip)
	data.Signal[idx] = signal
	data.Eta[idx] = eta
	data.Phi[idx] = phi
}

// SetSignal changes the signal of a strip and fills its pseudorapidity
// from the strip geometry for the given vertex.
func (e *Event) SetSignal(ring RingID, sector, strip int, signal float32) {
	data := &e.Rings[ring.Index()]
	idx := channel(ring, sector, strip)
	data.Signal[idx] = signal
	data.Eta[idx] = float32(EtaFromStrip(ring, sector, strip, e.VertexZ))
}
