package density

import "fmt"

// RingType is the type of a FMD ring. Inner rings have 20 sectors of 512
// strips, outer rings 40 sectors of 256 strips.
type RingType uint8

const (
	Inner RingType = iota
	Outer
)

const NRings = 5

func (r RingType) String() string {
	switch r {
	case Inner:
		return "I"
	case Outer:
		return "O"
	default:
		return "?"
	}
}

func (r RingType) NSectors() int {
	if r == Inner {
		return 20
	}
	return 40
}

func (r RingType) NStrips() int {
	if r == Inner {
		return 512
	}
	return 256
}

// ParseRingType accepts 'I', 'i', 'O' and 'o'.
func ParseRingType(s string) (RingType, error) {
	switch s {
	case "I", "i":
		return Inner, nil
	case "O", "o":
		return Outer, nil
	}
	return Inner, fmt.Errorf("invalid ring type %q", s)
}

// RingID identifies one of the five FMD rings.
type RingID struct {
	Detector uint8
	Ring     RingType
}

// Rings lists the five rings in the canonical order FMD1i, FMD2i, FMD2o,
// FMD3i, FMD3o. Index() returns the position of a ring in this list.
var Rings = [NRings]RingID{
	{1, Inner},
	{2, Inner},
	{2, Outer},
	{3, Inner},
	{3, Outer},
}

func NewRingID(detector int, ring string) (RingID, error) {
	rt, err := ParseRingType(ring)
	if err != nil {
		return RingID{}, err
	}
	id := RingID{Detector: uint8(detector), Ring: rt}
	if id.Index() < 0 {
		return RingID{}, fmt.Errorf("no ring FMD%d%s", detector, rt)
	}
	return id, nil
}

// Index returns the position of the ring in Rings or -1 for a ring that
// does not exist (e.g. FMD1o).
func (r RingID) Index() int {
	switch r.Detector {
	case 1:
		if r.Ring == Inner {
			return 0
		}
	case 2:
		return 1 + int(r.Ring)
	case 3:
		return 3 + int(r.Ring)
	}
	return -1
}

func (r RingID) NSectors() int { return r.Ring.NSectors() }
func (r RingID) NStrips() int  { return r.Ring.NStrips() }

// NChannels is the number of strips in the full ring.
func (r RingID) NChannels() int { return r.NSectors() * r.NStrips() }

func (r RingID) String() string {
	if r.Ring == Inner {
		return fmt.Sprintf("FMD%di", r.Detector)
	}
	return fmt.Sprintf("FMD%do", r.Detector)
}
