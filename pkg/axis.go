package density

import "fmt"

// EtaAxis is a fixed-width binning of pseudorapidity. Bins are numbered
// from 0 to NBins-1.
type EtaAxis struct {
	NBins int     `json:"nbins"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (a EtaAxis) Valid() bool {
	return a.NBins > 0 && a.Max > a.Min
}

func (a EtaAxis) Width() float64 {
	return (a.Max - a.Min) / float64(a.NBins)
}

// FindBin returns the bin holding eta. Values below the axis give -1 and
// values at or above Max give NBins; callers must treat both as out of range.
func (a EtaAxis) FindBin(eta float64) int {
	if !a.Valid() || eta < a.Min {
		return -1
	}
	if eta >= a.Max {
		return a.NBins
	}
	bin := int((eta - a.Min) / a.Width())
	if bin >= a.NBins {
		bin = a.NBins - 1
	}
	return bin
}

func (a EtaAxis) InRange(bin int) bool {
	return bin >= 0 && bin < a.NBins
}

func (a EtaAxis) BinCenter(bin int) float64 {
	return a.Min + (float64(bin)+0.5)*a.Width()
}

func (a EtaAxis) BinLow(bin int) float64 {
	return a.Min + float64(bin)*a.Width()
}

func (a EtaAxis) String() string {
	return fmt.Sprintf("%d bins from %f to %f", a.NBins, a.Min, a.Max)
}
