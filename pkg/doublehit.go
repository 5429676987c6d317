package density

import (
	"fmt"
	"sort"
)

// DoubleHitBin is the double hit correction on [EtaLow, EtaHigh).
type DoubleHitBin struct {
	EtaLow  float64 `json:"eta_low" db:"EtaLow"`
	EtaHigh float64 `json:"eta_high" db:"EtaHigh"`
	Value   float64 `json:"value" db:"Value"`
}

// DoubleHitIntervals is the double hit correction of one ring as a list of
// non-overlapping eta intervals.
type DoubleHitIntervals struct {
	bins []DoubleHitBin
}

func NewDoubleHitIntervals(bins []DoubleHitBin) (*DoubleHitIntervals, error) {
	sorted := make([]DoubleHitBin, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EtaLow < sorted[j].EtaLow
	})
	for i, b := range sorted {
		if b.EtaHigh <= b.EtaLow {
			return nil, fmt.Errorf("empty double hit interval [%f,%f)", b.EtaLow, b.EtaHigh)
		}
		if i > 0 && b.EtaLow < sorted[i-1].EtaHigh {
			return nil, fmt.Errorf("overlapping double hit intervals at eta=%f", b.EtaLow)
		}
	}
	return &DoubleHitIntervals{bins: sorted}, nil
}

// ValueAt returns the correction at eta, or 0 outside the table.
func (d *DoubleHitIntervals) ValueAt(eta float64) float64 {
	i := sort.Search(len(d.bins), func(i int) bool {
		return d.bins[i].EtaHigh > eta
	})
	if i == len(d.bins) || eta < d.bins[i].EtaLow {
		return 0
	}
	return d.bins[i].Value
}

func (d *DoubleHitIntervals) Bins() []DoubleHitBin {
	return d.bins
}

// DoubleHitTables holds the double hit corrections of the rings that have
// one.
type DoubleHitTables struct {
	tables [NRings]*DoubleHitIntervals
}

func NewDoubleHitTables() *DoubleHitTables {
	return &DoubleHitTables{}
}

func (d *DoubleHitTables) Set(ring RingID, table *DoubleHitIntervals) error {
	idx := ring.Index()
	if idx < 0 {
		return fmt.Errorf("cannot set double hit correction for unknown ring %v", ring)
	}
	d.tables[idx] = table
	return nil
}

func (d *DoubleHitTables) Correction(ring RingID) (DoubleHitTable, bool) {
	table, ok := d.Intervals(ring)
	if !ok {
		return nil, false
	}
	return table, true
}

// Intervals is Correction returning the concrete table.
func (d *DoubleHitTables) Intervals(ring RingID) (*DoubleHitIntervals, bool) {
	idx := ring.Index()
	if idx < 0 || d.tables[idx] == nil {
		return nil, false
	}
	return d.tables[idx], true
}
