package density

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Calibration bundles the energy loss fits and double hit corrections valid
// for a range of runs.
type Calibration struct {
	MinRun    int
	MaxRun    int
	ELoss     *ELossFitTable
	DoubleHit *DoubleHitTables
}

// DoubleHitRing is the double hit correction of one ring in a calibration
// file.
type DoubleHitRing struct {
	Detector int            `json:"detector"`
	Ring     string         `json:"ring"`
	Bins     []DoubleHitBin `json:"bins"`
}

// CalibrationFile is the JSON representation of a Calibration.
type CalibrationFile struct {
	MinRun    int               `json:"min_run"`
	MaxRun    int               `json:"max_run"`
	EtaAxis   EtaAxis           `json:"eta_axis"`
	LowCut    float64           `json:"low_cut"`
	Fits      []*ELossFitParams `json:"fits"`
	DoubleHit []DoubleHitRing   `json:"double_hit"`
}

// NewCalibration builds the providers from the content of a calibration
// file.
func NewCalibration(f CalibrationFile) (*Calibration, error) {
	if !f.EtaAxis.Valid() {
		return nil, fmt.Errorf("invalid eta axis %v", f.EtaAxis)
	}
	calib := &Calibration{
		MinRun:    f.MinRun,
		MaxRun:    f.MaxRun,
		ELoss:     NewELossFitTable(f.EtaAxis),
		DoubleHit: NewDoubleHitTables(),
	}
	calib.ELoss.LowCut = f.LowCut
	for _, fit := range f.Fits {
		ring, err := NewRingID(fit.Detector, fit.Ring)
		if err != nil {
			return nil, fmt.Errorf("energy loss fit: %w", err)
		}
		if err := calib.ELoss.AddFit(ring, fit.EtaBin, fit); err != nil {
			return nil, err
		}
	}
	for _, dh := range f.DoubleHit {
		ring, err := NewRingID(dh.Detector, dh.Ring)
		if err != nil {
			return nil, fmt.Errorf("double hit correction: %w", err)
		}
		table, err := NewDoubleHitIntervals(dh.Bins)
		if err != nil {
			return nil, fmt.Errorf("double hit correction of %v: %w", ring, err)
		}
		if err := calib.DoubleHit.Set(ring, table); err != nil {
			return nil, err
		}
	}
	return calib, nil
}

// File returns the JSON representation of the calibration.
func (c *Calibration) File() CalibrationFile {
	f := CalibrationFile{
		MinRun:  c.MinRun,
		MaxRun:  c.MaxRun,
		EtaAxis: c.ELoss.Axis,
		LowCut:  c.ELoss.LowCut,
		Fits:    c.ELoss.Fits(),
	}
	for _, ring := range Rings {
		table, ok := c.DoubleHit.Intervals(ring)
		if !ok {
			continue
		}
		f.DoubleHit = append(f.DoubleHit, DoubleHitRing{
			Detector: int(ring.Detector),
			Ring:     ring.Ring.String(),
			Bins:     table.Bins(),
		})
	}
	return f
}

// Providers returns the calibration as calculator providers.
func (c *Calibration) Providers() Providers {
	return Providers{ELoss: c.ELoss, DoubleHit: c.DoubleHit}
}

func ReadCalibration(r io.Reader) (*Calibration, error) {
	var f CalibrationFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding calibration: %w", err)
	}
	return NewCalibration(f)
}

func LoadCalibrationFile(filename string) (*Calibration, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()
	return ReadCalibration(file)
}

func WriteCalibration(w io.Writer, c *Calibration) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c.File())
}
