package density

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalibrationFile() CalibrationFile {
	return CalibrationFile{
		MinRun:  295000,
		MaxRun:  296000,
		EtaAxis: EtaAxis{NBins: 10, Min: -4, Max: 6},
		LowCut:  0.15,
		Fits: []*ELossFitParams{
			{
				Detector: 1, Ring: "I", EtaBin: 8, Quality: 9, Chi2: 120.5, NDF: 100,
				C: 1200, Delta: 0.55, Xi: 0.05, Sigma: 0.04, SigmaN: 0.01, LowCut: 0.15,
				A:  []float64{0.1, 0.01},
				EA: []float64{0.002, 0.0005},
			},
			{
				Detector: 3, Ring: "O", EtaBin: 1, Quality: 8, Chi2: 98.1, NDF: 90,
				C: 800, Delta: 0.53, Xi: 0.06, Sigma: 0.05, SigmaN: 0.01, LowCut: 0.15,
				A:  []float64{0.08},
				EA: []float64{0.004},
			},
		},
		DoubleHit: []DoubleHitRing{
			{Detector: 2, Ring: "I", Bins: []DoubleHitBin{
				{EtaLow: 1.5, EtaHigh: 2.5, Value: 1.05},
				{EtaLow: 2.5, EtaHigh: 3.5, Value: 1.08},
			}},
		},
	}
}

var ignoreFitState = cmpopts.IgnoreUnexported(ELossFitParams{})

func TestCalibrationFileRoundTrip(t *testing.T) {
	calib, err := NewCalibration(testCalibrationFile())
	require.NoError(t, err)
	assert.Equal(t, 2, calib.ELoss.NFits())

	var buf bytes.Buffer
	require.NoError(t, WriteCalibration(&buf, calib))
	assert.Contains(t, buf.String(), `"double_hit"`)

	read, err := ReadCalibration(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(testCalibrationFile(), read.File(), ignoreFitState); diff != "" {
		t.Errorf("calibration mismatch (-want +got):\n%s", diff)
	}

	providers := read.Providers()
	fit, ok := providers.ELoss.Fit(Rings[4], 1)
	require.True(t, ok)
	assert.Equal(t, 2, fit.MaxUsableWeight())
	dh, ok := providers.DoubleHit.Correction(Rings[1])
	require.True(t, ok)
	assert.Equal(t, 1.08, dh.ValueAt(3))
}

func TestLoadCalibrationFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "calib.json")
	calib, err := NewCalibration(testCalibrationFile())
	require.NoError(t, err)
	f, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, WriteCalibration(f, calib))
	require.NoError(t, f.Close())

	loaded, err := LoadCalibrationFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 295000, loaded.MinRun)

	_, err = LoadCalibrationFile(filepath.Join(dir, "missing.json"))
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBadCalibration(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CalibrationFile)
	}{
		{"axis", func(f *CalibrationFile) { f.EtaAxis = EtaAxis{} }},
		{"ring", func(f *CalibrationFile) { f.Fits[0].Ring = "O" }},
		{"bin", func(f *CalibrationFile) { f.Fits[1].EtaBin = 10 }},
		{"double hit ring", func(f *CalibrationFile) { f.DoubleHit[0].Detector = 4 }},
		{"double hit overlap", func(f *CalibrationFile) { f.DoubleHit[0].Bins[1].EtaLow = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testCalibrationFile()
			tt.modify(&f)
			_, err := NewCalibration(f)
			assert.Error(t, err)
		})
	}

	_, err := ReadCalibration(strings.NewReader("{"))
	assert.Error(t, err)
}
