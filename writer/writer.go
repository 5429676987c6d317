package writer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	density "github.com/alice-fmd/density_go/pkg"
	"github.com/google/uuid"
	"gonum.org/v1/hdf5"
)

// Writer stores the results of a density pass in an HDF5 file: one row per
// event, optionally the per-event density maps, the accumulated density
// maps, the cached calibration tables and the configuration.
type Writer struct {
	File          *hdf5.File
	Filename      string
	PassID        uuid.UUID
	RunGroup      *hdf5.Group
	DensityGroup  *hdf5.Group
	CalibGroup    *hdf5.Group
	EventTable    *hdf5.Dataset
	RunInfoTable  *hdf5.Dataset
	ParamsTable   *hdf5.Dataset
	EventDensity  [density.NRings]*hdf5.Dataset
	Axis          density.EtaAxis
	EvtCounter    int
	RunNumber     int32
	writeDensity  bool
	compression   int
	paramsWritten int
}

// NewWriter creates the output file. When perEvent is set the density map of
// every ring is stored for each event.
func NewWriter(filename string, compressionLevel int, axis density.EtaAxis, perEvent bool) (*Writer, error) {
	f, err := hdf5.CreateFile(filename, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &density.ErrOpenFile{Filename: filename, Err: err}
	}
	w := &Writer{
		File:         f,
		Filename:     filename,
		PassID:       uuid.New(),
		Axis:         axis,
		writeDensity: perEvent,
		compression:  compressionLevel,
	}
	if err := w.init(); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return w, nil
}

func (w *Writer) init() error {
	var err error
	if w.RunGroup, err = createGroup(w.File, "Run"); err != nil {
		return err
	}
	if w.DensityGroup, err = createGroup(w.File, "Density"); err != nil {
		return err
	}
	if w.CalibGroup, err = createGroup(w.File, "Calibration"); err != nil {
		return err
	}
	if w.EventTable, err = createTable(w.RunGroup, "events", EventDataHDF5{}, w.compression); err != nil {
		return err
	}
	if w.RunInfoTable, err = createTable(w.RunGroup, "runInfo", RunInfoHDF5{}, w.compression); err != nil {
		return err
	}
	if w.ParamsTable, err = createTable(w.RunGroup, "configuration", ParamHDF5{}, w.compression); err != nil {
		return err
	}
	if !w.writeDensity {
		return nil
	}
	for i, ring := range density.Rings {
		nColumns := w.Axis.NBins * ring.NSectors()
		if w.EventDensity[i], err = create2dArray(w.DensityGroup, "events_"+ring.String(), nColumns, w.compression); err != nil {
			return err
		}
	}
	return nil
}

// flatten returns the content of a map with the phi bins of one eta bin
// next to each other.
func flatten(m *density.DensityMap) []float64 {
	nx, ny := m.NX(), m.NY()
	values := make([]float64, nx*ny)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			values[ix*ny+iy] = m.At(ix, iy)
		}
	}
	return values
}

// WriteEvent appends the summary of an event and, if enabled, its density
// maps.
func (w *Writer) WriteEvent(ev *density.Event, histos *density.Histos) error {
	total := 0.0
	maps := make([]*density.DensityMap, density.NRings)
	for i, ring := range density.Rings {
		m, ok := histos.Get(ring)
		if !ok {
			return &density.ErrRingNotFound{Ring: ring}
		}
		maps[i] = m
		total += m.Total()
	}

	w.RunNumber = int32(ev.RunNumber)
	entry := EventDataHDF5{
		EvtNumber:  int32(ev.EventID),
		RunNumber:  int32(ev.RunNumber),
		VertexZ:    ev.VertexZ,
		NParticles: total,
	}
	if ev.LowFlux {
		entry.LowFlux = 1
	}
	if err := writeEntryToTable(w.EventTable, entry, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", ev.EventID, err)
	}

	if w.writeDensity {
		for i, m := range maps {
			values := flatten(m)
			if len(values) != w.Axis.NBins*density.Rings[i].NSectors() {
				return fmt.Errorf("density map of %v does not match the output axis", density.Rings[i])
			}
			if err := write2dArray(w.EventDensity[i], &values, w.EvtCounter, len(values)); err != nil {
				return fmt.Errorf("error writing density of %v for event %d: %w", density.Rings[i], ev.EventID, err)
			}
		}
	}
	w.EvtCounter++
	return nil
}

// WriteConfiguration stores every numeric and boolean parameter of the
// configuration, named by its JSON key.
func (w *Writer) WriteConfiguration(config density.Configuration) error {
	v := reflect.ValueOf(config)
	t := v.Type()
	entries := make([]ParamHDF5, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		paramName, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		field := v.Field(i)
		var value float64
		switch field.Kind() {
		case reflect.Int:
			// enumerations are stored by their index
			value = float64(field.Int())
		case reflect.Float64:
			value = field.Float()
		case reflect.Bool:
			if field.Bool() {
				value = 1
			}
		default:
			continue
		}
		entries = append(entries, ParamHDF5{
			ParamStr: convertToHdf5String(paramName),
			Value:    value,
		})
	}
	if err := writeArrayToTable(w.ParamsTable, &entries, w.paramsWritten); err != nil {
		return fmt.Errorf("error writing configuration: %w", err)
	}
	w.paramsWritten += len(entries)
	return nil
}

// WriteCalibrationTables stores the cached maximum weights and cuts, one row
// per ring.
func (w *Writer) WriteCalibrationTables(cache *density.WeightCache) error {
	axis := cache.Axis()
	if !axis.Valid() {
		return fmt.Errorf("weight cache has no eta axis")
	}
	weights := make([]int32, 0, density.NRings*axis.NBins)
	cuts := make([]float64, 0, density.NRings*axis.NBins)
	for _, ring := range density.Rings {
		for _, mw := range cache.Weights(ring) {
			weights = append(weights, int32(mw))
		}
		cuts = append(cuts, cache.LowCuts(ring)...)
	}
	dims := []uint{density.NRings, uint(axis.NBins)}
	if err := createFixedArray(w.CalibGroup, "maxWeights", hdf5.T_NATIVE_INT32, dims, weights); err != nil {
		return err
	}
	if err := createFixedArray(w.CalibGroup, "lowCuts", hdf5.T_NATIVE_DOUBLE, dims, cuts); err != nil {
		return err
	}
	etaAxis := []float64{float64(axis.NBins), axis.Min, axis.Max}
	return createFixedArray(w.CalibGroup, "etaAxis", hdf5.T_NATIVE_DOUBLE, []uint{3}, etaAxis)
}

// WriteDensity stores the density accumulated by the calculator in every
// ring.
func (w *Writer) WriteDensity(calc *density.DensityCalculator) error {
	for _, ring := range density.Rings {
		rh, ok := calc.RingHistos(ring)
		if !ok {
			return &density.ErrRingNotFound{Ring: ring}
		}
		bng := &rh.Density.Binning
		values := make([]float64, bng.Nx*bng.Ny)
		for ix := 0; ix < bng.Nx; ix++ {
			for iy := 0; iy < bng.Ny; iy++ {
				values[ix*bng.Ny+iy] = bng.Bins[iy*bng.Nx+ix].SumW()
			}
		}
		dims := []uint{uint(bng.Nx), uint(bng.Ny)}
		if err := createFixedArray(w.DensityGroup, "inclusive_"+ring.String(), hdf5.T_NATIVE_DOUBLE, dims, values); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeRunInfo() error {
	info := RunInfoHDF5{
		RunNumber: w.RunNumber,
		PassID:    convertToHdf5String(w.PassID.String()),
		NEvents:   int32(w.EvtCounter),
	}
	return writeEntryToTable(w.RunInfoTable, info, 0)
}

func (w *Writer) Close() error {
	var errs []error

	if w.RunInfoTable != nil {
		if err := w.writeRunInfo(); err != nil {
			errs = append(errs, fmt.Errorf("error writing run info: %w", err))
		}
	}
	for i, dset := range w.EventDensity {
		if dset == nil {
			continue
		}
		if err := dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing density of %v: %w", density.Rings[i], err))
		}
	}
	datasets := []struct {
		name string
		dset *hdf5.Dataset
	}{
		{"event table", w.EventTable},
		{"run info table", w.RunInfoTable},
		{"configuration table", w.ParamsTable},
	}
	for _, d := range datasets {
		if d.dset == nil {
			continue
		}
		if err := d.dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", d.name, err))
		}
	}
	groups := []struct {
		name  string
		group *hdf5.Group
	}{
		{"run", w.RunGroup},
		{"density", w.DensityGroup},
		{"calibration", w.CalibGroup},
	}
	for _, g := range groups {
		if g.group == nil {
			continue
		}
		if err := g.group.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s group: %w", g.name, err))
		}
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}
	return errors.Join(errs...)
}
