package writer

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

type EventDataHDF5 struct {
	EvtNumber  int32   `hdf5:"evt_number"`
	RunNumber  int32   `hdf5:"run_number"`
	VertexZ    float64 `hdf5:"vertex_z"`
	LowFlux    int32   `hdf5:"low_flux"`
	NParticles float64 `hdf5:"n_particles"`
}

type RunInfoHDF5 struct {
	RunNumber int32        `hdf5:"run_number"`
	PassID    [STRLEN]byte `hdf5:"pass_id"`
	NEvents   int32        `hdf5:"n_events"`
}

type ParamHDF5 struct {
	ParamStr [STRLEN]byte `hdf5:"param"`
	Value    float64      `hdf5:"value"`
}

const STRLEN = 40

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

// ErrCreateGroup represents an error when creating a group in the output
// file.
type ErrCreateGroup struct {
	Group string
	Err   error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.Group, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a dataset in the output
// file.
type ErrCreateTable struct {
	Table string
	Err   error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.Table, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{Group: groupName, Err: err}
	}
	return g, nil
}

func compressedPropList(chunks []uint, compressionLevel int) (*hdf5.PropList, error) {
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	if err := plist.SetChunk(chunks); err != nil {
		return nil, err
	}
	if compressionLevel > 0 {
		if err := plist.SetDeflate(compressionLevel); err != nil {
			return nil, err
		}
	}
	return plist, nil
}

// create2dArray creates a float64 dataset with one row of nColumns values
// per event.
func create2dArray(group *hdf5.Group, name string, nColumns int, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0, uint(nColumns)}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims), uint(nColumns)}
	chunks := []uint{1, uint(min(nColumns, 32768))}

	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	defer fileSpace.Close()
	plist, err := compressedPropList(chunks, compressionLevel)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	defer plist.Close()

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	return dset, nil
}

// createFixedArray creates a dataset of the given shape and writes data
// into it at once.
func createFixedArray[T any](group *hdf5.Group, name string, dtype *hdf5.Datatype, dims []uint, data []T) error {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return &ErrCreateTable{Table: name, Err: err}
	}
	defer space.Close()
	dset, err := group.CreateDataset(name, dtype, space)
	if err != nil {
		return &ErrCreateTable{Table: name, Err: err}
	}
	defer dset.Close()
	if err := dset.Write(&data); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := compressedPropList([]uint{32768}, compressionLevel)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	defer plist.Close()

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	defer dtype.Close()

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{Table: name, Err: err}
	}
	return dset, nil
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, rows int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, rows)
}

// writeArrayToTable appends data to a table that already holds rows
// entries.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rows int) error {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	newsize := []uint{uint(rows) + length}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(rows)}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func write2dArray(dataset *hdf5.Dataset, data *[]float64, rows int, nColumns int) error {
	// extend
	newsize := []uint{uint(rows) + 1, uint(nColumns)}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(rows), 0}
	count := []uint{1, uint(nColumns)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()
	return dataset.WriteSubset(data, dataspace, filespace)
}
