package density

import "fmt"

// ErrRingNotFound is returned when the histogram container of a ring cannot
// be located. It aborts the processing of the current event.
type ErrRingNotFound struct {
	Ring RingID
}

func (e *ErrRingNotFound) Error() string {
	return fmt.Sprintf("no ring histograms found for %v", e.Ring)
}

// ErrEtaBinOutOfRange reports a lookup outside the cached eta binning.
type ErrEtaBinOutOfRange struct {
	Ring  RingID
	Bin   int
	NBins int
}

func (e *ErrEtaBinOutOfRange) Error() string {
	return fmt.Sprintf("eta bin %3d of %v out of bounds [0,%d]", e.Bin, e.Ring, e.NBins-1)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrBadEvent represents a malformed event record.
type ErrBadEvent struct {
	EventID uint32
	Reason  string
}

func (e *ErrBadEvent) Error() string {
	return fmt.Sprintf("bad event %d: %s", e.EventID, e.Reason)
}
