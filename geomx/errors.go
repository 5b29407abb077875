package geomx

import "errors"

// Sentinel error kinds, per the error-handling design: fatal conditions are
// reported by wrapping one of these so callers can errors.Is against the
// kind instead of string-matching messages.
var (
	// ErrInvalidGeometry covers halfspace values outside {-1,+1}, duplicate
	// or reserved ids, ringify on a cell without a circle bound, and
	// mismatched circle centers.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrPointNotFound is returned when a point lies outside every cell of
	// a universe.
	ErrPointNotFound = errors.New("point not found in universe")
)

// Warning is a non-fatal condition raised during subdivision
// (DegenerateSubdivision in the error-handling design): the affected cell
// is left undivided and the warning is appended to the caller-visible log
// instead of aborting the build.
type Warning struct {
	CellUserID int
	Message    string
}

func (w Warning) String() string {
	return w.Message
}
