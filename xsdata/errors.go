package xsdata

import "errors"

// ErrNumericFailure covers the numeric failure modes a material or a power
// iteration can hit: negative cross-section data at construction time, or a
// zero total fission source during normalization. Wrapped with %w so
// callers can errors.Is against it instead of string-matching messages.
var ErrNumericFailure = errors.New("numeric failure")
