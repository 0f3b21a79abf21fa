package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into coded domain errors:
//   - ErrNotFound: the record does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//     (duplicate version label, second active ISP, duplicate plan version)
//   - ErrInvalidState: the record is in the wrong state for the mutation
//   - ErrUnavailable: the backing service cannot be reached
//
// Validation of client input does not belong here; use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
