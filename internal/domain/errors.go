package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty marker label, malformed time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidDrop is returned when a drop gesture resolves to no recognised
// target or to an operation the dragged item does not support. Nothing is
// mutated and nothing is written.
var ErrInvalidDrop = errors.New("invalid drop")

// ErrCrossDayTransport is returned when a transport leg is dropped onto
// another day. A leg is bound to its departure and never changes day.
var ErrCrossDayTransport = errors.New("transport legs cannot move to another day")

// ErrLastFreeGroup is returned when deleting a group would leave its section
// without any unlocked group to hold unscheduled placement.
var ErrLastFreeGroup = errors.New("cannot delete the last free group in a section")

// ErrDuplicateItem is returned when an operation would place the same POI or
// the same transport segment on a day twice.
var ErrDuplicateItem = errors.New("item already on this day")

// ErrDragInProgress is returned when a drag is started while another one is
// still active. Only one drag session exists at a time.
var ErrDragInProgress = errors.New("a drag is already in progress")

// ErrNoDrag is returned when a drop or cancel arrives with no active drag.
var ErrNoDrag = errors.New("no drag in progress")

// ErrPersistence wraps a rejected write to the day-record store. The caller's
// optimistic state is not rolled back.
// Handlers should map this to HTTP 502.
var ErrPersistence = errors.New("persistence failed")
