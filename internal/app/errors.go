package app

import (
	"errors"

	"github.com/dshills/winnow/internal/picker"
)

// Sentinel errors surfaced to the command layer.
var (
	// ErrAborted is returned when the user dismisses the picker without
	// selecting anything.
	ErrAborted = picker.ErrAborted

	// ErrNoItems is returned when the source yields nothing to search.
	ErrNoItems = errors.New("app: no items to search")

	// ErrBadKeySpec is returned for a malformed -key flag value.
	ErrBadKeySpec = errors.New("app: key spec must be path or path=weight")

	// ErrMissingFunction is returned when a lua: key names a function the
	// configured script does not define.
	ErrMissingFunction = errors.New("app: script function not defined")
)
