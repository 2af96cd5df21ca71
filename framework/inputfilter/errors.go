package inputfilter

import "errors"

// Programmer errors. A value that merely fails validation is never reported
// through these: IsValid returns false and the messages describe why.
var (
	// ErrConfiguration is returned when a spec cannot be turned into a tree:
	// a step without a name, an unknown type, a type of the wrong kind.
	ErrConfiguration = errors.New("inputfilter: configuration error")

	// ErrInvalidArgument is returned when SetData or Add receive a value of
	// the wrong shape.
	ErrInvalidArgument = errors.New("inputfilter: invalid argument")

	// ErrNotFound is returned by accessors given an undeclared name.
	ErrNotFound = errors.New("inputfilter: not found")

	// ErrRuntimeUsage is returned by queries made before SetData.
	ErrRuntimeUsage = errors.New("inputfilter: runtime usage error")
)
