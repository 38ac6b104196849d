package options

import "errors"

// Error taxonomy per §7: input/annotation/structural are distinct sentinel
// classes so callers can errors.Is against the class that matters to them
// without string matching.
var (
	// ErrInputDescriptor marks a malformed or unreadable descriptor input.
	ErrInputDescriptor = errors.New("input descriptor error")
	// ErrAnnotation marks an infeasible or malformed annotation.
	ErrAnnotation = errors.New("annotation error")
	// ErrCyclicDependency marks an unbreakable cyclic message dependency.
	ErrCyclicDependency = errors.New("cyclic dependency")
)
