package visualizer

import "errors"

var (
	// ErrStructuralDecode marks malformed top level transaction bytes. It is fatal for the
	// whole request: no partial payload is produced.
	ErrStructuralDecode = errors.New("structural decode error")

	// ErrMissingData marks an argument or context value a visualizer expected but did not
	// find. The instruction degrades to opaque display and the request succeeds.
	ErrMissingData = errors.New("missing data")

	// ErrDuplicateKey is reported by Dispatcher.Validate when two visualizers claim a key.
	ErrDuplicateKey = errors.New("duplicate visualizer key")

	// ErrMaxCallDepth is returned when a nested call exceeds the configured depth.
	ErrMaxCallDepth = errors.New("maximum call depth exceeded")
)
