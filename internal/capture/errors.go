package capture

import "errors"

// Error kinds surfaced by a generation run. Every failure aborts the whole
// batch; none are retried internally. Callers check with errors.Is.
var (
	// ErrInvalidInput covers degenerate bounds, a zero view count, or a
	// missing required capability.
	ErrInvalidInput = errors.New("capture: invalid input")

	// ErrRenderFailure means the renderer collaborator could not produce
	// a frame.
	ErrRenderFailure = errors.New("capture: render failure")

	// ErrPackingFailure means the snapshots could not be packed into a
	// non-empty atlas.
	ErrPackingFailure = errors.New("capture: packing failure")

	// ErrPreconditionFailure means the generated texture set cannot
	// satisfy a downstream requirement, such as cross-sections without a
	// top-down placement rect.
	ErrPreconditionFailure = errors.New("capture: precondition failure")
)
