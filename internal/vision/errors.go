package vision

import "errors"

// Camera failure kinds. All three leave the estimator Idle and are reported
// once to the caller; none is retried automatically. Per-tick frame read
// failures are not errors of this kind; they are transient and swallowed.
var (
	ErrCameraUnavailable = errors.New("camera unavailable (permission denied)")
	ErrCameraNotFound    = errors.New("camera device not found")
	ErrCameraTimeout     = errors.New("camera stream never became ready")
)
