package converse

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a configuration value failed validation.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState indicates a recorder operation was called in a state
	// that does not allow it.
	ErrInvalidState = errors.New("invalid recorder state")

	// ErrPermissionDenied indicates the user or the platform refused access
	// to the microphone.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable indicates no usable capture device exists.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrBackend indicates the backend rejected or failed the request.
	ErrBackend = errors.New("backend error")

	// ErrMalformedResponse indicates the backend answered with a body that
	// could not be decoded.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrPlayerUnavailable indicates the playback command cannot be run.
	ErrPlayerUnavailable = errors.New("audio player unavailable")

	// ErrNoPlayback indicates a replay was requested before any response
	// audio arrived.
	ErrNoPlayback = errors.New("no playback reference")
)

// StateError reports a recorder transition that the current state forbids.
type StateError struct {
	Op    string
	State RecorderState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: recorder is %s", e.Op, e.State)
}

// Is reports whether target is ErrInvalidState.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// BackendError is returned when the backend answers with a non-success
// status or reports a pipeline failure in its body.
type BackendError struct {
	StatusCode int    // 0 when the transport has no status (websocket)
	Message    string // server-provided detail, may be empty
}

func (e *BackendError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	case e.Message != "":
		return "backend error: " + e.Message
	default:
		return "backend error"
	}
}

// Is reports whether target is ErrBackend.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
