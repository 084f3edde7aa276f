package converse

// RecorderState is the lifecycle state of a Recorder.
type RecorderState int

const (
	StateIdle       RecorderState = iota // No capture in progress.
	StateRecording                       // Capturing fragments.
	StateFinalizing                      // Waiting for the device to finish.
)

func (s RecorderState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}
