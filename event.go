package converse

// Event is a sealed interface representing something the user-facing
// surfaces must reflect. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventStateChanged reports a recorder state transition.
type EventStateChanged struct {
	State RecorderState
}

func (EventStateChanged) event() {}

// EventCleared signals that the transcript and response outputs were reset
// at the start of a capture.
type EventCleared struct{}

func (EventCleared) event() {}

// EventTranscript carries the backend's transcript of the capture.
type EventTranscript struct {
	Text string
}

func (EventTranscript) event() {}

// EventResponse carries the backend's response text.
type EventResponse struct {
	Text string
}

func (EventResponse) event() {}

// EventPlayback signals that playback of Ref has started. Done receives one
// value when playback ends.
type EventPlayback struct {
	Ref  string
	Done <-chan error
}

func (EventPlayback) event() {}

// EventFailure is a user-visible failure notification. At most one is
// emitted per operation.
type EventFailure struct {
	Err error
}

func (EventFailure) event() {}

// Interface compliance checks.
var (
	_ Event = EventStateChanged{}
	_ Event = EventCleared{}
	_ Event = EventTranscript{}
	_ Event = EventResponse{}
	_ Event = EventPlayback{}
	_ Event = EventFailure{}
)
