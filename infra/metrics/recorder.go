package metrics

// Recorder receives counters from the MQTT module, the serial client and the
// PCC driver. Implementations must be safe for concurrent use.
type Recorder interface {
	MessagePublished(topic string)
	MessageReceived(topic string)
	HandlerFailed(topic string)
	SerialBytes(direction string, n int)
	Command(name string)
}

// Serial directions.
const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) MessagePublished(string) {}
func (NopRecorder) MessageReceived(string)  {}
func (NopRecorder) HandlerFailed(string)    {}
func (NopRecorder) SerialBytes(string, int) {}
func (NopRecorder) Command(string)          {}
