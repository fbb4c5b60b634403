package openai

// EventType tags a StreamEvent
type EventType int

const (
	// EventChunk carries the next text fragment
	EventChunk EventType = iota
	// EventDone ends the stream and carries the full text
	EventDone
	// EventError ends the stream and carries the failure
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventChunk:
		return "chunk"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	}
	return "unknown"
}

// StreamEvent is one message of a completion stream. Any number of chunks
// is followed by exactly one Done or Error.
type StreamEvent struct {
	Type EventType
	Text string
}

// Terminal reports whether no further events follow this one
func (e StreamEvent) Terminal() bool {
	return e.Type != EventChunk
}

func Chunk(text string) StreamEvent    { return StreamEvent{Type: EventChunk, Text: text} }
func Done(full string) StreamEvent     { return StreamEvent{Type: EventDone, Text: full} }
func Error(message string) StreamEvent { return StreamEvent{Type: EventError, Text: message} }
