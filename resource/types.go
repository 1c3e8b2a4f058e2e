package resource

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Kind identifies what a handle refers to.
type Kind uint8

const (
	KindPollable Kind = iota
	KindInputStream
	KindOutputStream
	KindError
	KindDescriptor
	KindDirectoryEntryStream
)

func (k Kind) String() string {
	switch k {
	case KindPollable:
		return "pollable"
	case KindInputStream:
		return "input-stream"
	case KindOutputStream:
		return "output-stream"
	case KindError:
		return "error"
	case KindDescriptor:
		return "descriptor"
	case KindDirectoryEntryStream:
		return "directory-entry-stream"
	default:
		return "unknown"
	}
}

// EventType is the kind of lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}
