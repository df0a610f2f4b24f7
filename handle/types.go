package handle

// Handle is an opaque reference to an object in a table.
// Handle 0 is reserved and always invalid.
type Handle uint64

const (
	indexBits = 32
	genBits   = 21
	genMask   = 1<<genBits - 1
	indexMask = 1<<indexBits - 1
)

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen&genMask)<<indexBits | uint64(slot+1))
}

func (h Handle) slot() (uint32, bool) {
	idx := uint64(h) & indexMask
	if idx == 0 {
		return 0, false
	}
	return uint32(idx - 1), true
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h)>>indexBits) & genMask
}

// EventType identifies a handle lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventReleased
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventReleased:
		return "released"
	}
	return "unknown"
}

// Event describes a handle lifecycle change.
type Event struct {
	Value    any
	TypeName string
	Handle   Handle
	Type     EventType
}

// Observer receives handle lifecycle notifications.
type Observer interface {
	OnHandleEvent(Event)
}
