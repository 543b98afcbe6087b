package synth

import "fmt"

// EventType is the kind of a note event.
type EventType uint8

const (
	// NoteOn starts a note.
	NoteOn EventType = iota + 1
	// NoteOff releases a note.
	NoteOff
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is a note-on or note-off message.
type Event struct {
	Type     EventType
	Pitch    uint8
	Velocity uint8
}

// On returns a note-on event.
func On(pitch, velocity uint8) Event {
	return Event{Type: NoteOn, Pitch: pitch, Velocity: velocity}
}

// Off returns a note-off event.
func Off(pitch uint8) Event {
	return Event{Type: NoteOff, Pitch: pitch}
}

// ParseMIDI decodes a raw MIDI channel message. Only note-on (0x9n) and
// note-off (0x8n) are recognised; a note-on with velocity 0 is a note-off.
func ParseMIDI(msg []byte) (Event, bool) {
	if len(msg) < 2 {
		return Event{}, false
	}
	switch msg[0] & 0xF0 {
	case 0x90:
		if len(msg) < 3 {
			return Event{}, false
		}
		if msg[2] == 0 {
			return Off(msg[1] & 0x7F), true
		}
		return On(msg[1]&0x7F, msg[2]&0x7F), true
	case 0x80:
		return Off(msg[1] & 0x7F), true
	default:
		return Event{}, false
	}
}
