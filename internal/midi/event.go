// Package midi turns raw MIDI messages into sample-stamped events and
// queues them for the block render loop.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type Kind uint8

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindControlChange
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	case KindControlChange:
		return "ControlChange"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is a decoded channel message positioned Offset frames into the
// current block.
type Event struct {
	Kind       Kind
	Channel    uint8
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Offset     int
}

func (e Event) String() string {
	if e.Kind == KindControlChange {
		return fmt.Sprintf("%s{ch:%d, cc:%d, val:%d, offset:%d}", e.Kind, e.Channel, e.Controller, e.Value, e.Offset)
	}
	return fmt.Sprintf("%s{ch:%d, note:%d, vel:%d, offset:%d}", e.Kind, e.Channel, e.Note, e.Velocity, e.Offset)
}

// Decode extracts a note or control change from msg. A NoteOn with zero
// velocity decodes as NoteOff. Other message types report ok == false.
func Decode(msg gomidi.Message, offset int) (ev Event, ok bool) {
	var ch, a, b uint8
	switch {
	case msg.GetNoteOn(&ch, &a, &b):
		kind := KindNoteOn
		if b == 0 {
			kind = KindNoteOff
		}
		return Event{Kind: kind, Channel: ch, Note: a, Velocity: b, Offset: offset}, true
	case msg.GetNoteOff(&ch, &a, &b):
		return Event{Kind: KindNoteOff, Channel: ch, Note: a, Velocity: b, Offset: offset}, true
	case msg.GetControlChange(&ch, &a, &b):
		return Event{Kind: KindControlChange, Channel: ch, Controller: a, Value: b, Offset: offset}, true
	}
	return Event{}, false
}

// Message encodes e back into wire bytes.
func (e Event) Message() gomidi.Message {
	switch e.Kind {
	case KindNoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case KindNoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	default:
		return gomidi.ControlChange(e.Channel, e.Controller, e.Value)
	}
}
