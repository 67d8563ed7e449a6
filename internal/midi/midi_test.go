package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want Event
		ok   bool
	}{
		{"note on", gomidi.NoteOn(2, 60, 100), Event{Kind: KindNoteOn, Channel: 2, Note: 60, Velocity: 100, Offset: 7}, true},
		{"note off", gomidi.NoteOff(0, 64), Event{Kind: KindNoteOff, Note: 64, Offset: 7}, true},
		{"zero velocity on", gomidi.Message{0x90, 61, 0}, Event{Kind: KindNoteOff, Note: 61, Offset: 7}, true},
		{"control change", gomidi.ControlChange(1, 74, 127), Event{Kind: KindControlChange, Channel: 1, Controller: 74, Value: 127, Offset: 7}, true},
		{"pitch bend ignored", gomidi.Pitchbend(0, 100), Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.msg, 7)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventMessageDecodesBack(t *testing.T) {
	ev := Event{Kind: KindControlChange, Channel: 3, Controller: 7, Value: 64}
	got, ok := Decode(ev.Message(), 0)
	if !ok || got != ev {
		t.Fatalf("got %v, want %v", got, ev)
	}
}

func TestQueueOrdersByOffsetStable(t *testing.T) {
	q := NewQueue(8)
	q.Add(Event{Note: 1, Offset: 10})
	q.Add(Event{Note: 2, Offset: 0})
	q.Add(Event{Note: 3, Offset: 10})
	q.Add(Event{Note: 4, Offset: 5})

	var notes []uint8
	for !q.Empty() {
		ev, _ := q.Peek()
		notes = append(notes, ev.Note)
		q.Remove()
	}
	want := []uint8{2, 4, 1, 3}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("drain order = %v, want %v", notes, want)
		}
	}
}

func TestQueueCapacityBoundedByResize(t *testing.T) {
	q := NewQueue(2)
	if !q.Add(Event{}) || !q.Add(Event{}) {
		t.Fatal("adds within capacity should succeed")
	}
	if q.Add(Event{}) {
		t.Fatal("add beyond capacity should be dropped")
	}
	q.Remove()
	if !q.Add(Event{Offset: 1}) {
		t.Fatal("removed slot should be reusable")
	}
	q.Resize(16)
	if !q.Empty() || q.Cap() != 16 {
		t.Fatalf("resize should clear and grow: len=%d cap=%d", q.Len(), q.Cap())
	}
}

func TestQueueFlushCarriesLateEvents(t *testing.T) {
	q := NewQueue(4)
	q.Add(Event{Note: 1, Offset: 100})
	q.Add(Event{Note: 2, Offset: 600})
	q.Flush(512)
	ev, ok := q.Peek()
	if !ok || ev.Note != 2 || ev.Offset != 88 {
		t.Fatalf("after flush got %v (ok=%v), want note 2 at 88", ev, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d, want 1", q.Len())
	}
}

func TestNoteStackRemovesMostRecentMatch(t *testing.T) {
	var s NoteStack
	s.Push(Event{Note: 60, Velocity: 1})
	s.Push(Event{Note: 64})
	s.Push(Event{Note: 60, Velocity: 2})

	if !s.Remove(60) {
		t.Fatal("expected to remove 60")
	}
	top, _ := s.Top()
	if top.Note != 64 {
		t.Fatalf("top = %d, want 64", top.Note)
	}
	s.Remove(64)
	top, _ = s.Top()
	if top.Note != 60 || top.Velocity != 1 {
		t.Fatalf("remaining note = %v, want first 60", top)
	}
	if s.Remove(72) {
		t.Fatal("removing an unheld note should report false")
	}
	s.Remove(60)
	if !s.Empty() {
		t.Fatal("stack should be empty")
	}
}

func TestNoteStackDropsOldestWhenFull(t *testing.T) {
	var s NoteStack
	for i := 0; i <= MaxHeldNotes; i++ {
		s.Push(Event{Note: uint8(i % 128), Velocity: uint8(i % 100)})
	}
	if s.Len() != MaxHeldNotes {
		t.Fatalf("len = %d, want %d", s.Len(), MaxHeldNotes)
	}
}
