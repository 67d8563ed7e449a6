package midi

// MaxHeldNotes bounds the note stack; one slot per MIDI key.
const MaxHeldNotes = 128

// NoteStack tracks held notes for last-note-off handling. Push appends;
// Remove takes out the most recently pushed note with a matching key, which
// need not be the top of the stack.
type NoteStack struct {
	notes [MaxHeldNotes]Event
	n     int
}

// Push records a held note. When the stack is full the oldest note is
// discarded.
func (s *NoteStack) Push(ev Event) {
	if s.n == MaxHeldNotes {
		copy(s.notes[:], s.notes[1:])
		s.n--
	}
	s.notes[s.n] = ev
	s.n++
}

// Remove deletes the most recent note with the given key and reports
// whether one was found.
func (s *NoteStack) Remove(note uint8) bool {
	for i := s.n - 1; i >= 0; i-- {
		if s.notes[i].Note == note {
			copy(s.notes[i:s.n-1], s.notes[i+1:s.n])
			s.n--
			return true
		}
	}
	return false
}

// Top returns the most recently held note.
func (s *NoteStack) Top() (Event, bool) {
	if s.n == 0 {
		return Event{}, false
	}
	return s.notes[s.n-1], true
}

func (s *NoteStack) Len() int    { return s.n }
func (s *NoteStack) Empty() bool { return s.n == 0 }
func (s *NoteStack) Clear()      { s.n = 0 }
