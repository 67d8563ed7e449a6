package midi

// Queue holds the events for one block in ascending offset order. Storage is
// allocated by Resize; Add and Remove never allocate. Events sharing an
// offset keep their arrival order.
type Queue struct {
	events []Event
	head   int
}

// NewQueue returns a queue holding up to capacity events.
func NewQueue(capacity int) *Queue {
	q := &Queue{}
	q.Resize(capacity)
	return q
}

// Resize discards pending events and sets the capacity, normally to the
// block size.
func (q *Queue) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	q.events = make([]Event, 0, capacity)
	q.head = 0
}

func (q *Queue) Cap() int    { return cap(q.events) }
func (q *Queue) Len() int    { return len(q.events) - q.head }
func (q *Queue) Empty() bool { return q.Len() == 0 }

// Add inserts ev by offset. It reports false when the queue is full and the
// event was dropped.
func (q *Queue) Add(ev Event) bool {
	if len(q.events) == cap(q.events) {
		if q.head == 0 {
			return false
		}
		n := copy(q.events, q.events[q.head:])
		q.events = q.events[:n]
		q.head = 0
	}
	i := len(q.events)
	q.events = q.events[:i+1]
	for i > q.head && q.events[i-1].Offset > ev.Offset {
		q.events[i] = q.events[i-1]
		i--
	}
	q.events[i] = ev
	return true
}

// Peek returns the earliest pending event.
func (q *Queue) Peek() (Event, bool) {
	if q.Empty() {
		return Event{}, false
	}
	return q.events[q.head], true
}

// Remove drops the earliest pending event.
func (q *Queue) Remove() {
	if q.Empty() {
		return
	}
	q.head++
	if q.head == len(q.events) {
		q.events = q.events[:0]
		q.head = 0
	}
}

// Flush shifts the remaining events back by nFrames after a block has been
// rendered. Events that were due within the block are discarded.
func (q *Queue) Flush(nFrames int) {
	for !q.Empty() && q.events[q.head].Offset < nFrames {
		q.Remove()
	}
	for i := q.head; i < len(q.events); i++ {
		q.events[i].Offset -= nFrames
	}
}

func (q *Queue) Clear() {
	q.events = q.events[:0]
	q.head = 0
}
