package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// TaskID identifies a scheduled callback so it can be cancelled.
type TaskID uint64

type task struct {
	id    TaskID
	due   time.Duration
	seq   uint64
	every time.Duration
	fn    func()

	index     int
	cancelled bool
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due == h[j].due {
		return h[i].seq < h[j].seq
	}
	return h[i].due < h[j].due
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler runs delayed callbacks against a frame-driven clock.
//
// Time only moves when Tick is called, so every callback runs on the goroutine
// that drives Tick. Post is the one method that may be called from other
// goroutines; posted funcs run at the start of the next Tick.
type Scheduler struct {
	now    time.Duration
	seq    uint64
	nextID TaskID
	tasks  taskHeap
	byID   map[TaskID]*task
	closed bool

	postMu sync.Mutex
	posted []func()
}

// New creates an empty scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{
		byID: make(map[TaskID]*task),
	}
}

// Now returns the scheduler time, the sum of every dt passed to Tick.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After runs fn once, d of scheduler time from now.
// Callbacks scheduled while a Tick is running never fire in that same Tick.
func (s *Scheduler) After(d time.Duration, fn func()) TaskID {
	return s.schedule(d, 0, fn)
}

// Every runs fn each interval until cancelled. A periodic task fires at most
// once per Tick; missed intervals are not replayed.
func (s *Scheduler) Every(interval time.Duration, fn func()) TaskID {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return s.schedule(interval, interval, fn)
}

func (s *Scheduler) schedule(d, every time.Duration, fn func()) TaskID {
	if s.closed || fn == nil {
		return 0
	}
	if d < 0 {
		d = 0
	}
	s.nextID++
	s.seq++
	t := &task{
		id:    s.nextID,
		due:   s.now + d,
		seq:   s.seq,
		every: every,
		fn:    fn,
	}
	heap.Push(&s.tasks, t)
	s.byID[t.id] = t
	return t.id
}

// Cancel removes a pending task. It reports whether the task was still pending.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	t.cancelled = true
	if t.index >= 0 {
		heap.Remove(&s.tasks, t.index)
	}
	return true
}

// Post queues fn to run on the scheduler goroutine during the next Tick.
// Safe for concurrent use.
func (s *Scheduler) Post(fn func()) {
	if fn == nil {
		return
	}
	s.postMu.Lock()
	defer s.postMu.Unlock()
	if s.closed {
		return
	}
	s.posted = append(s.posted, fn)
}

// Pending returns the number of timed tasks waiting to fire.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Tick advances scheduler time by dt, runs posted funcs, then every task
// that has come due, in due-time order.
func (s *Scheduler) Tick(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}
	boundary := s.seq

	s.postMu.Lock()
	posted := s.posted
	s.posted = nil
	s.postMu.Unlock()
	for _, fn := range posted {
		fn()
	}

	for len(s.tasks) > 0 {
		next := s.tasks[0]
		if next.due > s.now || next.seq > boundary {
			break
		}
		heap.Pop(&s.tasks)

		next.fn()

		if next.cancelled {
			continue
		}
		if next.every > 0 && !s.closed {
			s.seq++
			next.seq = s.seq
			next.due += next.every
			if next.due < s.now {
				next.due = s.now
			}
			heap.Push(&s.tasks, next)
			continue
		}
		delete(s.byID, next.id)
	}
}

// Close drops every pending task and posted func. Later calls to After,
// Every and Post are ignored.
func (s *Scheduler) Close() {
	s.postMu.Lock()
	s.closed = true
	s.posted = nil
	s.postMu.Unlock()

	for _, t := range s.tasks {
		t.cancelled = true
		t.index = -1
	}
	s.tasks = nil
	s.byID = make(map[TaskID]*task)
}
