// Package scheduler implements the master cycle-accurate event queue: a
// monotonically advancing cycle counter paired with a min-heap of
// future events (HBlank, HBlank-end, timer overflow, DMA completion,
// interrupt delay). It is built on the standard library's
// container/heap rather than a third-party priority queue, the same
// way hand-rolled tick logic is preferred over importing a scheduling
// library for something this small.
package scheduler

import "container/heap"

// Kind tags the payload carried by an Event, avoiding a heap-allocated
// closure per event. Subsystems register themselves as Handler and are
// dispatched by Kind plus a small integer Channel selector.
type Kind uint8

const (
	KindHBlank Kind = iota
	KindHBlankEnd
	KindTimerOverflow
	KindDMAComplete
	KindIRQDelay
)

// Handler is invoked when an event fires. late is now-deadline, i.e. how
// far overdue the event was when it was finally popped.
type Handler func(channel int, late uint64)

// event is one scheduled occurrence. canceled entries are dropped lazily
// on pop rather than removed from the heap immediately, a
// cancel-by-tagging model that avoids a heap-internal search on cancel.
type event struct {
	deadline uint64
	kind     Kind
	channel  int
	canceled bool
	seq      uint64 // tie-breaker for stable FIFO ordering at equal deadlines
	index    int
}

// eventHeap implements container/heap.Interface ordered by deadline,
// breaking ties by insertion order so same-cycle events fire in the
// order they were scheduled.
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x any) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Handle lets the caller cancel a previously scheduled event.
type Handle struct {
	ev *event
}

// Scheduler owns the global monotonic cycle counter and the event heap.
// CPU and all subsystems are driven exclusively through Run.
type Scheduler struct {
	now      uint64
	heap     eventHeap
	handlers [5]Handler
	nextSeq  uint64
}

// New returns an empty scheduler with now == 0.
func New() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.heap)
	return s
}

// Now returns the current monotonic cycle count.
func (s *Scheduler) Now() uint64 { return s.now }

// Advance bumps the monotonic counter directly, for use by event
// handlers (e.g. a DMA transfer triggered from an HBlank event) that
// consume cycles outside of the normal CPU-driven Run loop.
func (s *Scheduler) Advance(cycles uint64) { s.now += cycles }

// SetHandler registers the callback invoked for events of the given kind.
func (s *Scheduler) SetHandler(kind Kind, h Handler) {
	s.handlers[kind] = h
}

// Schedule inserts a new event at now+delta and returns a handle that
// can be used to cancel it before it fires.
func (s *Scheduler) Schedule(kind Kind, channel int, delta uint64) Handle {
	e := &event{
		deadline: s.now + delta,
		kind:     kind,
		channel:  channel,
		seq:      s.nextSeq,
	}
	s.nextSeq++
	heap.Push(&s.heap, e)
	return Handle{ev: e}
}

// Cancel marks an event as canceled; it is dropped the next time it
// would otherwise be popped, without disturbing heap ordering.
func (s *Scheduler) Cancel(h Handle) {
	if h.ev != nil {
		h.ev.canceled = true
	}
}

// NextDeadline returns the deadline of the earliest live event and
// whether one exists at all (an empty heap means "run freely").
func (s *Scheduler) NextDeadline() (uint64, bool) {
	for len(s.heap) > 0 {
		top := s.heap[0]
		if top.canceled {
			heap.Pop(&s.heap)
			continue
		}
		return top.deadline, true
	}
	return 0, false
}

// CPURunner executes about maxCycles cycles of CPU (or DMA-stalled bus)
// activity and returns how many cycles were actually consumed. The
// count may exceed maxCycles when the runner's last indivisible step
// (one instruction) crosses the limit; Run adds the full count.
type CPURunner func(maxCycles uint64) uint64

// Run advances the scheduler by budget cycles: it alternates between
// running the CPU up to the next event deadline and dispatching events
// once their deadline is reached. The runner is asked for no more than
// the cycles left before the next event, but a runner that overshoots
// moves the clock past that deadline, and the overdue event then fires
// with late set to the overshoot; the clock can likewise end a few
// cycles past the budget. An event whose deadline equals the end of the
// budget is dispatched by the next call to Run.
func (s *Scheduler) Run(budget uint64, runCPU CPURunner) {
	target := s.now + budget
	for s.now < target {
		deadline, ok := s.NextDeadline()
		if ok && deadline <= s.now {
			s.fireNext()
			continue
		}

		remaining := target - s.now
		if ok {
			untilEvent := deadline - s.now
			if untilEvent < remaining {
				remaining = untilEvent
			}
		}
		if remaining == 0 {
			// The only way to reach here is deadline == s.now, handled above.
			continue
		}

		consumed := runCPU(remaining)
		if consumed == 0 {
			// CPU is halted with nothing scheduled before target: fast
			// forward directly to the next event rather than spin.
			if ok {
				s.now = deadline
				continue
			}
			s.now = target
			break
		}
		s.now += consumed
	}
}

// fireNext pops and dispatches the single earliest live event.
func (s *Scheduler) fireNext() {
	for len(s.heap) > 0 {
		e := heap.Pop(&s.heap).(*event)
		if e.canceled {
			continue
		}
		late := s.now - e.deadline
		if h := s.handlers[e.kind]; h != nil {
			h(e.channel, late)
		}
		return
	}
}
