package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventsFireInDeadlineOrder(t *testing.T) {
	s := New()
	var fired []int

	s.SetHandler(KindHBlank, func(channel int, late uint64) { fired = append(fired, channel) })
	s.Schedule(KindHBlank, 2, 100)
	s.Schedule(KindHBlank, 1, 50)
	s.Schedule(KindHBlank, 3, 150)

	s.Run(200, func(maxCycles uint64) uint64 { return maxCycles })

	require.Equal(t, []int{1, 2, 3}, fired)
}

func TestCancelDropsEvent(t *testing.T) {
	s := New()
	count := 0
	s.SetHandler(KindDMAComplete, func(channel int, late uint64) { count++ })

	h := s.Schedule(KindDMAComplete, 0, 10)
	s.Cancel(h)

	s.Run(20, func(maxCycles uint64) uint64 { return maxCycles })

	require.Equal(t, 0, count)
}

func TestCPUNeverBilledPastNextEvent(t *testing.T) {
	s := New()
	s.SetHandler(KindHBlank, func(channel int, late uint64) {})
	s.Schedule(KindHBlank, 0, 30)

	var maxSeen uint64
	s.Run(30, func(maxCycles uint64) uint64 {
		if maxCycles > maxSeen {
			maxSeen = maxCycles
		}
		return maxCycles
	})

	require.LessOrEqual(t, maxSeen, uint64(30))
}

func TestNowIsMonotonic(t *testing.T) {
	s := New()
	s.Run(1000, func(maxCycles uint64) uint64 { return maxCycles })
	require.Equal(t, uint64(1000), s.Now())
}
