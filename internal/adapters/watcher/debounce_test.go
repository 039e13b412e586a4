package watcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianly1003/observe/internal/testutil"
)

func TestDebouncer_Coalesces(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func(string) {
		fired.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Add("state.yaml")
		time.Sleep(5 * time.Millisecond)
	}
	testutil.AssertEqual(t, 1, d.Pending(), "pending paths")

	testutil.Eventually(t, time.Second, func() bool {
		return fired.Load() == 1
	}, "single fire")

	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, int32(1), fired.Load(), "no extra fires")
}

func TestDebouncer_SeparatePaths(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func(string) {
		fired.Add(1)
	})
	defer d.Stop()

	d.Add("a")
	d.Add("b")

	testutil.Eventually(t, time.Second, func() bool {
		return fired.Load() == 2
	}, "one fire per path")
}

func TestDebouncer_Stop(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func(string) {
		fired.Add(1)
	})

	d.Add("a")
	d.Stop()
	d.Add("b")

	time.Sleep(60 * time.Millisecond)
	testutil.AssertEqual(t, int32(0), fired.Load(), "fires after Stop")
	testutil.AssertEqual(t, 0, d.Pending(), "pending after Stop")
}
