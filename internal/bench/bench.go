// Package bench drives a publisher with concurrent subscribers, senders and
// cancellations, and reports what was delivered.
package bench

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brianly1003/observe/internal/publisher"
	"github.com/brianly1003/observe/internal/sync"
)

// Options configures a run.
type Options struct {
	Subscribers int
	Senders     int
	Sends       int // per sender
	// CancelEvery cancels every n-th subscriber halfway through. Zero
	// disables cancellation.
	CancelEvery int
}

// Result summarizes a run.
type Result struct {
	Options
	Delivered int64
	Cancelled int
	Remaining int
	Elapsed   time.Duration
}

// Throughput returns deliveries per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Delivered) / r.Elapsed.Seconds()
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Subscribers < 1 {
		return fmt.Errorf("subscribers must be at least 1")
	}
	if o.Senders < 1 {
		return fmt.Errorf("senders must be at least 1")
	}
	if o.Sends < 1 {
		return fmt.Errorf("sends must be at least 1")
	}
	if o.CancelEvery < 0 {
		return fmt.Errorf("cancel-every cannot be negative")
	}
	return nil
}

// Run executes the benchmark. It stops early, returning ctx.Err(), if ctx
// is cancelled.
func Run(ctx context.Context, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	pub := publisher.New()
	var delivered atomic.Int64

	tokens := make([]*publisher.Cancellable, opts.Subscribers)
	for i := range tokens {
		tokens[i] = publisher.Sink(pub, func() {
			delivered.Add(1)
		})
	}

	start := time.Now()
	half := opts.Sends / 2

	var wg sync.WaitGroup
	halfway := make(chan struct{})
	var reached atomic.Int32

	for s := 0; s < opts.Senders; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < opts.Sends; i++ {
				if ctx.Err() != nil {
					return
				}
				if i == half && reached.Add(1) == int32(opts.Senders) {
					close(halfway)
				}
				pub.Send()
			}
		}()
	}

	cancelled := 0
	if opts.CancelEvery > 0 {
		select {
		case <-halfway:
		case <-ctx.Done():
		}
		for i, tok := range tokens {
			if i%opts.CancelEvery == 0 {
				tok.Cancel()
				cancelled++
			}
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	res := Result{
		Options:   opts,
		Delivered: delivered.Load(),
		Cancelled: cancelled,
		Remaining: pub.SubscriberCount(),
		Elapsed:   elapsed,
	}

	for _, tok := range tokens {
		tok.Cancel()
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
