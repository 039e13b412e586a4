//go:build deadlock

// Package sync provides the lock types used across observe.
// This file is compiled with -tags deadlock and backs Mutex and RWMutex
// with go-deadlock.
package sync

import (
	"os"
	"sync"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Mutex is a go-deadlock mutex that reports lock-order inversions and
// acquisitions that wait longer than the configured timeout.
type Mutex = deadlock.Mutex

// RWMutex is the go-deadlock reader/writer mutex.
type RWMutex = deadlock.RWMutex

// Locker is the standard sync.Locker interface.
type Locker = sync.Locker

// Once is the standard sync.Once.
type Once = sync.Once

// WaitGroup is the standard sync.WaitGroup.
type WaitGroup = sync.WaitGroup

// DeadlockDetection reports whether go-deadlock backs Mutex and RWMutex.
const DeadlockDetection = true

func init() {
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
	deadlock.Opts.PrintAllCurrentGoroutines = true

	if os.Getenv("OBSERVE_NO_DEADLOCK_DETECT") != "" {
		deadlock.Opts.Disable = true
	}
}
