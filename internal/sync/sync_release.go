//go:build !deadlock

// Package sync provides the lock types used across observe.
// Release builds alias the standard library; building with -tags deadlock
// swaps Mutex and RWMutex for go-deadlock so lock-order bugs in the
// publisher can be caught under test.
package sync

import "sync"

// Mutex is the standard sync.Mutex in release builds.
type Mutex = sync.Mutex

// RWMutex is the standard sync.RWMutex in release builds.
type RWMutex = sync.RWMutex

// Locker is the standard sync.Locker interface.
type Locker = sync.Locker

// Once is the standard sync.Once.
type Once = sync.Once

// WaitGroup is the standard sync.WaitGroup.
type WaitGroup = sync.WaitGroup

// DeadlockDetection reports whether go-deadlock backs Mutex and RWMutex.
const DeadlockDetection = false
