// Package common provides shared types and utilities for the observe servers.
package common

import "time"

// WebSocket timing constants.
const (
	// WriteWait is time allowed to write a message to the peer.
	WriteWait = 15 * time.Second

	// PongWait is time allowed to read the next pong message from the peer.
	PongWait = 90 * time.Second

	// PingPeriod is the interval for sending pings. Must be less than PongWait.
	PingPeriod = (PongWait * 9) / 10

	// MaxMessageSize is the maximum message size allowed from peer.
	MaxMessageSize = 64 * 1024

	// SendBufferSize is the send buffer size per client. Will-change
	// notifications coalesce downstream, so a small buffer is enough.
	SendBufferSize = 256

	// HeartbeatInterval is the application-level heartbeat interval.
	HeartbeatInterval = 30 * time.Second
)
