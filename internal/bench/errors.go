package bench

import "errors"

var (
	ErrNotConnected     = errors.New("bench: not connected")
	ErrHandshakeTimeout = errors.New("bench: timed out waiting for ready acknowledgment")
)
