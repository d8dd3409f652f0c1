package core

import "context"

// Frame is a raw text payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// Send blocks until the frame is queued, ctx is done or the connection closes.
	Send(ctx context.Context, f Frame) error
	Close()
}
