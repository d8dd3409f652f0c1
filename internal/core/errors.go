package core

import "errors"

var (
	ErrNoWorkersAvailable      = errors.New("no workers available")
	ErrWorkerAcquisitionFailed = errors.New("worker acquisition failed")
	ErrRoomNotFound            = errors.New("room not found")
	ErrRoomExists              = errors.New("room already exists")
	ErrSignatureInvalid        = errors.New("signature invalid")
	ErrDecode                  = errors.New("decode error")
	ErrDeliveryTimeout         = errors.New("delivery timeout")
	ErrTransportClosed         = errors.New("transport closed")
	ErrCapabilityUnavailable   = errors.New("capability unavailable")
	ErrRateLimited             = errors.New("rate limited")
	ErrNotJoined               = errors.New("not joined")
)
