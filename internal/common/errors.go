package common

import "errors"

// protocol errors; the offending connection is closed with a
// policy-violation close code
var (
	ErrRoomNotFound     = errors.New("room doesn't exist, wrong url")
	ErrMalformedMessage = errors.New("malformed message")
)
