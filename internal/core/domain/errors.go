package domain

import "errors"

var (
	// ErrMalformedRecord means a saved cache record is not valid memento output.
	ErrMalformedRecord = errors.New("malformed cache record")
	// ErrCoinNotFound means the cache holds no coin with the requested serial.
	ErrCoinNotFound = errors.New("coin not found")
	// ErrCacheNotActive means no live cache exists at the requested cell.
	ErrCacheNotActive = errors.New("cache not active")
	// ErrInvalidCoordinate means a position is non-finite or out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrUnknownDirection  = errors.New("unknown direction")
	ErrInvalidCellKey    = errors.New("invalid cell key")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidSessionID  = errors.New("invalid session id")
)
