package errs

import "errors"

var (
	ErrInvalidAction = errors.New("invalid drawing action")
	ErrNoCanvas      = errors.New("no canvas to capture")
	ErrBoardNotFound = errors.New("board not found")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrNothingToSave = errors.New("nothing to export")
	ErrTooManyBoards = errors.New("board limit reached")
)
