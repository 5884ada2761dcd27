package leetcode

import (
	"errors"
	"fmt"
)

// Sentinel errors for profile lookups.
var (
	ErrNotFound    = errors.New("leetcode: user not found")
	ErrRateLimited = errors.New("leetcode: rate limited by server")
	ErrServer      = errors.New("leetcode: server error")
	ErrMalformed   = errors.New("leetcode: malformed response")
)

// Error wraps an underlying error with the operation and username.
type Error struct {
	Op       string
	Username string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("leetcode %s [%s]: %v", e.Op, e.Username, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, username string, err error) error {
	return &Error{Op: op, Username: username, Err: err}
}
