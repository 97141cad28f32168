package recognizer

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error kinds. Match them with errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrService        = errors.New("recognition service error")
	ErrQuota          = errors.New("quota exceeded")
	ErrRateLimit      = errors.New("rate limited")
)

// Error is returned by every recognizer operation.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// kindForStatus maps an RPC status to an error kind. ResourceExhausted is
// reported for both quota and per-minute limits; only the message tells them
// apart.
func kindForStatus(c codes.Code, msg string) error {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrAuthentication
	case codes.ResourceExhausted:
		if strings.Contains(strings.ToLower(msg), "quota") {
			return ErrQuota
		}
		return ErrRateLimit
	default:
		return ErrService
	}
}

func fromGRPC(op string, err error) error {
	if err == nil {
		return nil
	}
	st := status.Convert(err)
	return &Error{Kind: kindForStatus(st.Code(), st.Message()), Op: op, Err: err}
}
