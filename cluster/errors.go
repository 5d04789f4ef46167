package cluster

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrDuplicateName = errors.New("cluster: duplicate member name")
	ErrInvalidName   = errors.New("cluster: member name must not be empty")
	ErrNilMember     = errors.New("cluster: member must not be nil")
)

// MemberError records the failure of one member during StartAll or
// StopAll.
type MemberError struct {
	Name string
	Err  error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("cluster: member %q: %v", e.Name, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}

// MemberErrors returns the member failures carried by err, in member order.
func MemberErrors(err error) []*MemberError {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		var single *MemberError
		if errors.As(err, &single) {
			return []*MemberError{single}
		}

		return nil
	}

	var out []*MemberError
	for _, e := range merr.WrappedErrors() {
		var member *MemberError
		if errors.As(e, &member) {
			out = append(out, member)
		}
	}

	return out
}
