package msg

import (
	"errors"
	"fmt"

	"github.com/oxmsg/msgkit/cfb"
	"github.com/oxmsg/msgkit/mapi"
)

// ErrInvalidInput covers a missing required field, a malformed conversation
// index, or a recipient kind out of range.
var ErrInvalidInput = errors.New("msg: invalid input")

// ErrUnsupportedType is returned when a caller-supplied property uses a MAPI
// type the codec does not implement. It is the same value as
// mapi.ErrUnsupportedType, so callers can match on either name.
var ErrUnsupportedType = mapi.ErrUnsupportedType

// ErrEncoding is returned when strict STRING8 encoding fails. It is the same
// value as mapi.ErrEncoding, so callers can match on either name.
var ErrEncoding = mapi.ErrEncoding

// ErrCapacityExceeded is returned when the composed file would exceed the
// CFB container's addressable space. It is the same value as
// cfb.ErrCapacityExceeded, so callers can match on either name.
var ErrCapacityExceeded = cfb.ErrCapacityExceeded

// ErrSink is returned when the underlying byte sink rejects a write.
// Serialization performs no retries; the first sink failure aborts.
var ErrSink = errors.New("msg: sink write failed")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
