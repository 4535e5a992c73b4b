package messages

import (
	"errors"
	"fmt"
)

// ErrMalformedMessage is returned for every decode failure: truncated
// buffer, unknown tag, or a length field that disagrees with the actual
// payload. Decoders never panic and never read past the input slice.
var ErrMalformedMessage = errors.New("malformed message")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedMessage, fmt.Sprintf(format, args...))
}
