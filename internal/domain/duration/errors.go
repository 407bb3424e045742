package duration

import (
	"errors"
	"fmt"
)

// ErrFormat is the sentinel kind matched by every *FormatError.
var ErrFormat = errors.New("invalid duration format")

// FormatError reports a time string that does not match H:MM:SS[.F].
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q (want H:MM:SS or H:MM:SS.cc)", ErrFormat, e.Input)
}

// Is lets errors.Is(err, ErrFormat) match.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }
