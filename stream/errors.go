package stream

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord matches every *RecordError via errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// RecordErrorKind classifies record parse failures.
type RecordErrorKind int

const (
	// RecordErrorSyntax indicates the fragment is not decodable markup.
	RecordErrorSyntax RecordErrorKind = iota
	// RecordErrorStructure indicates unknown, nested or unterminated elements.
	RecordErrorStructure
	// RecordErrorField indicates a missing or non-numeric field value.
	RecordErrorField
)

func (k RecordErrorKind) String() string {
	switch k {
	case RecordErrorSyntax:
		return "syntax"
	case RecordErrorStructure:
		return "structure"
	case RecordErrorField:
		return "field"
	default:
		return "unknown"
	}
}

// RecordError reports a module whose records could not be parsed.
// It aborts that module only.
type RecordError struct {
	Kind   RecordErrorKind
	Module string
	Offset int64
	Msg    string
	Err    error
}

func (e *RecordError) Error() string {
	base := fmt.Sprintf("malformed record in %q at offset %d: %s", e.Module, e.Offset, e.Msg)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", base, e.Err)
	}
	return base
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrMalformedRecord.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// IsRecordError returns true if err is or wraps a *RecordError.
func IsRecordError(err error) bool {
	var recErr *RecordError
	return errors.As(err, &recErr)
}
