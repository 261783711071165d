package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ExtractionError means no JSON object could be recovered from a response.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extracting JSON: %s: %v", e.Reason, e.Err)
	}
	return "extracting JSON: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SchemaError means the extracted object does not satisfy the answer schema.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "answer does not match schema: " + strings.Join(e.Violations, "; ")
}

// IsAnswerError reports whether err is an extraction or schema failure,
// the two failures that may be repaired by asking the model again.
func IsAnswerError(err error) bool {
	var extractErr *ExtractionError
	var schemaErr *SchemaError
	return errors.As(err, &extractErr) || errors.As(err, &schemaErr)
}
