package predict

import "fmt"

// ConfigError marks a broken deployment: the model artifact or metadata is
// missing or unreadable. Fatal to the load path; the serving layer maps it
// to service-unavailable.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("model unavailable: %v", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError marks bad caller input. It is reported precisely and
// early and never reaches the feature engineer.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Msg) }

// PredictionError marks a failed scoring call (shape mismatch, unsupported
// dtype). Surfaced as a server error and never masked as a low-risk
// result; not retried.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return fmt.Sprintf("prediction failed: %v", e.Err) }
func (e *PredictionError) Unwrap() error { return e.Err }
