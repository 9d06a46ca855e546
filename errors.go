package granita

import (
	"errors"
	"fmt"
)

// ErrFailedRequestExecution is returned by Context.Send for every failed request. The
// underlying cause is only available to a FailureLogger.
var ErrFailedRequestExecution = errors.New("request execution error")

// ErrBuilderConsumed is returned by Run on a builder that has already run.
var ErrBuilderConsumed = Configuration("builder already consumed by Run")

// ConfigurationError reports a builder or setup mistake.
type ConfigurationError struct {
	Reason string
}

// Configuration returns a *ConfigurationError carrying reason.
func Configuration(reason string) *ConfigurationError {
	return &ConfigurationError{Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}
