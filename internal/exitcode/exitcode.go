// Package exitcode maps errors to process exit codes so scripts can tell
// failure classes apart without parsing stderr.
package exitcode

import (
	"errors"
	"strings"

	"github.com/stackdiff/stackdiff/internal/cfn"
	"github.com/stackdiff/stackdiff/internal/diff"
)

const (
	OK         = 0
	Generic    = 1
	Validation = 2
	Service    = 3
	Throttling = 4
	Differ     = 5
	Polling    = 6
)

type Error struct {
	Code  int
	Cause error
}

func (e *Error) Error() string {
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap attaches an explicit exit code to an error.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Cause: err}
}

// Of resolves the exit code for an error: an explicit Wrap wins, then the
// typed cfn/diff taxonomy, then a string fallback for unwrapped errors.
func Of(err error) int {
	if err == nil {
		return OK
	}

	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}

	var validation *cfn.ValidationError
	if errors.As(err, &validation) {
		return Validation
	}

	var throttle *cfn.ThrottlingError
	if errors.As(err, &throttle) {
		return Throttling
	}

	// Limit-exceeded only surfaces once the create retries are spent, which
	// is the same transient family as throttling.
	var limit *cfn.LimitExceededError
	if errors.As(err, &limit) {
		return Throttling
	}

	var poll *cfn.PollError
	if errors.As(err, &poll) {
		return Polling
	}

	var service *cfn.ServiceError
	if errors.As(err, &service) {
		return Service
	}

	var unclassified *cfn.UnclassifiedError
	if errors.As(err, &unclassified) {
		return Service
	}

	var differCfg *diff.ConfigError
	if errors.As(err, &differCfg) {
		return Differ
	}

	// Fallback: string-based classification for errors not yet wrapped with
	// typed codes. Each case here is a candidate for future replacement with
	// a typed error.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "validation") || strings.Contains(msg, "invalid"):
		return Validation
	default:
		return Generic
	}
}
