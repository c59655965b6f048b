package cfn

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"

	"github.com/stackdiff/stackdiff/internal/output"
)

// ThrottlingError is a transient rate-limit rejection. Always safe to retry.
type ThrottlingError struct {
	Message string
}

func (e *ThrottlingError) Error() string { return e.Message }

// ValidationError is a permanent rejection of the request, such as a stack
// that does not exist or a malformed template.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LimitExceededError means CloudFormation is still holding capacity, usually
// because a previous changeset deletion has not finished. Retried only on the
// create-changeset call.
type LimitExceededError struct {
	Message string
}

func (e *LimitExceededError) Error() string { return e.Message }

// ServiceError wraps a modeled service failure whose code has no dedicated
// mapping. Op tags the call that failed.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ServiceError) Unwrap() error { return e.Err }

// UnclassifiedError wraps a failure that carried no recognizable structure:
// no modeled error, and no parseable error envelope in the response body.
type UnclassifiedError struct {
	Op  string
	Err error
}

func (e *UnclassifiedError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UnclassifiedError) Unwrap() error { return e.Err }

// PollError is a failure of a describe or delete call. These are never
// retried: a broken poll loop aborts the run immediately.
type PollError struct {
	Op  string
	Err error
}

func (e *PollError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PollError) Unwrap() error { return e.Err }

// errorEnvelope is the two-field AWS Query protocol error body:
// <ErrorResponse><Error><Code/><Message/></Error></ErrorResponse>.
// Throttling responses sometimes arrive only in this raw form, without a
// modeled error, so the classifier has to dig it out of the body itself.
type errorEnvelope struct {
	XMLName xml.Name `xml:"ErrorResponse"`
	Error   struct {
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	} `xml:"Error"`
}

// Classify maps a raw CloudFormation call failure to one of the typed errors
// above. Every error returned by this package passes through here exactly
// once; nothing else constructs the typed kinds.
//
// Classification is deterministic: the same input error always yields the
// same kind. Unmatched service codes are logged at debug level, never fatal.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var limit *types.LimitExceededException
	if errors.As(err, &limit) {
		return &LimitExceededError{Message: aws.ToString(limit.Message)}
	}

	var api smithy.APIError
	if errors.As(err, &api) {
		if kind := classifyCode(op, api.ErrorCode(), api.ErrorMessage()); kind != nil {
			return kind
		}
		return &ServiceError{Op: op, Err: err}
	}

	var deser *smithy.DeserializationError
	if errors.As(err, &deser) && len(deser.Snapshot) > 0 {
		var envelope errorEnvelope
		if xml.Unmarshal(deser.Snapshot, &envelope) == nil && envelope.Error.Code != "" {
			if kind := classifyCode(op, envelope.Error.Code, envelope.Error.Message); kind != nil {
				return kind
			}
			return &ServiceError{Op: op, Err: err}
		}
	}

	return &UnclassifiedError{Op: op, Err: err}
}

// classifyCode maps a service error code to a typed kind, or nil when the
// code has no dedicated mapping.
func classifyCode(op, code, message string) error {
	switch code {
	case "Throttling":
		return &ThrottlingError{Message: message}
	case "ValidationError":
		return &ValidationError{Message: message}
	case "LimitExceeded":
		return &LimitExceededError{Message: message}
	default:
		output.Debug("unmatched service error code", "op", op, "code", code)
		return nil
	}
}
