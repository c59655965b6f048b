package cfn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

func envelopeError(code, message string) error {
	body := fmt.Sprintf(
		"<ErrorResponse><Error><Code>%s</Code><Message>%s</Message></Error></ErrorResponse>",
		code, message,
	)
	return &smithy.DeserializationError{
		Err:      errors.New("deserialization failed"),
		Snapshot: []byte(body),
	}
}

func TestClassify_EnvelopeThrottling(t *testing.T) {
	err := Classify("get template", envelopeError("Throttling", "Rate exceeded"))

	var throttle *ThrottlingError
	if !errors.As(err, &throttle) {
		t.Fatalf("Classify() = %T, want *ThrottlingError", err)
	}
	if throttle.Message != "Rate exceeded" {
		t.Errorf("Message = %q, want %q", throttle.Message, "Rate exceeded")
	}
}

func TestClassify_EnvelopeValidation(t *testing.T) {
	err := Classify("create changeset", envelopeError("ValidationError", "Stack does not exist"))

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Classify() = %T, want *ValidationError", err)
	}
	if validation.Message != "Stack does not exist" {
		t.Errorf("Message = %q, want %q", validation.Message, "Stack does not exist")
	}
}

func TestClassify_EnvelopeUnmatchedCode(t *testing.T) {
	// An unrecognized code must fall through to ServiceError, never be
	// dropped or promoted to a retryable kind.
	err := Classify("create changeset", envelopeError("AlreadyExists", "test"))

	var service *ServiceError
	if !errors.As(err, &service) {
		t.Fatalf("Classify() = %T, want *ServiceError", err)
	}
	if service.Op != "create changeset" {
		t.Errorf("Op = %q, want %q", service.Op, "create changeset")
	}
}

func TestClassify_UnparseableBody(t *testing.T) {
	raw := &smithy.DeserializationError{
		Err:      errors.New("deserialization failed"),
		Snapshot: []byte("not xml at all"),
	}
	err := Classify("get template", raw)

	var unclassified *UnclassifiedError
	if !errors.As(err, &unclassified) {
		t.Fatalf("Classify() = %T, want *UnclassifiedError", err)
	}
	if !errors.Is(err, raw) {
		t.Error("Classify() should keep the raw error in the chain")
	}
}

func TestClassify_ModeledLimitExceeded(t *testing.T) {
	raw := &types.LimitExceededException{Message: aws.String("changeset limit reached")}
	err := Classify("create changeset", raw)

	var limit *LimitExceededError
	if !errors.As(err, &limit) {
		t.Fatalf("Classify() = %T, want *LimitExceededError", err)
	}
	if limit.Message != "changeset limit reached" {
		t.Errorf("Message = %q, want %q", limit.Message, "changeset limit reached")
	}
}

func TestClassify_ModeledAPIErrorThrottling(t *testing.T) {
	raw := &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
	err := Classify("get template", raw)

	var throttle *ThrottlingError
	if !errors.As(err, &throttle) {
		t.Fatalf("Classify() = %T, want *ThrottlingError", err)
	}
}

func TestClassify_ModeledAPIErrorUnknownCode(t *testing.T) {
	raw := &smithy.GenericAPIError{Code: "InsufficientCapabilities", Message: "test"}
	err := Classify("create changeset", raw)

	var service *ServiceError
	if !errors.As(err, &service) {
		t.Fatalf("Classify() = %T, want *ServiceError", err)
	}
}

func TestClassify_PlainError(t *testing.T) {
	err := Classify("get template", errors.New("connection refused"))

	var unclassified *UnclassifiedError
	if !errors.As(err, &unclassified) {
		t.Fatalf("Classify() = %T, want *UnclassifiedError", err)
	}
}

func TestClassify_Nil(t *testing.T) {
	if err := Classify("get template", nil); err != nil {
		t.Errorf("Classify(nil) = %v, want nil", err)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	raw := envelopeError("Throttling", "Rate exceeded")

	first := Classify("get template", raw)
	second := Classify("get template", raw)

	var a, b *ThrottlingError
	if !errors.As(first, &a) || !errors.As(second, &b) {
		t.Fatal("classification changed kind between identical inputs")
	}
	if a.Message != b.Message {
		t.Errorf("messages differ: %q vs %q", a.Message, b.Message)
	}
}
