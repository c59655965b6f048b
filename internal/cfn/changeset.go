// Package cfn drives the CloudFormation changeset lifecycle: it classifies
// service errors, retries transient failures with bounded exponential
// backoff, and sequences create → poll → terminal → delete against the
// asynchronous changeset API.
package cfn

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/stackdiff/stackdiff/internal/config"
	"github.com/stackdiff/stackdiff/internal/output"
)

// ChangeSetName is the fixed name used for the transient changeset. One
// invocation owns at most one changeset, so a constant name suffices and
// makes leaked changesets easy to spot in the console.
const ChangeSetName = "stackdiff"

// API is the subset of the CloudFormation client consumed by the lifecycle.
// *cloudformation.Client satisfies it; tests inject fakes.
type API interface {
	GetTemplate(ctx context.Context, params *cloudformation.GetTemplateInput, optFns ...func(*cloudformation.Options)) (*cloudformation.GetTemplateOutput, error)
	CreateChangeSet(ctx context.Context, params *cloudformation.CreateChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, params *cloudformation.DescribeChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, params *cloudformation.DeleteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error)
}

// Request carries everything needed to create a changeset. Immutable once
// constructed; one per run.
type Request struct {
	StackName    string
	TemplateBody string
	Parameters   []config.Parameter
}

// Handle identifies a created changeset for subsequent describe and delete
// calls.
type Handle struct {
	StackName     string
	ChangeSetName string
	ID            string
}

// Result is the terminal outcome of a changeset computation. A non-succeeded
// terminal status (for example "didn't contain changes") is still a Result,
// not an error: the status string is surfaced to the caller for rendering.
type Result struct {
	Status       types.ChangeSetStatus
	StatusReason string
	Changes      []types.Change
}

// Succeeded reports whether the changeset computed a change list.
func (r *Result) Succeeded() bool {
	return strings.HasSuffix(string(r.Status), "_COMPLETE")
}

// inFlight classifies a status by suffix: the changeset is still being
// computed while the status ends in _PROGRESS or _PENDING; anything else is
// terminal.
func inFlight(status types.ChangeSetStatus) bool {
	s := string(status)
	return strings.HasSuffix(s, "_PROGRESS") || strings.HasSuffix(s, "_PENDING")
}

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultPollTimeout  = 5 * time.Minute
)

// Lifecycle sequences the remote calls of one changeset run. The retry
// policy and poll cadence are fixed at construction; tests shrink them.
type Lifecycle struct {
	client API
	retry  RetryPolicy

	// PollInterval is the wait between describe calls while in-flight.
	PollInterval time.Duration
	// PollTimeout bounds the whole poll loop; the changeset API itself never
	// promises termination.
	PollTimeout time.Duration
}

// NewLifecycle returns a lifecycle with production poll cadence.
func NewLifecycle(client API, policy RetryPolicy) *Lifecycle {
	return &Lifecycle{
		client:       client,
		retry:        policy,
		PollInterval: defaultPollInterval,
		PollTimeout:  defaultPollTimeout,
	}
}

// retryGetTemplate allows retry only on throttling.
func retryGetTemplate(err error) bool {
	var throttle *ThrottlingError
	return errors.As(err, &throttle)
}

// retryCreate additionally allows retry on limit-exceeded: CloudFormation
// may still be finalizing the deletion of a previous changeset.
func retryCreate(err error) bool {
	if retryGetTemplate(err) {
		return true
	}
	var limit *LimitExceededError
	return errors.As(err, &limit)
}

// CurrentTemplate fetches the deployed stack's original template body,
// retrying on throttling.
func (l *Lifecycle) CurrentTemplate(ctx context.Context, stackName string) (string, error) {
	out, err := Retry(ctx, l.retry, func(ctx context.Context) (*cloudformation.GetTemplateOutput, error) {
		out, err := l.client.GetTemplate(ctx, &cloudformation.GetTemplateInput{
			StackName:     aws.String(stackName),
			TemplateStage: types.TemplateStageOriginal,
		})
		if err != nil {
			return nil, Classify("get template", err)
		}
		return out, nil
	}, retryGetTemplate)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.TemplateBody), nil
}

// Create asks CloudFormation to compute a dry-run changeset for the request,
// retrying on throttling and limit-exceeded.
func (l *Lifecycle) Create(ctx context.Context, req Request) (Handle, error) {
	parameters := make([]types.Parameter, 0, len(req.Parameters))
	for _, p := range req.Parameters {
		parameters = append(parameters, types.Parameter{
			ParameterKey:   aws.String(p.Key),
			ParameterValue: aws.String(p.Value),
		})
	}

	out, err := Retry(ctx, l.retry, func(ctx context.Context) (*cloudformation.CreateChangeSetOutput, error) {
		out, err := l.client.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
			ChangeSetName: aws.String(ChangeSetName),
			StackName:     aws.String(req.StackName),
			TemplateBody:  aws.String(req.TemplateBody),
			Capabilities: []types.Capability{
				types.CapabilityCapabilityIam,
				types.CapabilityCapabilityNamedIam,
			},
			Parameters: parameters,
		})
		if err != nil {
			return nil, Classify("create changeset", err)
		}
		return out, nil
	}, retryCreate)
	if err != nil {
		return Handle{}, err
	}

	return Handle{
		StackName:     req.StackName,
		ChangeSetName: ChangeSetName,
		ID:            aws.ToString(out.Id),
	}, nil
}

// Wait polls the changeset until its status is terminal and returns the
// final status with its change list. Describe failures are not retried;
// they abort the loop as a *PollError. The loop is bounded by the caller's
// context and by PollTimeout.
//
// Wait never deletes: callers must only issue Delete after Wait returns.
func (l *Lifecycle) Wait(ctx context.Context, handle Handle) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, l.PollTimeout)
	defer cancel()

	for {
		out, err := l.client.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			ChangeSetName: aws.String(handle.ChangeSetName),
			StackName:     aws.String(handle.StackName),
		})
		if err != nil {
			return nil, &PollError{Op: "describe changeset", Err: err}
		}

		if !inFlight(out.Status) {
			return &Result{
				Status:       out.Status,
				StatusReason: aws.ToString(out.StatusReason),
				Changes:      out.Changes,
			}, nil
		}
		output.Debug("changeset in flight", "status", out.Status)

		timer := time.NewTimer(l.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &PollError{Op: "describe changeset", Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

// Delete removes the transient changeset. Not retried; a failure here is
// reported but must not unwind diff output the caller already produced.
func (l *Lifecycle) Delete(ctx context.Context, handle Handle) error {
	_, err := l.client.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
		ChangeSetName: aws.String(handle.ChangeSetName),
		StackName:     aws.String(handle.StackName),
	})
	if err != nil {
		return &PollError{Op: "delete changeset", Err: err}
	}
	return nil
}
