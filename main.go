// stackdiff – CloudFormation stack diff CLI
// Stateless orchestrator: asks CloudFormation for a dry-run changeset,
// diffs the deployed template against a local file, and renders the
// resulting resource changes. Nothing is ever applied.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stackdiff/stackdiff/cmd"
	"github.com/stackdiff/stackdiff/internal/audit"
	"github.com/stackdiff/stackdiff/internal/exitcode"
	_ "github.com/stackdiff/stackdiff/schemas"
)

func main() {
	start := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		code := exitcode.Of(err)
		event := audit.BuildEvent(os.Args, "failure", code, time.Since(start))
		_ = audit.Write(event)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(code)
	}

	event := audit.BuildEvent(os.Args, "success", exitcode.OK, time.Since(start))
	_ = audit.Write(event)
}
