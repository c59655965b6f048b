// Package audit keeps an append-only JSONL history of stackdiff runs in
// ~/.stackdiff/audit.log. Every invocation writes one event, success or
// failure; the history command reads them back.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is one CLI invocation.
type Event struct {
	Timestamp     string   `json:"timestamp"`
	Operation     string   `json:"operation"`
	Stack         string   `json:"stack,omitempty"`
	Args          []string `json:"args"`
	Result        string   `json:"result"`
	ExitCode      int      `json:"exitCode"`
	DurationMs    int64    `json:"durationMs"`
	CorrelationID string   `json:"correlationId"`
}

// BuildEvent assembles an event from the process arguments and outcome.
func BuildEvent(args []string, result string, exitCode int, duration time.Duration) Event {
	op, stack := inferFromArgs(args)
	return Event{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Operation:     op,
		Stack:         stack,
		Args:          args,
		Result:        result,
		ExitCode:      exitCode,
		DurationMs:    duration.Milliseconds(),
		CorrelationID: uuid.NewString(),
	}
}

// Write appends the event to the user audit log, creating it on first use.
func Write(event Event) error {
	path, err := logPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// Read returns all recorded events in file order. Missing log means no
// events, not an error. Corrupt lines are skipped.
func Read() ([]Event, error) {
	path, err := logPath()
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var out []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err == nil {
			out = append(out, event)
		}
	}
	return out, scanner.Err()
}

func logPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stackdiff", "audit.log"), nil
}

// inferFromArgs recovers the subcommand and stack name from raw process
// arguments, so the event is useful even when a run aborts before flag
// parsing completes.
func inferFromArgs(args []string) (operation, stack string) {
	operation = "root"
	for i := 1; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			continue
		}
		operation = args[i]
		break
	}
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "--stack-name", "-s", "--stack":
			stack = args[i+1]
		}
	}
	return
}
