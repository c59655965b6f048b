// Package render turns a terminal changeset's resource-change list into an
// ordered, human-readable report.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/stackdiff/stackdiff/internal/output"
)

// Renderer formats change records. With color off it emits plain ASCII
// markers, suitable for pipes and NO_COLOR terminals.
type Renderer struct {
	color bool
}

// New returns a renderer.
func New(color bool) *Renderer {
	return &Renderer{color: color}
}

// Render returns one display line per change, stable-sorted by action
// string. The sort groups Add/Modify/Remove together; that grouping is the
// contract, not any semantic ordering between groups.
func (r *Renderer) Render(changes []types.Change) []string {
	sorted := make([]types.Change, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return changeAction(sorted[i]) < changeAction(sorted[j])
	})

	lines := make([]string, 0, len(sorted))
	for _, change := range sorted {
		if change.Type == types.ChangeTypeResource && change.ResourceChange != nil {
			lines = append(lines, r.resourceLine(change.ResourceChange))
		} else {
			// Non-resource records are surfaced, never dropped.
			lines = append(lines, fmt.Sprintf("other %+v", change))
		}
	}
	return lines
}

// StatusLine reports a terminal changeset that computed no change list, such
// as the "didn't contain changes" failure state.
func (r *Renderer) StatusLine(status types.ChangeSetStatus) string {
	return fmt.Sprintf("change set status is %s", status)
}

func changeAction(change types.Change) string {
	if change.ResourceChange == nil {
		return ""
	}
	return string(change.ResourceChange.Action)
}

func (r *Renderer) resourceLine(rc *types.ResourceChange) string {
	scope := make([]string, 0, len(rc.Scope))
	for _, attr := range rc.Scope {
		scope = append(scope, string(attr))
	}

	replacement := ""
	if rc.Replacement == types.ReplacementTrue {
		replacement = r.replacementMarker()
	}

	action := string(rc.Action)
	line := fmt.Sprintf("%s %s %s %s %s%s",
		r.bold(action),
		r.faint(aws.ToString(rc.ResourceType)),
		r.bold(aws.ToString(rc.LogicalResourceId)),
		r.faint(aws.ToString(rc.PhysicalResourceId)),
		r.bold(strings.Join(scope, ", ")),
		replacement,
	)

	switch rc.Action {
	case types.ChangeActionAdd:
		return r.marker("🌱", "[+]") + " " + r.paint(output.StyleAdd, line)
	case types.ChangeActionModify:
		return r.marker("🔧", "[~]") + " " + r.paint(output.StyleModify, line)
	case types.ChangeActionRemove:
		return r.marker("✂️ ", "[-]") + " " + r.paint(output.StyleRemove, line)
	default:
		return line
	}
}

func (r *Renderer) replacementMarker() string {
	if r.color {
		return " " + r.paint(output.StyleWarning, "⚠️  Requires replacement")
	}
	return " [!] Requires replacement"
}

func (r *Renderer) marker(emoji, ascii string) string {
	if r.color {
		return emoji
	}
	return ascii
}

func (r *Renderer) paint(style interface{ Render(...string) string }, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

func (r *Renderer) bold(s string) string  { return r.paint(output.StyleBold, s) }
func (r *Renderer) faint(s string) string { return r.paint(output.StyleFaint, s) }
