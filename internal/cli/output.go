package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/execudex-backend/internal/navigation"
	"github.com/yungbote/execudex-backend/internal/services"
)

// Printer writes command results as indented JSON or short text lines.
type Printer struct {
	Format string
	W      io.Writer
}

func (p Printer) JSON(v any) error {
	enc := json.NewEncoder(p.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Emit prints v as JSON, or the text lines when the text format is selected.
func (p Printer) Emit(v any, lines ...string) error {
	if p.Format == "json" {
		return p.JSON(v)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(p.W, l); err != nil {
			return err
		}
	}
	return nil
}

func outcomeLines(o navigation.Outcome) []string {
	lines := []string{fmt.Sprintf("result: %s", o.Result)}
	if o.Kind != "" {
		lines = append(lines, fmt.Sprintf("profile: %s %d", o.Kind, o.ID))
	}
	if o.Quota != nil {
		lines = append(lines, quotaLines(*o.Quota)...)
	}
	if o.Report != nil {
		lines = append(lines, reportLines(o.Report)...)
	}
	if o.Destination != nil {
		lines = append(lines, fmt.Sprintf("destination: %s id=%s", o.Destination.Pathname, o.Destination.RawID))
	}
	for _, pr := range o.Prompts {
		lines = append(lines, promptLine(pr))
	}
	if o.Error != "" {
		lines = append(lines, "error: "+o.Error)
	}
	return lines
}

func reportLines(r *services.ReadinessReport) []string {
	lines := []string{fmt.Sprintf("steps: %s", strings.Join(r.Steps, ","))}
	if r.AlreadyIndexed {
		lines = append(lines, "already indexed")
	}
	if r.MarkedIndexed {
		lines = append(lines, "marked indexed")
	}
	if r.MarkedWeak {
		lines = append(lines, "marked weak")
	}
	for _, w := range r.Warnings {
		lines = append(lines, "warning: "+w)
	}
	return lines
}

func quotaLines(d services.QuotaDecision) []string {
	lines := []string{fmt.Sprintf("allowed: %t (used %d)", d.Allowed, d.ProfilesUsed)}
	if d.RemainingProfiles != nil {
		lines = append(lines, fmt.Sprintf("remaining: %d", *d.RemainingProfiles))
	}
	if d.Reason != "" {
		lines = append(lines, "reason: "+d.Reason)
	}
	if d.ResetDate != nil {
		lines = append(lines, "resets: "+d.ResetDate.Format("2006-01-02"))
	}
	if d.Error != "" {
		lines = append(lines, "error: "+d.Error)
	}
	return lines
}

func promptLine(p navigation.Prompt) string {
	labels := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		labels = append(labels, a.Label)
	}
	line := fmt.Sprintf("prompt: %s: %s", p.Title, p.Message)
	if len(labels) > 0 {
		line += " [" + strings.Join(labels, " | ") + "]"
	}
	return line
}
