package assess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SwarupShekhar/ENGAPP/internal/grammar"
	"github.com/SwarupShekhar/ENGAPP/internal/jsonrecover"
	"github.com/SwarupShekhar/ENGAPP/internal/observe"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
)

// maxVerifiedCorrections caps how many corrections are checked per
// request; anything past the cap is kept unverified.
const maxVerifiedCorrections = 10

const verifySystem = `You judge whether a grammar correction for an English learner is valid. Respond with JSON only, no prose.`

const verifyPromptFormat = `Is this correction valid?

Original: %q
Corrected: %q

Respond ONLY with JSON:
{
  "valid": true|false,
  "reason": "why the correction is better or worse"
}`

// verifyCorrections filters the model's suggested corrections before
// scoring. Corrections identical to their original after case-folding
// are dropped outright. For the rest, a lightweight model check rejects
// corrections that are not actually better; a check that errors, times
// out, or returns unrecoverable JSON keeps the correction (benefit of
// the doubt). At most [maxVerifiedCorrections] are checked.
func (o *Orchestrator) verifyCorrections(ctx context.Context, errs []grammar.ReportedError) []grammar.ReportedError {
	if len(errs) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		o.metrics.VerificationDuration.Record(context.WithoutCancel(ctx), time.Since(start).Seconds())
	}()

	kept := make([]grammar.ReportedError, 0, len(errs))
	checked := 0
	for _, e := range errs {
		if e.Original == "" || e.Corrected == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(e.Original), strings.TrimSpace(e.Corrected)) {
			continue
		}
		if checked >= maxVerifiedCorrections {
			kept = append(kept, e)
			continue
		}
		checked++

		if o.checkCorrection(ctx, e) {
			kept = append(kept, e)
		} else {
			o.metrics.CorrectionsDropped.Add(context.WithoutCancel(ctx), 1)
			observe.Logger(ctx).Warn("rejected invalid correction",
				"original", e.Original, "corrected", e.Corrected)
		}
	}
	return kept
}

// checkCorrection runs one validity check. Only an explicit negative
// verdict rejects the correction.
func (o *Orchestrator) checkCorrection(ctx context.Context, e grammar.ReportedError) bool {
	ctx, cancel := context.WithTimeout(ctx, o.verifyTimeout)
	defer cancel()

	resp, err := o.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: verifySystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(verifyPromptFormat, e.Original, e.Corrected)},
		},
		Temperature: o.temperature,
	})
	if err != nil {
		observe.Logger(ctx).Warn("correction check failed, keeping correction", "error", err)
		return true
	}

	var verdict struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	if !jsonrecover.ParseValidated(resp.Content, jsonrecover.SchemaCorrectionCheck, &verdict) {
		return true
	}
	return verdict.Valid
}
