package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// CallFetcher fetches the authoritative call record from the provider.
type CallFetcher interface {
	GetCall(ctx context.Context, callID string) (*vapi.CallResource, error)
}

// Summarizer turns a prompt into raw JSON text. May fail; the pipeline
// degrades to a fixed fallback instead of propagating the failure.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// ClaimStore is an optional cross-instance fast-path guard ahead of the
// database unique index (redis SetNX). A nil ClaimStore is fine: the
// unique index alone guarantees at most one summary per call.
type ClaimStore interface {
	ClaimSummary(ctx context.Context, callID string, ttl time.Duration) (bool, error)
	ReleaseSummaryClaim(ctx context.Context, callID string) error
}

// Fallback values substituted when the summarizer fails. A degraded
// summary is always produced; nothing past the summarizer call may fail
// the pipeline.
const (
	FallbackIntent  = "Could not determine intent."
	FallbackBullet  = "Manually review call transcript due to summarizer error."
	FallbackOutcome = "Unknown"
)

const claimTTL = 10 * time.Minute

const promptTemplate = `Analyze the following phone call transcript and provide a structured summary in JSON format.

**Transcript:**
---
%s
---

**Instructions:**
Based on the transcript, extract the following information and format it as a JSON object with these exact keys: "caller_intent", "action_items", and "outcome".

- "caller_intent": A short, one-sentence description of why the caller was calling.
- "action_items": A list of clear, actionable to-do items for the business owner. If no actions are needed, provide an empty list [].
- "outcome": The result of the call (e.g., "Message taken", "Appointment scheduled", "Question answered").

Derive everything strictly from the transcript content. Do not embellish. Provide only the raw JSON object as the output.`

// structuredSummary is the JSON shape requested from the summarizer.
type structuredSummary struct {
	CallerIntent string   `json:"caller_intent"`
	ActionItems  []string `json:"action_items"`
	Outcome      string   `json:"outcome"`
}

// Pipeline turns a finished call into exactly one persisted CallSummary.
type Pipeline struct {
	calls      CallFetcher
	summarizer Summarizer
	directory  *repository.DirectoryRepository
	summaries  *repository.CallSummaryRepository
	claims     ClaimStore
}

// NewPipeline creates a summary pipeline. claims may be nil.
func NewPipeline(calls CallFetcher, summarizer Summarizer, directory *repository.DirectoryRepository, summaries *repository.CallSummaryRepository, claims ClaimStore) *Pipeline {
	return &Pipeline{
		calls:      calls,
		summarizer: summarizer,
		directory:  directory,
		summaries:  summaries,
		claims:     claims,
	}
}

// SummarizeAndStore fetches the call record, summarizes the transcript
// and persists the summary. Duplicate deliveries for the same call id
// collapse to a single row. Resolution failures abort without a partial
// write and are reported as errors for the caller to log; they are not
// retryable.
func (p *Pipeline) SummarizeAndStore(ctx context.Context, callID string) error {
	if callID == "" {
		return fmt.Errorf("%w: end-of-call report without call id", domain.ErrNotResolved)
	}

	if p.claims != nil {
		won, err := p.claims.ClaimSummary(ctx, callID, claimTTL)
		if err != nil {
			// Claim store down: fall through to the DB unique index.
			logger.Base().Warn("Summary claim store unavailable", zap.Error(err))
		} else if !won {
			logger.Base().Info("Summary already claimed for call", zap.String("call_id", callID))
			return nil
		}
	}

	call, err := p.calls.GetCall(ctx, callID)
	if err != nil {
		p.releaseClaim(ctx, callID)
		return fmt.Errorf("failed to fetch call record: %w", err)
	}

	structured := p.summarize(ctx, call.Transcript)

	summaryText := renderBullets(structured.ActionItems)

	assistantID := call.AssistantID
	if assistantID == "" {
		return fmt.Errorf("%w: call %s has no assistant id", domain.ErrNotResolved, callID)
	}
	userID, err := p.directory.ResolveUserByRemoteAssistantID(ctx, assistantID)
	if err != nil {
		return fmt.Errorf("failed to resolve owner of assistant %s: %w", assistantID, err)
	}

	record := &domain.CallSummary{
		CallID:          callID,
		UserID:          userID,
		CallerPhone:     call.CustomerNumber(),
		DurationSeconds: durationSeconds(call.StartedAt, call.EndedAt),
		Transcript:      call.Transcript,
		SummaryText:     summaryText,
		KeyPoints:       structured.ActionItems,
		Outcome:         structured.Outcome,
		CallerIntent:    structured.CallerIntent,
		RecordingURL:    call.RecordingURL,
		Timestamp:       time.Now(),
	}

	created, err := p.summaries.InsertIfAbsent(ctx, record)
	if err != nil {
		// Persistence failed after a successful summarization; release
		// the claim so the provider's redelivery can retry.
		p.releaseClaim(ctx, callID)
		return fmt.Errorf("failed to persist call summary: %w", err)
	}
	if !created {
		logger.Base().Info("Summary already exists for call, skipping", zap.String("call_id", callID))
		return nil
	}

	logger.Base().Info("Call summary stored",
		zap.String("call_id", callID),
		zap.String("user_id", userID),
		zap.Int("duration_seconds", record.DurationSeconds))
	return nil
}

// summarize invokes the external summarizer and normalizes its output.
// Never fails: any error substitutes the fixed fallback payload.
func (p *Pipeline) summarize(ctx context.Context, transcript string) structuredSummary {
	prompt := fmt.Sprintf(promptTemplate, transcript)

	raw, err := p.summarizer.Summarize(ctx, prompt)
	if err != nil {
		logger.Base().Error("Summarizer failed, using fallback summary", zap.Error(err))
		return fallbackSummary()
	}

	var structured structuredSummary
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		logger.Base().Error("Summarizer returned malformed JSON, using fallback summary", zap.Error(err))
		return fallbackSummary()
	}

	if structured.CallerIntent == "" {
		structured.CallerIntent = "Intent not determined."
	}
	if structured.Outcome == "" {
		structured.Outcome = "Outcome not determined."
	}
	if structured.ActionItems == nil {
		structured.ActionItems = []string{}
	}
	return structured
}

func (p *Pipeline) releaseClaim(ctx context.Context, callID string) {
	if p.claims == nil {
		return
	}
	if err := p.claims.ReleaseSummaryClaim(ctx, callID); err != nil {
		logger.Base().Warn("Failed to release summary claim", zap.String("call_id", callID), zap.Error(err))
	}
}

func fallbackSummary() structuredSummary {
	return structuredSummary{
		CallerIntent: FallbackIntent,
		ActionItems:  []string{FallbackBullet},
		Outcome:      FallbackOutcome,
	}
}

// renderBullets joins action items with a leading dash per line.
func renderBullets(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

// durationSeconds computes whole seconds between the provider's RFC3339
// timestamps, zero when either is missing or unparseable.
func durationSeconds(startedAt, endedAt string) int {
	if startedAt == "" || endedAt == "" {
		return 0
	}
	start, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return 0
	}
	end, err := time.Parse(time.RFC3339, endedAt)
	if err != nil {
		return 0
	}
	d := int(end.Sub(start).Seconds())
	if d < 0 {
		return 0
	}
	return d
}
