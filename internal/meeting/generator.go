package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prototypeforge/aicxo/internal/config"
	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/llm"
	"github.com/prototypeforge/aicxo/internal/types"
)

// Reserved identifiers for chair usage records. The chair may be a
// stored agent or the built-in default, so usage rows key on these
// instead of an agent row.
const (
	chairAgentID         = "00000000-0000-0000-0000-00000000c4a1"
	chairRole            = "Chair of the Board"
	chairFollowUpRole    = "Chair of the Board (Follow-up)"
	defaultChairName     = "Board Chair"
	opinionFailureReason = "An error occurred while processing this request."
)

// ProviderResolver routes a model name to the chat provider that serves it
type ProviderResolver interface {
	ProviderFor(model string) (llm.ChatProvider, error)
}

// generator runs the individual LLM calls of a deliberation and records
// token usage for every call that produced a response, parseable or not
type generator struct {
	resolver ProviderResolver
	usage    database.UsageDAO
	cfg      config.BoardConfig
	logger   *slog.Logger
}

func newGenerator(resolver ProviderResolver, usage database.UsageDAO, cfg config.BoardConfig, logger *slog.Logger) *generator {
	return &generator{
		resolver: resolver,
		usage:    usage,
		cfg:      cfg,
		logger:   logger,
	}
}

// complete runs one bounded LLM call with capabilities applied. The
// returned flag reports whether the call was made in JSON mode; reply
// normalization keys its strictness off it.
func (g *generator) complete(ctx context.Context, model string, messages []llm.Message, jsonWanted bool) (*llm.CompletionResponse, bool, error) {
	provider, err := g.resolver.ProviderFor(model)
	if err != nil {
		return nil, false, err
	}

	caps := llm.Capabilities(model)
	jsonMode := jsonWanted && caps.JSONMode

	req := llm.CompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		JSONMode:    jsonMode,
		TokenParam:  caps.TokenParam,
	}

	timeout := time.Duration(g.cfg.OpinionTimeoutSeconds) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := provider.Complete(callCtx, req)
	return resp, jsonMode, err
}

// recordUsage writes one billing row. Failures are logged, not fatal:
// a billing hiccup must not sink a finished deliberation.
func (g *generator) recordUsage(ctx context.Context, m *database.Meeting, agentID types.ID, agentName, agentRole, model string, usage llm.TokenUsage) float64 {
	cost := llm.CalculateCost(model, usage.PromptTokens, usage.CompletionTokens)

	record := &database.TokenUsageRecord{
		UserID:           m.UserID,
		AgentID:          agentID,
		AgentName:        agentName,
		AgentRole:        agentRole,
		Model:            model,
		MeetingID:        m.ID,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CostUSD:          cost,
	}

	if err := g.usage.Record(ctx, record); err != nil {
		g.logger.Error("failed to record token usage",
			"meeting_id", m.ID,
			"agent", agentName,
			"error", err)
	}

	return cost
}

// opinionFor produces one board member's opinion. Failures never
// propagate as errors: a member that cannot respond contributes an
// error-flagged opinion with zero confidence so the meeting proceeds.
func (g *generator) opinionFor(ctx context.Context, m *database.Meeting, agent *database.Agent, files []*database.CompanyFile, rec *TraceRecorder) (database.Opinion, float64) {
	op := database.Opinion{
		ID:             types.NewID(),
		AgentID:        agent.ID,
		AgentName:      agent.Name,
		AgentRole:      agent.Role,
		WeightsApplied: agent.Weights,
		ModelUsed:      agent.Model,
		CreatedAt:      time.Now().UTC(),
	}

	rec.Record(StageOpinionRequested, agent.Name, agent.Model, "")
	done := rec.Timed(StageOpinionReceived, agent.Name, agent.Model)

	messages := []llm.Message{
		llm.NewSystemMessage(opinionSystemPrompt(agent)),
		opinionUserMessage(agent, m.Question, m.Context, files),
	}

	resp, jsonMode, err := g.complete(ctx, agent.Model, messages, true)
	if err != nil {
		rec.Record(StageOpinionFailed, agent.Name, agent.Model, err.Error())
		g.logger.Warn("opinion generation failed",
			"meeting_id", m.ID,
			"agent", agent.Name,
			"error", err)
		op.Opinion = fmt.Sprintf("Error generating opinion: %v", err)
		op.Reasoning = opinionFailureReason
		op.Error = true
		op.ErrorDetail = err.Error()
		return op, 0
	}

	// Tokens were consumed whether or not the reply parses
	cost := g.recordUsage(ctx, m, agent.ID, agent.Name, agent.Role, agent.Model, resp.Usage)

	fields, err := llm.NormalizeOpinion(resp.Content, jsonMode)
	if err != nil {
		rec.Record(StageOpinionFailed, agent.Name, agent.Model, err.Error())
		op.Opinion = fmt.Sprintf("Error generating opinion: %v", err)
		op.Reasoning = opinionFailureReason
		op.Error = true
		op.ErrorDetail = err.Error()
		return op, cost
	}
	op.TokensUsed = resp.Usage.TotalTokens

	if fields.Opinion == "" {
		g.logger.Warn("model returned an empty opinion",
			"meeting_id", m.ID,
			"agent", agent.Name)
	}

	op.Opinion = fields.Opinion
	op.Reasoning = fields.Reasoning
	op.Confidence = fields.Confidence

	done(fmt.Sprintf("confidence=%.2f tokens=%d", op.Confidence, op.TokensUsed))
	return op, cost
}

// synthesize asks the chair to produce the summary and recommendation
func (g *generator) synthesize(ctx context.Context, m *database.Meeting, chair *database.Agent, rec *TraceRecorder) (llm.SynthesisFields, int, float64, error) {
	rec.Record(StageChairRequested, chair.Name, chair.Model, "")
	done := rec.Timed(StageChairReceived, chair.Name, chair.Model)

	messages := []llm.Message{
		llm.NewSystemMessage(chairSystemPrompt(chair)),
		llm.NewUserMessage(chairUserMessage(m.Question, m.Context, m.Opinions)),
	}

	resp, jsonMode, err := g.complete(ctx, chair.Model, messages, true)
	if err != nil {
		rec.Record(StageChairFailed, chair.Name, chair.Model, err.Error())
		return llm.SynthesisFields{}, 0, 0, err
	}

	cost := g.recordUsage(ctx, m, chairID(chair), chair.Name, chairRole, chair.Model, resp.Usage)

	fields, err := llm.NormalizeSynthesis(resp.Content, jsonMode)
	if err != nil {
		rec.Record(StageChairFailed, chair.Name, chair.Model, err.Error())
		return llm.SynthesisFields{}, resp.Usage.TotalTokens, cost, err
	}

	done(fmt.Sprintf("tokens=%d", resp.Usage.TotalTokens))
	return fields, resp.Usage.TotalTokens, cost, nil
}

// answerFollowUp asks the chair one follow-up question grounded in the
// meeting's current deliberation
func (g *generator) answerFollowUp(ctx context.Context, m *database.Meeting, chair *database.Agent, question string, rec *TraceRecorder) (string, int, float64, error) {
	done := rec.Timed(StageFollowUp, chair.Name, chair.Model)

	messages := []llm.Message{
		llm.NewSystemMessage(followUpSystemPrompt(chair)),
		llm.NewUserMessage(followUpUserMessage(m, question)),
	}

	resp, _, err := g.complete(ctx, chair.Model, messages, false)
	if err != nil {
		return "", 0, 0, err
	}

	cost := g.recordUsage(ctx, m, chairID(chair), chair.Name, chairFollowUpRole, chair.Model, resp.Usage)

	done(fmt.Sprintf("tokens=%d", resp.Usage.TotalTokens))
	return resp.Content, resp.Usage.TotalTokens, cost, nil
}

// chairID yields the usage-record agent ID for the chair, preferring
// the stored agent's own ID when one exists
func chairID(chair *database.Agent) types.ID {
	if !chair.ID.IsZero() {
		return chair.ID
	}
	return types.ID(chairAgentID)
}
