package meeting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prototypeforge/aicxo/internal/config"
	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/llm"
	"github.com/prototypeforge/aicxo/internal/llm/providers"
	"github.com/prototypeforge/aicxo/internal/types"
)

const (
	memberReply = `{"opinion":"Proceed with the expansion","reasoning":"Margins support the investment","confidence":0.8}`
	chairReply  = `{"summary":"The board favors expansion.","recommendation":"Proceed in Q3 with staged funding."}`

	// seeded chair model, scripted separately from board members
	chairModel = "gpt-4o"
)

// staticResolver routes every model to one provider
type staticResolver struct {
	provider llm.ChatProvider
}

func (r staticResolver) ProviderFor(model string) (llm.ChatProvider, error) {
	return r.provider, nil
}

// brokenResolver fails for one model and routes the rest to the provider
type brokenResolver struct {
	provider llm.ChatProvider
	broken   string
}

func (r brokenResolver) ProviderFor(model string) (llm.ChatProvider, error) {
	if model == r.broken {
		return nil, types.NewError(types.CONFIG_PROVIDER_MISSING,
			"no provider configured for model "+model)
	}
	return r.provider, nil
}

type testEnv struct {
	orch     *Orchestrator
	deps     Deps
	mock     *providers.MockProvider
	meetings database.MeetingDAO
	agents   database.AgentDAO
	users    database.UserDAO
	files    database.FileDAO
	usage    database.UsageDAO
	userID   int64
}

// newTestEnv builds an orchestrator over a migrated temp database with a
// test user who has hired two board members. The mock provider answers
// member models with a valid opinion and the chair model with a valid
// synthesis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrator(db).Migrate(ctx))

	mock := providers.NewMockProvider([]string{memberReply}).
		WithModelResponse(chairModel, chairReply)

	env := &testEnv{
		mock:     mock,
		meetings: database.NewMeetingDAO(db),
		agents:   database.NewAgentDAO(db),
		users:    database.NewUserDAO(db),
		files:    database.NewFileDAO(db),
		usage:    database.NewUsageDAO(db),
	}

	user := &database.User{Email: "ceo@example.com", Username: "ceo"}
	require.NoError(t, env.users.Create(ctx, user))
	env.userID = user.ID

	for _, spec := range []struct{ name, role, model string }{
		{"Alexandra Sterling", "Chief Financial Officer", "model-a"},
		{"Marcus Chen", "Chief Technology Officer", "model-b"},
	} {
		agent := &database.Agent{
			Name:         spec.name,
			Role:         spec.role,
			SystemPrompt: "You are " + spec.name + ".",
			Model:        spec.model,
			IsActive:     true,
			CreatedBy:    user.ID,
		}
		require.NoError(t, env.agents.Create(ctx, agent))
		require.NoError(t, env.users.Hire(ctx, user.ID, agent.ID))
	}

	env.deps = Deps{
		Meetings: env.meetings,
		Agents:   env.agents,
		Users:    env.users,
		Files:    env.files,
		Usage:    env.usage,
		Settings: database.NewSettingsDAO(db),
		Resolver: staticResolver{provider: mock},
		Config: config.BoardConfig{
			DefaultProvider:       "mock",
			DefaultModel:          "gpt-4o-mini",
			ChairModel:            chairModel,
			Temperature:           0.7,
			OpinionTimeoutSeconds: 30,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	env.orch = NewOrchestrator(env.deps)

	return env
}

// hireAgent creates an agent and hires it for the test user.
func (e *testEnv) hireAgent(t *testing.T, name, role, model string, isChair bool) *database.Agent {
	t.Helper()
	ctx := context.Background()
	agent := &database.Agent{
		Name:         name,
		Role:         role,
		SystemPrompt: "You are " + name + ".",
		Model:        model,
		IsActive:     true,
		IsChair:      isChair,
		CreatedBy:    e.userID,
	}
	require.NoError(t, e.agents.Create(ctx, agent))
	require.NoError(t, e.users.Hire(ctx, e.userID, agent.ID))
	return agent
}

func (e *testEnv) hold(t *testing.T, question string) *database.Meeting {
	t.Helper()
	m, err := e.orch.Create(context.Background(), CreateRequest{
		UserID:   e.userID,
		Question: question,
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) seedFile(t *testing.T, userID int64, filename string) *database.CompanyFile {
	t.Helper()
	f := &database.CompanyFile{
		UserID:   userID,
		Filename: filename,
		Category: "financial",
		MIMEType: "text/plain",
		Content:  "Q2 revenue grew 14% year over year.",
	}
	require.NoError(t, e.files.Create(context.Background(), f))
	return f
}

func TestCreate_FullDeliberation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m := env.hold(t, "Should we expand into the APAC market?")

	assert.Equal(t, database.MeetingStatusCompleted, m.Status)
	assert.Equal(t, 1, m.CurrentVersion)
	require.NotNil(t, m.CompletedAt)

	require.Len(t, m.Opinions, 2)
	for _, op := range m.Opinions {
		assert.False(t, op.Error)
		assert.Equal(t, "Proceed with the expansion", op.Opinion)
		assert.InDelta(t, 0.8, op.Confidence, 0.001)
		assert.Equal(t, 150, op.TokensUsed)
	}

	assert.Equal(t, "The board favors expansion.", m.ChairSummary)
	assert.Equal(t, "Proceed in Q3 with staged funding.", m.ChairRecommendation)

	// two opinions plus the chair call
	assert.Equal(t, 450, m.TotalTokensUsed)
	assert.Greater(t, m.TotalCostUSD, 0.0)
	assert.Equal(t, 3, env.mock.CallCount())

	records, err := env.usage.ListByMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// the persisted row matches what Create returned
	stored, err := env.meetings.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, database.MeetingStatusCompleted, stored.Status)
	assert.Len(t, stored.Opinions, 2)

	require.NotEmpty(t, m.Trace)
	assert.Equal(t, StageMeetingStarted, m.Trace[0].Stage)
	assert.Equal(t, StageMeetingCompleted, m.Trace[len(m.Trace)-1].Stage)
}

func TestCreate_EmptyQuestion(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orch.Create(context.Background(), CreateRequest{UserID: env.userID})
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}

func TestCreate_NoAgentsHired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &database.User{Email: "new@example.com", Username: "new"}
	require.NoError(t, env.users.Create(ctx, user))

	_, err := env.orch.Create(ctx, CreateRequest{UserID: user.ID, Question: "Anything?"})
	require.Error(t, err)
	assert.Equal(t, types.NO_AGENTS_HIRED, types.CodeOf(err))
}

func TestCreate_NoActiveAgents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.GetByID(ctx, env.userID)
	require.NoError(t, err)
	for _, id := range user.HiredAgents {
		agent, err := env.agents.GetByID(ctx, id)
		require.NoError(t, err)
		agent.IsActive = false
		require.NoError(t, env.agents.Update(ctx, agent))
	}

	_, err = env.orch.Create(ctx, CreateRequest{UserID: env.userID, Question: "Anything?"})
	require.Error(t, err)
	assert.Equal(t, types.NO_ACTIVE_AGENTS, types.CodeOf(err))
}

func TestCreate_MemberFailureDegradesInPlace(t *testing.T) {
	env := newTestEnv(t)
	env.mock.WithModelError("model-b", errors.New("rate limited"))

	m := env.hold(t, "Should we raise a Series B?")

	// the meeting still completes
	assert.Equal(t, database.MeetingStatusCompleted, m.Status)
	assert.NotEmpty(t, m.ChairSummary)

	require.Len(t, m.Opinions, 2)
	var failed *database.Opinion
	for i := range m.Opinions {
		if m.Opinions[i].Error {
			failed = &m.Opinions[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "Marcus Chen", failed.AgentName)
	assert.Contains(t, failed.Opinion, "Error generating opinion:")
	assert.Zero(t, failed.Confidence)
	assert.Zero(t, failed.TokensUsed)

	// only the calls that produced a response are billed
	records, err := env.usage.ListByMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCreate_ChairFailureCompletesWithPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	env.mock.WithModelError(chairModel, errors.New("chair unavailable"))

	m, err := env.orch.Create(context.Background(), CreateRequest{
		UserID:   env.userID,
		Question: "Should we acquire a competitor?",
	})
	require.NoError(t, err)
	assert.Equal(t, database.MeetingStatusCompleted, m.Status)
	require.NotNil(t, m.CompletedAt)
	assert.Contains(t, m.ChairSummary, "Error generating summary:")
	assert.Contains(t, m.ChairSummary, "chair unavailable")
	assert.Equal(t, "Unable to generate recommendation due to an error.", m.ChairRecommendation)

	stored, err := env.meetings.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, database.MeetingStatusCompleted, stored.Status)
	// member opinions survive the synthesis failure
	assert.Len(t, stored.Opinions, 2)
	for _, op := range stored.Opinions {
		assert.False(t, op.Error)
	}
}

func TestCreate_HiredChairNeverOpines(t *testing.T) {
	env := newTestEnv(t)
	env.hireAgent(t, "Eleanor Voss", "Chair of the Board", chairModel, true)

	m := env.hold(t, "Should we spin off the hardware division?")

	require.Len(t, m.Opinions, 2)
	for _, op := range m.Opinions {
		assert.NotEqual(t, "Eleanor Voss", op.AgentName)
	}
	assert.Equal(t, "The board favors expansion.", m.ChairSummary)
}

func TestCreate_MalformedJSONModeReplyBillsNoOpinionTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.hireAgent(t, "Priya Nair", "Chief Legal Officer", "gpt-4o-mini", false)
	env.mock.WithModelResponse("gpt-4o-mini", "Let me think about that one.")

	m := env.hold(t, "Can we enforce the non-compete?")
	require.Len(t, m.Opinions, 3)

	var degraded *database.Opinion
	for i := range m.Opinions {
		if m.Opinions[i].AgentName == "Priya Nair" {
			degraded = &m.Opinions[i]
		}
	}
	require.NotNil(t, degraded)
	assert.True(t, degraded.Error)
	assert.Zero(t, degraded.TokensUsed)
	assert.Zero(t, degraded.Confidence)

	// the call itself is still billed even though the reply was unusable
	records, err := env.usage.ListByMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestCreate_UnresolvableModelBlocksDeliberation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	deps := env.deps
	deps.Resolver = brokenResolver{provider: env.mock, broken: "model-b"}
	orch := NewOrchestrator(deps)

	_, err := orch.Create(ctx, CreateRequest{
		UserID:   env.userID,
		Question: "Should we expand into the APAC market?",
	})
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_PROVIDER_MISSING, types.CodeOf(err))

	// nothing was persisted and no model was called
	meetings, err := env.orch.List(ctx, env.userID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, meetings)
	assert.Zero(t, env.mock.CallCount())
}

func TestCreate_IncludesUserDocumentLibrary(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFile(t, env.userID, "q2-report.txt")

	m := env.hold(t, "How did Q2 go?")

	require.Len(t, m.AttachedFiles, 1)
	assert.Equal(t, f.ID, m.AttachedFiles[0].FileID)

	var sawExcerpt bool
	for _, call := range env.mock.Calls() {
		for _, msg := range call.Request.Messages {
			if strings.Contains(msg.Content, "Q2 revenue grew 14%") {
				sawExcerpt = true
			}
		}
	}
	assert.True(t, sawExcerpt)
}

func TestCreate_WithAttachedFile(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFile(t, env.userID, "q2-report.txt")

	m, err := env.orch.Create(context.Background(), CreateRequest{
		UserID:   env.userID,
		Question: "How did Q2 go?",
		FileIDs:  []types.ID{f.ID},
	})
	require.NoError(t, err)

	require.Len(t, m.AttachedFiles, 1)
	assert.Equal(t, f.ID, m.AttachedFiles[0].FileID)
	assert.Equal(t, "q2-report.txt", m.AttachedFiles[0].Filename)

	// the extracted text rides along in the member prompts
	var sawExcerpt bool
	for _, call := range env.mock.Calls() {
		for _, msg := range call.Request.Messages {
			if strings.Contains(msg.Content, "Q2 revenue grew 14%") {
				sawExcerpt = true
			}
		}
	}
	assert.True(t, sawExcerpt, "expected file excerpt in a prompt")
}

func TestCreate_RejectsForeignFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := &database.User{Email: "other@example.com", Username: "other"}
	require.NoError(t, env.users.Create(ctx, other))
	f := env.seedFile(t, other.ID, "secret.txt")

	_, err := env.orch.Create(ctx, CreateRequest{
		UserID:   env.userID,
		Question: "What is in the file?",
		FileIDs:  []types.ID{f.ID},
	})
	require.Error(t, err)
	assert.Equal(t, types.NOT_AUTHORIZED, types.CodeOf(err))
}

func TestGet_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we go remote-first?")

	// owner
	_, err := env.orch.Get(ctx, m.ID, env.userID)
	require.NoError(t, err)

	// stranger
	stranger := &database.User{Email: "stranger@example.com", Username: "stranger"}
	require.NoError(t, env.users.Create(ctx, stranger))
	_, err = env.orch.Get(ctx, m.ID, stranger.ID)
	require.Error(t, err)
	assert.Equal(t, types.NOT_AUTHORIZED, types.CodeOf(err))

	// the seeded local admin can see any meeting
	_, err = env.orch.Get(ctx, m.ID, 1)
	require.NoError(t, err)
}

func TestDelete_RequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we sunset the legacy product?")

	stranger := &database.User{Email: "stranger@example.com", Username: "stranger"}
	require.NoError(t, env.users.Create(ctx, stranger))

	err := env.orch.Delete(ctx, m.ID, stranger.ID)
	require.Error(t, err)
	assert.Equal(t, types.NOT_AUTHORIZED, types.CodeOf(err))

	require.NoError(t, env.orch.Delete(ctx, m.ID, env.userID))
	_, err = env.meetings.GetByID(ctx, m.ID)
	assert.Equal(t, types.MEETING_NOT_FOUND, types.CodeOf(err))
}

func TestRegenerate_CreatesNewVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we open a Berlin office?")
	firstSummary := m.ChairSummary

	env.mock.WithModelResponse(chairModel,
		`{"summary":"On reflection the board urges caution.","recommendation":"Revisit next quarter."}`)

	m2, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)

	assert.Equal(t, 2, m2.CurrentVersion)
	assert.Equal(t, database.MeetingStatusCompleted, m2.Status)
	assert.Equal(t, "On reflection the board urges caution.", m2.ChairSummary)
	require.NotNil(t, m2.RegeneratedAt)
	require.NotNil(t, m2.RegeneratedBy)
	assert.Equal(t, env.userID, *m2.RegeneratedBy)

	// the outgoing version is snapshotted
	require.Len(t, m2.History, 1)
	assert.Equal(t, 1, m2.History[0].Version)
	assert.Equal(t, firstSummary, m2.History[0].ChairSummary)
	assert.Len(t, m2.History[0].Opinions, 2)

	// lifetime totals keep accumulating across runs
	assert.Equal(t, 900, m2.TotalTokensUsed)
}

func TestRegenerate_ReprocessesFollowUps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we adopt usage-based pricing?")

	env.mock.WithModelResponse(chairModel, "Start with the enterprise tier.")
	questions := []string{"Where should we start?", "What about pricing tiers?", "How do we migrate existing customers?"}
	var prior []*database.FollowUp
	for _, q := range questions {
		fu, err := env.orch.AddFollowUp(ctx, m.ID, env.userID, q)
		require.NoError(t, err)
		assert.Equal(t, "Start with the enterprise tier.", fu.Answer)
		assert.Equal(t, 1, fu.Version)
		prior = append(prior, fu)
	}

	env.mock.WithModelResponse(chairModel, chairReply)
	m2, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)

	require.Len(t, m2.FollowUps, len(questions))
	for i, got := range m2.FollowUps {
		assert.Equal(t, prior[i].ID, got.ID)
		assert.Equal(t, prior[i].Question, got.Question)
		assert.WithinDuration(t, prior[i].CreatedAt, got.CreatedAt, time.Second)
		assert.Equal(t, 2, got.Version)
		assert.NotEqual(t, prior[i].Answer, got.Answer)
	}
}

func TestRegenerate_ChairFailureKeepsPriorFollowUps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we build or buy the data platform?")

	env.mock.WithModelResponse(chairModel, "Buy first, build later.")
	fu, err := env.orch.AddFollowUp(ctx, m.ID, env.userID, "What about vendor lock-in?")
	require.NoError(t, err)

	env.mock.WithModelError(chairModel, errors.New("chair unavailable"))
	m2, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)
	assert.Equal(t, database.MeetingStatusCompleted, m2.Status)
	assert.Contains(t, m2.ChairSummary, "Error generating summary:")

	// the exchange survives the rerun, carrying what the chair could give
	require.Len(t, m2.FollowUps, 1)
	assert.Equal(t, fu.ID, m2.FollowUps[0].ID)
	assert.Equal(t, fu.Question, m2.FollowUps[0].Question)
	assert.Contains(t, m2.FollowUps[0].Answer, "Error generating response:")
	assert.Equal(t, 2, m2.FollowUps[0].Version)
}

func TestRestore_RevertsToHistoricalVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we IPO next year?")
	firstSummary := m.ChairSummary

	env.mock.WithModelResponse(chairModel,
		`{"summary":"Second thoughts prevail.","recommendation":"Wait for better conditions."}`)
	_, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)

	restored, err := env.orch.Restore(ctx, m.ID, 1, env.userID)
	require.NoError(t, err)

	assert.Equal(t, 1, restored.CurrentVersion)
	assert.Equal(t, firstSummary, restored.ChairSummary)
	assert.Equal(t, database.MeetingStatusCompleted, restored.Status)
	require.NotNil(t, restored.RestoredBy)
	assert.Equal(t, env.userID, *restored.RestoredBy)

	// both versions remain in history, so the restore is reversible
	assert.True(t, len(restored.History) >= 2)
}

func TestRestore_UnknownVersion(t *testing.T) {
	env := newTestEnv(t)
	m := env.hold(t, "Should we rebrand?")

	_, err := env.orch.Restore(context.Background(), m.ID, 7, env.userID)
	require.Error(t, err)
	assert.Equal(t, types.VERSION_NOT_FOUND, types.CodeOf(err))
}

func TestRegenerateAfterRestore_NeverReusesVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we switch cloud providers?")

	_, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)

	_, err = env.orch.Restore(ctx, m.ID, 1, env.userID)
	require.NoError(t, err)

	m3, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)
	assert.Equal(t, 3, m3.CurrentVersion)
}

func TestHistory_AscendingAndIncludesCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we double the sales team?")

	_, err := env.orch.Regenerate(ctx, m.ID, env.userID)
	require.NoError(t, err)

	history, err := env.orch.History(ctx, m.ID, env.userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Version)
	assert.Equal(t, 2, history[1].Version)
}

func TestAddFollowUp_RequiresCompletedMeeting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m := &database.Meeting{UserID: env.userID, Question: "In flight"}
	require.NoError(t, env.meetings.Create(ctx, m))

	_, err := env.orch.AddFollowUp(ctx, m.ID, env.userID, "Too early?")
	require.Error(t, err)
	assert.Equal(t, types.MEETING_NOT_COMPLETE, types.CodeOf(err))
}

func TestAddFollowUp_EmptyQuestion(t *testing.T) {
	env := newTestEnv(t)
	m := env.hold(t, "Should we sponsor the conference?")

	_, err := env.orch.AddFollowUp(context.Background(), m.ID, env.userID, "")
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}

func TestAddFollowUp_PersistsExchange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we localize the product?")
	baseTokens := m.TotalTokensUsed
	baseCost := m.TotalCostUSD

	env.mock.WithModelResponse(chairModel, "Start with Japanese and German.")
	fu, err := env.orch.AddFollowUp(ctx, m.ID, env.userID, "Which languages first?")
	require.NoError(t, err)

	assert.False(t, fu.ID.IsZero())
	assert.Equal(t, "Start with Japanese and German.", fu.Answer)
	assert.Equal(t, 150, fu.TokensUsed)

	stored, err := env.meetings.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, stored.FollowUps, 1)
	assert.Equal(t, fu.ID, stored.FollowUps[0].ID)
	assert.Equal(t, baseTokens+150, stored.TotalTokensUsed)
	assert.Greater(t, stored.TotalCostUSD, baseCost)
}

func TestAddFollowUp_ChairFailureStoresErrorAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we localize the product?")
	baseTokens := m.TotalTokensUsed
	baseCost := m.TotalCostUSD

	env.mock.WithModelError(chairModel, errors.New("rate limited"))
	fu, err := env.orch.AddFollowUp(ctx, m.ID, env.userID, "Which languages first?")
	require.NoError(t, err)

	assert.Contains(t, fu.Answer, "Error generating response:")
	assert.Contains(t, fu.Answer, "rate limited")
	assert.Zero(t, fu.TokensUsed)

	stored, err := env.meetings.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, stored.FollowUps, 1)
	assert.Equal(t, fu.Question, stored.FollowUps[0].Question)
	assert.Equal(t, fu.Answer, stored.FollowUps[0].Answer)
	assert.Equal(t, baseTokens, stored.TotalTokensUsed)
	assert.Equal(t, baseCost, stored.TotalCostUSD)
}

func TestAttachAndRemoveFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we renegotiate the office lease?")
	f := env.seedFile(t, env.userID, "lease.txt")

	m2, err := env.orch.AttachFile(ctx, m.ID, env.userID, f.ID)
	require.NoError(t, err)
	require.Len(t, m2.AttachedFiles, 1)

	// attaching again is a no-op
	m3, err := env.orch.AttachFile(ctx, m.ID, env.userID, f.ID)
	require.NoError(t, err)
	assert.Len(t, m3.AttachedFiles, 1)

	m4, err := env.orch.RemoveFile(ctx, m.ID, env.userID, f.ID)
	require.NoError(t, err)
	assert.Empty(t, m4.AttachedFiles)
}

func TestAttachFile_RejectsForeignFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.hold(t, "Should we outsource support?")

	other := &database.User{Email: "other@example.com", Username: "other"}
	require.NoError(t, env.users.Create(ctx, other))
	f := env.seedFile(t, other.ID, "vendor-quotes.txt")

	_, err := env.orch.AttachFile(ctx, m.ID, env.userID, f.ID)
	require.Error(t, err)
	assert.Equal(t, types.NOT_AUTHORIZED, types.CodeOf(err))
}
