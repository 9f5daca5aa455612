package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/prototypeforge/aicxo/internal/config"
	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/llm"
	"github.com/prototypeforge/aicxo/internal/types"
)

// Orchestrator coordinates board deliberations: concurrent opinion
// gathering, chair synthesis, follow-ups, and the versioned
// regenerate/restore lifecycle. All mutation paths serialize per
// meeting through a keyed lock.
type Orchestrator struct {
	meetings database.MeetingDAO
	agents   database.AgentDAO
	users    database.UserDAO
	files    database.FileDAO
	settings database.SettingsDAO
	gen      *generator
	cfg      config.BoardConfig
	logger   *slog.Logger
	tracer   oteltrace.Tracer
	locks    *keyedMutex
}

// Deps bundles the orchestrator's collaborators
type Deps struct {
	Meetings database.MeetingDAO
	Agents   database.AgentDAO
	Users    database.UserDAO
	Files    database.FileDAO
	Usage    database.UsageDAO
	Settings database.SettingsDAO
	Resolver ProviderResolver
	Config   config.BoardConfig
	Logger   *slog.Logger
}

// NewOrchestrator creates a deliberation orchestrator
func NewOrchestrator(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		meetings: deps.Meetings,
		agents:   deps.Agents,
		users:    deps.Users,
		files:    deps.Files,
		settings: deps.Settings,
		gen:      newGenerator(deps.Resolver, deps.Usage, deps.Config, logger),
		cfg:      deps.Config,
		logger:   logger,
		tracer:   otel.Tracer("boardroom/meeting"),
		locks:    newKeyedMutex(),
	}
}

// CreateRequest describes a new deliberation
type CreateRequest struct {
	UserID   int64
	Question string
	Context  string
	FileIDs  []types.ID
}

// Create runs a full deliberation: every active hired board member
// opines in parallel, then the chair synthesizes. Every company document
// the user has uploaded is considered, plus any explicitly requested
// files. The meeting row is persisted before the LLM calls start so a
// crash mid-run leaves an in_progress record rather than nothing.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*database.Meeting, error) {
	ctx, span := o.tracer.Start(ctx, "meeting.create")
	defer span.End()

	if req.Question == "" {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "question cannot be empty")
	}

	user, err := o.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(user.HiredAgents) == 0 {
		return nil, types.NewError(types.NO_AGENTS_HIRED, "no agents hired; hire board members before holding a meeting")
	}

	roster, err := o.resolveRoster(ctx, user.HiredAgents)
	if err != nil {
		return nil, err
	}

	chair, err := o.resolveChair(ctx)
	if err != nil {
		return nil, err
	}

	if err := o.preflight(roster, chair); err != nil {
		return nil, err
	}

	files, attached, err := o.resolveFiles(ctx, user.ID, req.FileIDs)
	if err != nil {
		return nil, err
	}

	m := &database.Meeting{
		UserID:         user.ID,
		Question:       req.Question,
		Context:        req.Context,
		Status:         database.MeetingStatusInProgress,
		CurrentVersion: 1,
		AttachedFiles:  attached,
		CreatedAt:      time.Now().UTC(),
	}
	if err := o.meetings.Create(ctx, m); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("meeting.id", m.ID.String()),
		attribute.Int("meeting.board_size", len(roster)),
	)

	rec := NewTraceRecorder()
	rec.Recordf(StageMeetingStarted, "", "", "board_size=%d", len(roster))

	o.deliberate(ctx, m, roster, chair, files, rec)
	m.Trace = rec.Events()

	if err := o.meetings.Update(ctx, m); err != nil {
		return nil, err
	}

	if err := o.meetings.ArchiveOpinions(ctx, m, m.CurrentVersion); err != nil {
		o.logger.Error("failed to archive opinions", "meeting_id", m.ID, "error", err)
	}

	return m, nil
}

// Get retrieves a meeting the user is allowed to see
func (o *Orchestrator) Get(ctx context.Context, meetingID types.ID, userID int64) (*database.Meeting, error) {
	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns the user's meetings, newest first
func (o *Orchestrator) List(ctx context.Context, userID int64, limit, offset int) ([]*database.Meeting, error) {
	return o.meetings.ListByUser(ctx, userID, limit, offset)
}

// Delete removes a meeting and its usage history
func (o *Orchestrator) Delete(ctx context.Context, meetingID types.ID, userID int64) error {
	unlock := o.locks.Lock(meetingID)
	defer unlock()

	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return err
	}

	return o.meetings.Delete(ctx, meetingID)
}

// Regenerate reruns the full deliberation as a new version. The
// outgoing version is snapshotted into history first, existing
// follow-ups are re-answered against the fresh opinions, and lifetime
// token totals keep accumulating across runs.
func (o *Orchestrator) Regenerate(ctx context.Context, meetingID types.ID, userID int64) (*database.Meeting, error) {
	ctx, span := o.tracer.Start(ctx, "meeting.regenerate")
	defer span.End()

	unlock := o.locks.Lock(meetingID)
	defer unlock()

	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}

	user, err := o.users.GetByID(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	if len(user.HiredAgents) == 0 {
		return nil, types.NewError(types.NO_AGENTS_HIRED, "no agents hired; hire board members before regenerating")
	}

	roster, err := o.resolveRoster(ctx, user.HiredAgents)
	if err != nil {
		return nil, err
	}

	chair, err := o.resolveChair(ctx)
	if err != nil {
		return nil, err
	}

	if err := o.preflight(roster, chair); err != nil {
		return nil, err
	}

	files, err := o.loadAttachedFiles(ctx, m)
	if err != nil {
		return nil, err
	}

	snapshotIfAbsent(m)

	priorFollowUps := m.FollowUps
	m.CurrentVersion = nextVersion(m)
	m.Status = database.MeetingStatusInProgress
	m.Opinions = nil
	m.ChairSummary = ""
	m.ChairRecommendation = ""
	m.FollowUps = nil
	now := time.Now().UTC()
	m.RegeneratedAt = &now
	m.RegeneratedBy = &userID

	span.SetAttributes(
		attribute.String("meeting.id", m.ID.String()),
		attribute.Int("meeting.version", m.CurrentVersion),
	)

	rec := NewTraceRecorder()
	rec.Recordf(StageMeetingStarted, "", "", "regenerate version=%d board_size=%d", m.CurrentVersion, len(roster))

	o.deliberate(ctx, m, roster, chair, files, rec)
	o.reprocessFollowUps(ctx, m, chair, priorFollowUps, rec)
	m.Trace = rec.Events()

	if err := o.meetings.Update(ctx, m); err != nil {
		return nil, err
	}

	if err := o.meetings.ArchiveOpinions(ctx, m, m.CurrentVersion); err != nil {
		o.logger.Error("failed to archive opinions", "meeting_id", m.ID, "error", err)
	}

	return m, nil
}

// Restore makes a historical version the current deliberation again.
// The outgoing version is snapshotted first so restores are reversible.
func (o *Orchestrator) Restore(ctx context.Context, meetingID types.ID, version int, userID int64) (*database.Meeting, error) {
	unlock := o.locks.Lock(meetingID)
	defer unlock()

	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}

	var target *database.MeetingSnapshot
	for i := range m.History {
		if m.History[i].Version == version {
			target = &m.History[i]
			break
		}
	}
	if target == nil {
		return nil, types.NewError(types.VERSION_NOT_FOUND,
			fmt.Sprintf("meeting %s has no version %d", meetingID, version))
	}

	snapshotIfAbsent(m)

	m.Opinions = target.Opinions
	m.ChairSummary = target.ChairSummary
	m.ChairRecommendation = target.ChairRecommendation
	m.FollowUps = target.FollowUps
	m.CurrentVersion = target.Version
	m.Status = database.MeetingStatusCompleted
	now := time.Now().UTC()
	m.RestoredAt = &now
	m.RestoredBy = &userID

	if err := o.meetings.Update(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// History returns every known version of the meeting in ascending
// order, including the current one.
func (o *Orchestrator) History(ctx context.Context, meetingID types.ID, userID int64) ([]database.MeetingSnapshot, error) {
	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}

	snapshots := make([]database.MeetingSnapshot, len(m.History))
	copy(snapshots, m.History)

	if !hasVersion(snapshots, m.CurrentVersion) {
		snapshots = append(snapshots, currentSnapshot(m))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Version < snapshots[j].Version
	})

	return snapshots, nil
}

// AddFollowUp asks the chair a follow-up question about a completed
// deliberation and records the exchange on the meeting.
func (o *Orchestrator) AddFollowUp(ctx context.Context, meetingID types.ID, userID int64, question string) (*database.FollowUp, error) {
	ctx, span := o.tracer.Start(ctx, "meeting.follow_up")
	defer span.End()

	if question == "" {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "follow-up question cannot be empty")
	}

	unlock := o.locks.Lock(meetingID)
	defer unlock()

	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}
	if m.Status != database.MeetingStatusCompleted {
		return nil, types.NewError(types.MEETING_NOT_COMPLETE,
			fmt.Sprintf("meeting %s is %s; follow-ups need a completed deliberation", meetingID, m.Status))
	}

	chair, err := o.resolveChair(ctx)
	if err != nil {
		return nil, err
	}

	rec := NewTraceRecorder()
	answer, tokens, cost, err := o.gen.answerFollowUp(ctx, m, chair, question, rec)
	if err != nil {
		// The exchange is kept; the failure becomes the answer
		answer = fmt.Sprintf("Error generating response: %v", err)
		tokens = 0
		cost = 0
		rec.Record(StageFollowUp, chair.Name, chair.Model, err.Error())
	}

	fu := database.FollowUp{
		ID:         types.NewID(),
		Question:   question,
		Answer:     answer,
		Version:    m.CurrentVersion,
		TokensUsed: tokens,
		CreatedAt:  time.Now().UTC(),
	}

	m.FollowUps = append(m.FollowUps, fu)
	m.TotalTokensUsed += tokens
	m.TotalCostUSD += cost
	m.Trace = append(m.Trace, rec.Events()...)

	if err := o.meetings.Update(ctx, m); err != nil {
		return nil, err
	}

	return &fu, nil
}

// AttachFile adds a company file to the meeting's context for future
// regenerations
func (o *Orchestrator) AttachFile(ctx context.Context, meetingID types.ID, userID int64, fileID types.ID) (*database.Meeting, error) {
	unlock := o.locks.Lock(meetingID)
	defer unlock()

	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}

	file, err := o.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.UserID != m.UserID {
		return nil, types.NewError(types.NOT_AUTHORIZED, "file belongs to a different user")
	}

	for _, af := range m.AttachedFiles {
		if af.FileID == fileID {
			return m, nil
		}
	}

	m.AttachedFiles = append(m.AttachedFiles, database.AttachedFile{
		FileID:   file.ID,
		Filename: file.Filename,
		MIMEType: file.MIMEType,
		Category: file.Category,
	})

	if err := o.meetings.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveFile detaches a company file from the meeting
func (o *Orchestrator) RemoveFile(ctx context.Context, meetingID types.ID, userID int64, fileID types.ID) (*database.Meeting, error) {
	unlock := o.locks.Lock(meetingID)
	defer unlock()

	m, err := o.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, m, userID); err != nil {
		return nil, err
	}

	kept := m.AttachedFiles[:0]
	for _, af := range m.AttachedFiles {
		if af.FileID != fileID {
			kept = append(kept, af)
		}
	}
	m.AttachedFiles = kept

	if err := o.meetings.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// deliberate fans out opinion generation across the roster, then has
// the chair synthesize. Failures degrade in place: a member that cannot
// respond contributes an error-flagged opinion, and a chair that cannot
// synthesize leaves a placeholder summary. The meeting always completes.
func (o *Orchestrator) deliberate(ctx context.Context, m *database.Meeting, roster []*database.Agent, chair *database.Agent, files []*database.CompanyFile, rec *TraceRecorder) {
	opinions := make([]database.Opinion, len(roster))
	costs := make([]float64, len(roster))

	var wg sync.WaitGroup
	for i, agent := range roster {
		wg.Add(1)
		go func(i int, agent *database.Agent) {
			defer wg.Done()
			opinions[i], costs[i] = o.gen.opinionFor(ctx, m, agent, files, rec)
		}(i, agent)
	}
	wg.Wait()

	m.Opinions = opinions
	for i := range opinions {
		m.TotalTokensUsed += opinions[i].TokensUsed
		m.TotalCostUSD += costs[i]
	}

	fields, tokens, cost, err := o.gen.synthesize(ctx, m, chair, rec)
	m.TotalTokensUsed += tokens
	m.TotalCostUSD += cost
	if err != nil {
		o.logger.Warn("chair synthesis failed",
			"meeting_id", m.ID,
			"error", err)
		fields = llm.SynthesisFields{
			Summary:        fmt.Sprintf("Error generating summary: %v", err),
			Recommendation: "Unable to generate recommendation due to an error.",
		}
	}

	m.ChairSummary = fields.Summary
	m.ChairRecommendation = fields.Recommendation
	m.Status = database.MeetingStatusCompleted
	now := time.Now().UTC()
	m.CompletedAt = &now

	rec.Recordf(StageMeetingCompleted, "", "", "tokens=%d cost=%.6f", m.TotalTokensUsed, m.TotalCostUSD)
}

// reprocessFollowUps re-answers prior follow-ups against the new
// deliberation. The id, question, and created_at survive; the answer
// and version are fresh. A failed re-answer keeps the error text as
// the answer rather than dropping the exchange.
func (o *Orchestrator) reprocessFollowUps(ctx context.Context, m *database.Meeting, chair *database.Agent, prior []database.FollowUp, rec *TraceRecorder) {
	if len(prior) == 0 {
		return
	}

	reprocessed := make([]database.FollowUp, 0, len(prior))
	for _, fu := range prior {
		answer, tokens, cost, err := o.gen.answerFollowUp(ctx, m, chair, fu.Question, rec)
		if err != nil {
			answer = fmt.Sprintf("Error generating response: %v", err)
			tokens = 0
			cost = 0
			rec.Record(StageFollowUp, chair.Name, chair.Model, err.Error())
		}
		reprocessed = append(reprocessed, database.FollowUp{
			ID:         fu.ID,
			Question:   fu.Question,
			Answer:     answer,
			Version:    m.CurrentVersion,
			TokensUsed: tokens,
			CreatedAt:  fu.CreatedAt,
		})
		m.TotalTokensUsed += tokens
		m.TotalCostUSD += cost
	}

	m.FollowUps = reprocessed
}

// resolveRoster loads the hired agents and keeps the active non-chair
// ones. The chair synthesizes rather than opines, so a hired chair
// never contributes a member opinion.
func (o *Orchestrator) resolveRoster(ctx context.Context, hired []types.ID) ([]*database.Agent, error) {
	var roster []*database.Agent
	for _, id := range hired {
		agent, err := o.agents.GetByID(ctx, id)
		if err != nil {
			// A fired-then-deleted agent still on the roster is skipped
			if types.CodeOf(err) == types.AGENT_NOT_FOUND {
				continue
			}
			return nil, err
		}
		if agent.IsActive && !agent.IsChair {
			roster = append(roster, agent)
		}
	}

	if len(roster) == 0 {
		return nil, types.NewError(types.NO_ACTIVE_AGENTS, "none of the hired agents are active board members")
	}
	return roster, nil
}

// preflight resolves a chat provider for every model the run will call,
// so a configuration problem surfaces before any record is written or
// any agent is invoked.
func (o *Orchestrator) preflight(roster []*database.Agent, chair *database.Agent) error {
	seen := make(map[string]struct{}, len(roster)+1)
	models := make([]string, 0, len(roster)+1)
	for _, agent := range roster {
		if _, ok := seen[agent.Model]; !ok {
			seen[agent.Model] = struct{}{}
			models = append(models, agent.Model)
		}
	}
	if _, ok := seen[chair.Model]; !ok {
		models = append(models, chair.Model)
	}

	for _, model := range models {
		if _, err := o.gen.resolver.ProviderFor(model); err != nil {
			return err
		}
	}
	return nil
}

// resolveChair returns the stored chair agent, or a default built from
// runtime settings when none is configured
func (o *Orchestrator) resolveChair(ctx context.Context) (*database.Agent, error) {
	chair, err := o.agents.GetChair(ctx)
	if err != nil {
		return nil, err
	}
	if chair != nil {
		return chair, nil
	}

	model := o.cfg.ChairModel
	if _, err := o.settings.Get(ctx, "chair.model", &model); err != nil {
		return nil, err
	}
	name := defaultChairName
	if _, err := o.settings.Get(ctx, "chair.name", &name); err != nil {
		return nil, err
	}

	return &database.Agent{
		Name:         name,
		Role:         chairRole,
		SystemPrompt: defaultChairSystemPrompt,
		Model:        model,
		IsChair:      true,
	}, nil
}

// resolveFiles loads the user's full document library plus any
// explicitly requested files, enforcing ownership on the latter
func (o *Orchestrator) resolveFiles(ctx context.Context, userID int64, fileIDs []types.ID) ([]*database.CompanyFile, []database.AttachedFile, error) {
	listed, err := o.files.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[types.ID]struct{}, len(listed)+len(fileIDs))
	ids := make([]types.ID, 0, len(listed)+len(fileIDs))
	for _, f := range listed {
		seen[f.ID] = struct{}{}
		ids = append(ids, f.ID)
	}
	for _, id := range fileIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	var files []*database.CompanyFile
	var attached []database.AttachedFile

	for _, id := range ids {
		file, err := o.files.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if file.UserID != userID {
			return nil, nil, types.NewError(types.NOT_AUTHORIZED, "file belongs to a different user")
		}
		files = append(files, file)
		attached = append(attached, database.AttachedFile{
			FileID:   file.ID,
			Filename: file.Filename,
			MIMEType: file.MIMEType,
			Category: file.Category,
		})
	}

	return files, attached, nil
}

// loadAttachedFiles re-reads the meeting's attached files for a rerun.
// Files deleted since the original run are silently dropped.
func (o *Orchestrator) loadAttachedFiles(ctx context.Context, m *database.Meeting) ([]*database.CompanyFile, error) {
	var files []*database.CompanyFile
	kept := m.AttachedFiles[:0]

	for _, af := range m.AttachedFiles {
		file, err := o.files.GetByID(ctx, af.FileID)
		if err != nil {
			if types.CodeOf(err) == types.FILE_NOT_FOUND {
				continue
			}
			return nil, err
		}
		files = append(files, file)
		kept = append(kept, af)
	}
	m.AttachedFiles = kept

	return files, nil
}

// authorize permits the meeting owner and admins
func (o *Orchestrator) authorize(ctx context.Context, m *database.Meeting, userID int64) error {
	if m.UserID == userID {
		return nil
	}

	user, err := o.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return types.NewError(types.NOT_AUTHORIZED,
			fmt.Sprintf("user %d cannot access meeting %s", userID, m.ID))
	}
	return nil
}

// snapshotIfAbsent records the current version into history unless a
// snapshot for that version already exists. Restoring an old version
// and regenerating from it must not duplicate entries.
func snapshotIfAbsent(m *database.Meeting) {
	if hasVersion(m.History, m.CurrentVersion) {
		return
	}
	m.History = append(m.History, currentSnapshot(m))
}

func currentSnapshot(m *database.Meeting) database.MeetingSnapshot {
	created := m.CreatedAt
	if m.CompletedAt != nil {
		created = *m.CompletedAt
	}
	return database.MeetingSnapshot{
		Version:             m.CurrentVersion,
		Opinions:            m.Opinions,
		ChairSummary:        m.ChairSummary,
		ChairRecommendation: m.ChairRecommendation,
		FollowUps:           m.FollowUps,
		CreatedAt:           created,
	}
}

func hasVersion(snapshots []database.MeetingSnapshot, version int) bool {
	for _, s := range snapshots {
		if s.Version == version {
			return true
		}
	}
	return false
}

// nextVersion is one past the highest version the meeting has ever had,
// so regenerating after a restore never reuses a version number
func nextVersion(m *database.Meeting) int {
	highest := m.CurrentVersion
	for _, s := range m.History {
		if s.Version > highest {
			highest = s.Version
		}
	}
	return highest + 1
}
