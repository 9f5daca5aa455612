package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prototypeforge/aicxo/internal/types"
)

// MeetingDAO provides database operations for board meetings
type MeetingDAO interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *Meeting) error

	// GetByID retrieves a meeting by ID
	GetByID(ctx context.Context, id types.ID) (*Meeting, error)

	// ListByUser lists a user's meetings, newest first
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Meeting, error)

	// Update persists the full meeting state, including nested JSON columns
	Update(ctx context.Context, meeting *Meeting) error

	// Delete deletes a meeting and its dependent rows
	Delete(ctx context.Context, id types.ID) error

	// ArchiveOpinions writes a version's opinions to the opinions table
	ArchiveOpinions(ctx context.Context, meeting *Meeting, version int) error
}

// meetingDAO implements MeetingDAO
type meetingDAO struct {
	db *DB
}

// NewMeetingDAO creates a new meeting DAO
func NewMeetingDAO(db *DB) MeetingDAO {
	return &meetingDAO{db: db}
}

const meetingColumns = `id, user_id, question, context, status, opinions,
	chair_summary, chair_recommendation, current_version, history, follow_ups,
	attached_files, trace, total_tokens_used, total_cost_usd, created_at,
	completed_at, regenerated_at, regenerated_by, restored_at, restored_by`

// Create creates a new meeting
func (d *meetingDAO) Create(ctx context.Context, meeting *Meeting) error {
	if meeting.ID.IsZero() {
		meeting.ID = types.NewID()
	}
	if meeting.Status == "" {
		meeting.Status = MeetingStatusInProgress
	}
	if meeting.CurrentVersion == 0 {
		meeting.CurrentVersion = 1
	}

	cols, err := marshalMeetingJSON(meeting)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO meetings (
			id, user_id, question, context, status, opinions,
			chair_summary, chair_recommendation, current_version, history,
			follow_ups, attached_files, trace, total_tokens_used, total_cost_usd,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err = d.db.conn.ExecContext(
		ctx, query,
		meeting.ID,
		meeting.UserID,
		meeting.Question,
		meeting.Context,
		meeting.Status,
		cols.opinions,
		meeting.ChairSummary,
		meeting.ChairRecommendation,
		meeting.CurrentVersion,
		cols.history,
		cols.followUps,
		cols.attachedFiles,
		cols.trace,
		meeting.TotalTokensUsed,
		meeting.TotalCostUSD,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create meeting", err)
	}

	return nil
}

// GetByID retrieves a meeting by ID
func (d *meetingDAO) GetByID(ctx context.Context, id types.ID) (*Meeting, error) {
	query := fmt.Sprintf("SELECT %s FROM meetings WHERE id = ?", meetingColumns)

	meeting, err := scanMeeting(d.db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.MEETING_NOT_FOUND, fmt.Sprintf("meeting not found: %s", id))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get meeting", err)
	}

	return meeting, nil
}

// ListByUser lists a user's meetings, newest first
func (d *meetingDAO) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Meeting, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s FROM meetings
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, meetingColumns)

	rows, err := d.db.conn.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list meetings", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan meeting", err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating meetings", err)
	}

	return meetings, nil
}

// Update persists the full meeting state, including nested JSON columns
func (d *meetingDAO) Update(ctx context.Context, meeting *Meeting) error {
	cols, err := marshalMeetingJSON(meeting)
	if err != nil {
		return err
	}

	query := `
		UPDATE meetings SET
			question = ?, context = ?, status = ?, opinions = ?,
			chair_summary = ?, chair_recommendation = ?, current_version = ?,
			history = ?, follow_ups = ?, attached_files = ?, trace = ?,
			total_tokens_used = ?, total_cost_usd = ?,
			completed_at = ?, regenerated_at = ?, regenerated_by = ?,
			restored_at = ?, restored_by = ?
		WHERE id = ?
	`

	result, err := d.db.conn.ExecContext(
		ctx, query,
		meeting.Question,
		meeting.Context,
		meeting.Status,
		cols.opinions,
		meeting.ChairSummary,
		meeting.ChairRecommendation,
		meeting.CurrentVersion,
		cols.history,
		cols.followUps,
		cols.attachedFiles,
		cols.trace,
		meeting.TotalTokensUsed,
		meeting.TotalCostUSD,
		meeting.CompletedAt,
		meeting.RegeneratedAt,
		meeting.RegeneratedBy,
		meeting.RestoredAt,
		meeting.RestoredBy,
		meeting.ID,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to update meeting", err)
	}

	return requireRowAffected(result, types.MEETING_NOT_FOUND, fmt.Sprintf("meeting not found: %s", meeting.ID))
}

// Delete deletes a meeting and its dependent rows
func (d *meetingDAO) Delete(ctx context.Context, id types.ID) error {
	result, err := d.db.conn.ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete meeting", err)
	}

	return requireRowAffected(result, types.MEETING_NOT_FOUND, fmt.Sprintf("meeting not found: %s", id))
}

// ArchiveOpinions writes a version's opinions to the opinions table so
// per-agent history survives even as the meeting's JSON columns move on
func (d *meetingDAO) ArchiveOpinions(ctx context.Context, meeting *Meeting, version int) error {
	if len(meeting.Opinions) == 0 {
		return nil
	}

	return d.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO opinions (
				id, meeting_id, user_id, version, agent_id, agent_name, agent_role,
				opinion, reasoning, confidence, weights_applied, model_used,
				tokens_used, error, error_detail, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		for _, op := range meeting.Opinions {
			weightsJSON, err := json.Marshal(op.WeightsApplied)
			if err != nil {
				return fmt.Errorf("failed to marshal opinion weights: %w", err)
			}

			id := op.ID
			if id.IsZero() {
				id = types.NewID()
			}

			if _, err := tx.ExecContext(
				ctx, query,
				id,
				meeting.ID,
				meeting.UserID,
				version,
				op.AgentID,
				op.AgentName,
				op.AgentRole,
				op.Opinion,
				op.Reasoning,
				op.Confidence,
				string(weightsJSON),
				op.ModelUsed,
				op.TokensUsed,
				op.Error,
				op.ErrorDetail,
				op.CreatedAt,
			); err != nil {
				return types.WrapError(types.DB_QUERY_FAILED, "failed to archive opinion", err)
			}
		}

		return nil
	})
}

// meetingJSONColumns holds the serialized nested structures for a meeting row
type meetingJSONColumns struct {
	opinions      string
	history       string
	followUps     string
	attachedFiles string
	trace         string
}

func marshalMeetingJSON(meeting *Meeting) (*meetingJSONColumns, error) {
	cols := &meetingJSONColumns{}

	marshal := func(v any, dest *string) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		*dest = string(data)
		return nil
	}

	if meeting.Opinions == nil {
		meeting.Opinions = []Opinion{}
	}
	if meeting.History == nil {
		meeting.History = []MeetingSnapshot{}
	}
	if meeting.FollowUps == nil {
		meeting.FollowUps = []FollowUp{}
	}
	if meeting.AttachedFiles == nil {
		meeting.AttachedFiles = []AttachedFile{}
	}
	if meeting.Trace == nil {
		meeting.Trace = []TraceEvent{}
	}

	if err := marshal(meeting.Opinions, &cols.opinions); err != nil {
		return nil, fmt.Errorf("failed to marshal opinions: %w", err)
	}
	if err := marshal(meeting.History, &cols.history); err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := marshal(meeting.FollowUps, &cols.followUps); err != nil {
		return nil, fmt.Errorf("failed to marshal follow-ups: %w", err)
	}
	if err := marshal(meeting.AttachedFiles, &cols.attachedFiles); err != nil {
		return nil, fmt.Errorf("failed to marshal attached files: %w", err)
	}
	if err := marshal(meeting.Trace, &cols.trace); err != nil {
		return nil, fmt.Errorf("failed to marshal trace: %w", err)
	}

	return cols, nil
}

func scanMeeting(row rowScanner) (*Meeting, error) {
	var meeting Meeting
	var opinionsJSON, historyJSON, followUpsJSON, attachedJSON, traceJSON string
	var completedAt, regeneratedAt, restoredAt sql.NullTime
	var regeneratedBy, restoredBy sql.NullInt64

	err := row.Scan(
		&meeting.ID,
		&meeting.UserID,
		&meeting.Question,
		&meeting.Context,
		&meeting.Status,
		&opinionsJSON,
		&meeting.ChairSummary,
		&meeting.ChairRecommendation,
		&meeting.CurrentVersion,
		&historyJSON,
		&followUpsJSON,
		&attachedJSON,
		&traceJSON,
		&meeting.TotalTokensUsed,
		&meeting.TotalCostUSD,
		&meeting.CreatedAt,
		&completedAt,
		&regeneratedAt,
		&regeneratedBy,
		&restoredAt,
		&restoredBy,
	)
	if err != nil {
		return nil, err
	}

	unmarshal := func(data string, dest any, what string) error {
		if data == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(data), dest); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", what, err)
		}
		return nil
	}

	if err := unmarshal(opinionsJSON, &meeting.Opinions, "opinions"); err != nil {
		return nil, err
	}
	if err := unmarshal(historyJSON, &meeting.History, "history"); err != nil {
		return nil, err
	}
	if err := unmarshal(followUpsJSON, &meeting.FollowUps, "follow-ups"); err != nil {
		return nil, err
	}
	if err := unmarshal(attachedJSON, &meeting.AttachedFiles, "attached files"); err != nil {
		return nil, err
	}
	if err := unmarshal(traceJSON, &meeting.Trace, "trace"); err != nil {
		return nil, err
	}

	meeting.CompletedAt = timePtr(completedAt)
	meeting.RegeneratedAt = timePtr(regeneratedAt)
	meeting.RestoredAt = timePtr(restoredAt)
	if regeneratedBy.Valid {
		v := regeneratedBy.Int64
		meeting.RegeneratedBy = &v
	}
	if restoredBy.Valid {
		v := restoredBy.Int64
		meeting.RestoredBy = &v
	}

	return &meeting, nil
}
