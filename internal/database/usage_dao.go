package database

import (
	"context"
	"fmt"
	"time"

	"github.com/prototypeforge/aicxo/internal/types"
)

// UsageDAO provides database operations for token usage accounting.
// Every LLM call records a row here regardless of whether the reply
// parsed cleanly, so billing reflects tokens actually consumed.
type UsageDAO interface {
	// Record inserts one usage entry
	Record(ctx context.Context, record *TokenUsageRecord) error

	// ListByMeeting returns all usage entries for a meeting, oldest first
	ListByMeeting(ctx context.Context, meetingID types.ID) ([]*TokenUsageRecord, error)

	// MeetingTotals sums tokens and cost across all entries for a meeting
	MeetingTotals(ctx context.Context, meetingID types.ID) (*UsageTotals, error)

	// WindowTotals sums a user's usage over a time window
	WindowTotals(ctx context.Context, userID int64, since, until time.Time) (*UsageTotals, error)

	// Summary builds a full billing breakdown for a user over a time window
	Summary(ctx context.Context, userID int64, since, until time.Time) (*UsageSummary, error)
}

// usageDAO implements UsageDAO
type usageDAO struct {
	db *DB
}

// NewUsageDAO creates a new usage DAO
func NewUsageDAO(db *DB) UsageDAO {
	return &usageDAO{db: db}
}

// Record inserts one usage entry
func (d *usageDAO) Record(ctx context.Context, record *TokenUsageRecord) error {
	if record.ID.IsZero() {
		record.ID = types.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.TotalTokens == 0 {
		record.TotalTokens = record.PromptTokens + record.CompletionTokens
	}

	query := `
		INSERT INTO token_usage (
			id, user_id, agent_id, agent_name, agent_role, model, meeting_id,
			prompt_tokens, completion_tokens, total_tokens, cost_usd, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.conn.ExecContext(
		ctx, query,
		record.ID,
		record.UserID,
		record.AgentID,
		record.AgentName,
		record.AgentRole,
		record.Model,
		record.MeetingID,
		record.PromptTokens,
		record.CompletionTokens,
		record.TotalTokens,
		record.CostUSD,
		record.CreatedAt,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to record token usage", err)
	}

	return nil
}

const usageColumns = `id, user_id, agent_id, agent_name, agent_role, model,
	meeting_id, prompt_tokens, completion_tokens, total_tokens, cost_usd, created_at`

// ListByMeeting returns all usage entries for a meeting, oldest first
func (d *usageDAO) ListByMeeting(ctx context.Context, meetingID types.ID) ([]*TokenUsageRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM token_usage
		WHERE meeting_id = ?
		ORDER BY created_at
	`, usageColumns)

	rows, err := d.db.conn.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list token usage", err)
	}
	defer rows.Close()

	var records []*TokenUsageRecord
	for rows.Next() {
		var r TokenUsageRecord
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.AgentID, &r.AgentName, &r.AgentRole, &r.Model,
			&r.MeetingID, &r.PromptTokens, &r.CompletionTokens, &r.TotalTokens,
			&r.CostUSD, &r.CreatedAt,
		); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan usage record", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating usage records", err)
	}

	return records, nil
}

// MeetingTotals sums tokens and cost across all entries for a meeting
func (d *usageDAO) MeetingTotals(ctx context.Context, meetingID types.ID) (*UsageTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0),
			COUNT(*)
		FROM token_usage
		WHERE meeting_id = ?
	`

	var totals UsageTotals
	err := d.db.conn.QueryRowContext(ctx, query, meetingID).Scan(
		&totals.PromptTokens,
		&totals.CompletionTokens,
		&totals.TotalTokens,
		&totals.CostUSD,
		&totals.Calls,
	)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to sum meeting usage", err)
	}

	return &totals, nil
}

// WindowTotals sums a user's usage over a time window
func (d *usageDAO) WindowTotals(ctx context.Context, userID int64, since, until time.Time) (*UsageTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0),
			COUNT(*)
		FROM token_usage
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
	`

	var totals UsageTotals
	err := d.db.conn.QueryRowContext(ctx, query, userID, since, until).Scan(
		&totals.PromptTokens,
		&totals.CompletionTokens,
		&totals.TotalTokens,
		&totals.CostUSD,
		&totals.Calls,
	)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to sum window usage", err)
	}

	return &totals, nil
}

// Summary builds a full billing breakdown for a user over a time window
func (d *usageDAO) Summary(ctx context.Context, userID int64, since, until time.Time) (*UsageSummary, error) {
	totals, err := d.WindowTotals(ctx, userID, since, until)
	if err != nil {
		return nil, err
	}

	summary := &UsageSummary{
		UserID: userID,
		Since:  since,
		Until:  until,
		Totals: *totals,
	}

	byAgent := `
		SELECT agent_id, agent_name, agent_role,
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0),
			COUNT(*)
		FROM token_usage
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY agent_id, agent_name, agent_role
		ORDER BY SUM(cost_usd) DESC
	`

	rows, err := d.db.conn.QueryContext(ctx, byAgent, userID, since, until)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to group usage by agent", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AgentUsage
		if err := rows.Scan(
			&a.AgentID, &a.AgentName, &a.AgentRole,
			&a.Totals.PromptTokens, &a.Totals.CompletionTokens,
			&a.Totals.TotalTokens, &a.Totals.CostUSD, &a.Totals.Calls,
		); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan agent usage", err)
		}
		summary.ByAgent = append(summary.ByAgent, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating agent usage", err)
	}

	byModel := `
		SELECT model,
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0),
			COUNT(*)
		FROM token_usage
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY model
		ORDER BY SUM(cost_usd) DESC
	`

	modelRows, err := d.db.conn.QueryContext(ctx, byModel, userID, since, until)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to group usage by model", err)
	}
	defer modelRows.Close()

	for modelRows.Next() {
		var m ModelUsage
		if err := modelRows.Scan(
			&m.Model,
			&m.Totals.PromptTokens, &m.Totals.CompletionTokens,
			&m.Totals.TotalTokens, &m.Totals.CostUSD, &m.Totals.Calls,
		); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan model usage", err)
		}
		summary.ByModel = append(summary.ByModel, m)
	}
	if err := modelRows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating model usage", err)
	}

	meetings := `
		SELECT COUNT(DISTINCT meeting_id)
		FROM token_usage
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
	`
	if err := d.db.conn.QueryRowContext(ctx, meetings, userID, since, until).Scan(&summary.Meetings); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to count meetings", err)
	}

	return summary, nil
}
