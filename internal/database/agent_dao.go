package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prototypeforge/aicxo/internal/types"
)

// AgentDAO provides database operations for board agents
type AgentDAO interface {
	// Create creates a new agent
	Create(ctx context.Context, agent *Agent) error

	// GetByID retrieves an agent by ID
	GetByID(ctx context.Context, id types.ID) (*Agent, error)

	// List lists all agents, optionally restricted to active ones
	List(ctx context.Context, activeOnly bool) ([]*Agent, error)

	// GetChair returns the configured chair agent, or nil if none exists
	GetChair(ctx context.Context) (*Agent, error)

	// Update updates an agent
	Update(ctx context.Context, agent *Agent) error

	// SetActive toggles an agent's active flag
	SetActive(ctx context.Context, id types.ID, active bool) error

	// Delete deletes an agent
	Delete(ctx context.Context, id types.ID) error
}

// agentDAO implements AgentDAO
type agentDAO struct {
	db *DB
}

// NewAgentDAO creates a new agent DAO
func NewAgentDAO(db *DB) AgentDAO {
	return &agentDAO{db: db}
}

const agentColumns = `id, name, role, system_prompt, weights, model, avatar_color,
	is_active, is_chair, created_by, created_at, updated_at`

// Create creates a new agent
func (d *agentDAO) Create(ctx context.Context, agent *Agent) error {
	if agent.ID.IsZero() {
		agent.ID = types.NewID()
	}
	if agent.Weights == (Weights{}) {
		agent.Weights = DefaultWeights()
	}

	weightsJSON, err := json.Marshal(agent.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	query := `
		INSERT INTO agents (
			id, name, role, system_prompt, weights, model, avatar_color,
			is_active, is_chair, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err = d.db.conn.ExecContext(
		ctx, query,
		agent.ID,
		agent.Name,
		agent.Role,
		agent.SystemPrompt,
		string(weightsJSON),
		agent.Model,
		agent.AvatarColor,
		agent.IsActive,
		agent.IsChair,
		agent.CreatedBy,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create agent", err)
	}

	return nil
}

// GetByID retrieves an agent by ID
func (d *agentDAO) GetByID(ctx context.Context, id types.ID) (*Agent, error) {
	query := fmt.Sprintf("SELECT %s FROM agents WHERE id = ?", agentColumns)

	agent, err := scanAgent(d.db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.AGENT_NOT_FOUND, fmt.Sprintf("agent not found: %s", id))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get agent", err)
	}

	return agent, nil
}

// List lists all agents, optionally restricted to active ones
func (d *agentDAO) List(ctx context.Context, activeOnly bool) ([]*Agent, error) {
	query := fmt.Sprintf("SELECT %s FROM agents", agentColumns)
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY created_at"

	rows, err := d.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list agents", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan agent", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating agents", err)
	}

	return agents, nil
}

// GetChair returns the configured chair agent, or nil if none exists
func (d *agentDAO) GetChair(ctx context.Context) (*Agent, error) {
	query := fmt.Sprintf("SELECT %s FROM agents WHERE is_chair = 1 AND is_active = 1 LIMIT 1", agentColumns)

	agent, err := scanAgent(d.db.conn.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get chair", err)
	}

	return agent, nil
}

// Update updates an agent
func (d *agentDAO) Update(ctx context.Context, agent *Agent) error {
	weightsJSON, err := json.Marshal(agent.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	query := `
		UPDATE agents SET
			name = ?, role = ?, system_prompt = ?, weights = ?, model = ?,
			avatar_color = ?, is_active = ?, is_chair = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := d.db.conn.ExecContext(
		ctx, query,
		agent.Name,
		agent.Role,
		agent.SystemPrompt,
		string(weightsJSON),
		agent.Model,
		agent.AvatarColor,
		agent.IsActive,
		agent.IsChair,
		agent.ID,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to update agent", err)
	}

	return requireRowAffected(result, types.AGENT_NOT_FOUND, fmt.Sprintf("agent not found: %s", agent.ID))
}

// SetActive toggles an agent's active flag
func (d *agentDAO) SetActive(ctx context.Context, id types.ID, active bool) error {
	query := "UPDATE agents SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

	result, err := d.db.conn.ExecContext(ctx, query, active, id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to update agent", err)
	}

	return requireRowAffected(result, types.AGENT_NOT_FOUND, fmt.Sprintf("agent not found: %s", id))
}

// Delete deletes an agent
func (d *agentDAO) Delete(ctx context.Context, id types.ID) error {
	result, err := d.db.conn.ExecContext(ctx, "DELETE FROM agents WHERE id = ?", id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete agent", err)
	}

	return requireRowAffected(result, types.AGENT_NOT_FOUND, fmt.Sprintf("agent not found: %s", id))
}

// rowScanner lets a single scan helper serve both QueryRow and Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*Agent, error) {
	var agent Agent
	var weightsJSON string
	var updatedAt sql.NullTime

	err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Role,
		&agent.SystemPrompt,
		&weightsJSON,
		&agent.Model,
		&agent.AvatarColor,
		&agent.IsActive,
		&agent.IsChair,
		&agent.CreatedBy,
		&agent.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if weightsJSON != "" && weightsJSON != "{}" {
		if err := json.Unmarshal([]byte(weightsJSON), &agent.Weights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
		}
	} else {
		agent.Weights = DefaultWeights()
	}

	if updatedAt.Valid {
		t := updatedAt.Time
		agent.UpdatedAt = &t
	}

	return &agent, nil
}

// requireRowAffected converts a zero-row update into a coded not-found error
func requireRowAffected(result sql.Result, code types.ErrorCode, msg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to read affected rows", err)
	}
	if affected == 0 {
		return types.NewError(code, msg)
	}
	return nil
}

// timePtr is a small helper for nullable timestamp columns
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
