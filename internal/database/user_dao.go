package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prototypeforge/aicxo/internal/types"
)

// UserDAO provides database operations for user accounts and their
// hired board. Hire and fire go through a read-modify-write inside a
// transaction so concurrent roster changes never clobber each other.
type UserDAO interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Hire adds an agent to the user's board if not already present
	Hire(ctx context.Context, userID int64, agentID types.ID) error

	// Fire removes an agent from the user's board
	Fire(ctx context.Context, userID int64, agentID types.ID) error

	// ReplaceHiredAgents atomically replaces the user's full roster
	ReplaceHiredAgents(ctx context.Context, userID int64, agentIDs []types.ID) error
}

// userDAO implements UserDAO
type userDAO struct {
	db *DB
}

// NewUserDAO creates a new user DAO
func NewUserDAO(db *DB) UserDAO {
	return &userDAO{db: db}
}

// Create creates a new user
func (d *userDAO) Create(ctx context.Context, user *User) error {
	if user.HiredAgents == nil {
		user.HiredAgents = []types.ID{}
	}
	hiredJSON, err := json.Marshal(user.HiredAgents)
	if err != nil {
		return fmt.Errorf("failed to marshal hired agents: %w", err)
	}

	query := `
		INSERT INTO users (email, username, is_admin, hired_agents, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	result, err := d.db.conn.ExecContext(ctx, query, user.Email, user.Username, user.IsAdmin, string(hiredJSON))
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to read user id", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID
func (d *userDAO) GetByID(ctx context.Context, id int64) (*User, error) {
	return d.getBy(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by email
func (d *userDAO) GetByEmail(ctx context.Context, email string) (*User, error) {
	return d.getBy(ctx, "email = ?", email)
}

func (d *userDAO) getBy(ctx context.Context, where string, arg any) (*User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, username, is_admin, hired_agents, created_at
		FROM users WHERE %s
	`, where)

	var user User
	var hiredJSON string

	err := d.db.conn.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.IsAdmin,
		&hiredJSON,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.USER_NOT_FOUND, fmt.Sprintf("user not found: %v", arg))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get user", err)
	}

	if hiredJSON != "" {
		if err := json.Unmarshal([]byte(hiredJSON), &user.HiredAgents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hired agents: %w", err)
		}
	}
	if user.HiredAgents == nil {
		user.HiredAgents = []types.ID{}
	}

	return &user, nil
}

// Hire adds an agent to the user's board if not already present
func (d *userDAO) Hire(ctx context.Context, userID int64, agentID types.ID) error {
	return d.mutateRoster(ctx, userID, func(roster []types.ID) []types.ID {
		for _, id := range roster {
			if id == agentID {
				return roster
			}
		}
		return append(roster, agentID)
	})
}

// Fire removes an agent from the user's board
func (d *userDAO) Fire(ctx context.Context, userID int64, agentID types.ID) error {
	return d.mutateRoster(ctx, userID, func(roster []types.ID) []types.ID {
		out := roster[:0]
		for _, id := range roster {
			if id != agentID {
				out = append(out, id)
			}
		}
		return out
	})
}

// ReplaceHiredAgents atomically replaces the user's full roster
func (d *userDAO) ReplaceHiredAgents(ctx context.Context, userID int64, agentIDs []types.ID) error {
	if agentIDs == nil {
		agentIDs = []types.ID{}
	}
	return d.mutateRoster(ctx, userID, func([]types.ID) []types.ID {
		return agentIDs
	})
}

// mutateRoster applies fn to the user's hired_agents list inside a transaction
func (d *userDAO) mutateRoster(ctx context.Context, userID int64, fn func([]types.ID) []types.ID) error {
	return d.db.WithTx(ctx, func(tx *sql.Tx) error {
		var hiredJSON string
		err := tx.QueryRowContext(ctx, "SELECT hired_agents FROM users WHERE id = ?", userID).Scan(&hiredJSON)
		if err == sql.ErrNoRows {
			return types.NewError(types.USER_NOT_FOUND, fmt.Sprintf("user not found: %d", userID))
		}
		if err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to read roster", err)
		}

		var roster []types.ID
		if hiredJSON != "" {
			if err := json.Unmarshal([]byte(hiredJSON), &roster); err != nil {
				return fmt.Errorf("failed to unmarshal hired agents: %w", err)
			}
		}

		roster = fn(roster)
		if roster == nil {
			roster = []types.ID{}
		}

		updated, err := json.Marshal(roster)
		if err != nil {
			return fmt.Errorf("failed to marshal hired agents: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE users SET hired_agents = ? WHERE id = ?", string(updated), userID); err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to update roster", err)
		}

		return nil
	})
}
