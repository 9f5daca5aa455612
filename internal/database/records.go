package database

import (
	"time"

	"github.com/prototypeforge/aicxo/internal/types"
)

// MeetingStatus represents the current status of a board meeting
type MeetingStatus string

const (
	// MeetingStatusInProgress indicates opinions are still being gathered
	MeetingStatusInProgress MeetingStatus = "in_progress"
	// MeetingStatusCompleted indicates the chair synthesis has been produced
	MeetingStatusCompleted MeetingStatus = "completed"
)

// ExtractionStatus describes the outcome of text extraction for an uploaded file
type ExtractionStatus string

const (
	ExtractionStatusSuccess     ExtractionStatus = "success"
	ExtractionStatusUnsupported ExtractionStatus = "unsupported"
	ExtractionStatusEmpty       ExtractionStatus = "empty"
)

// Weights describes how much emphasis an agent places on each business
// dimension when forming an opinion. Values are fractions, not required
// to sum to one.
type Weights struct {
	Finance    float64 `json:"finance"`
	Technology float64 `json:"technology"`
	Operations float64 `json:"operations"`
	PeopleHR   float64 `json:"people_hr"`
	Logistics  float64 `json:"logistics"`
}

// DefaultWeights returns an evenly balanced weight profile
func DefaultWeights() Weights {
	return Weights{
		Finance:    0.2,
		Technology: 0.2,
		Operations: 0.2,
		PeopleHR:   0.2,
		Logistics:  0.2,
	}
}

// User represents an account that can hire agents and hold meetings
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	IsAdmin     bool       `json:"is_admin"`
	HiredAgents []types.ID `json:"hired_agents"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Agent represents a board member persona backed by an LLM
type Agent struct {
	ID           types.ID   `json:"id"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	SystemPrompt string     `json:"system_prompt"`
	Weights      Weights    `json:"weights"`
	Model        string     `json:"model"`
	AvatarColor  string     `json:"avatar_color"`
	IsActive     bool       `json:"is_active"`
	IsChair      bool       `json:"is_chair"`
	CreatedBy    int64      `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Opinion is a single board member's contribution to a meeting
type Opinion struct {
	ID             types.ID  `json:"id"`
	AgentID        types.ID  `json:"agent_id"`
	AgentName      string    `json:"agent_name"`
	AgentRole      string    `json:"agent_role"`
	Opinion        string    `json:"opinion"`
	Reasoning      string    `json:"reasoning"`
	Confidence     float64   `json:"confidence"`
	WeightsApplied Weights   `json:"weights_applied"`
	ModelUsed      string    `json:"model_used"`
	TokensUsed     int       `json:"tokens_used"`
	Error          bool      `json:"error"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FollowUp is a question asked of the chair after the initial synthesis.
// Follow-ups are re-answered against the new opinions when a meeting is
// regenerated; the id, question, and created_at survive reprocessing.
type FollowUp struct {
	ID         types.ID  `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Version    int       `json:"version"`
	TokensUsed int       `json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// MeetingSnapshot captures a full deliberation version for the history log
type MeetingSnapshot struct {
	Version             int        `json:"version"`
	Opinions            []Opinion  `json:"opinions"`
	ChairSummary        string     `json:"chair_summary"`
	ChairRecommendation string     `json:"chair_recommendation"`
	FollowUps           []FollowUp `json:"follow_ups,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// TraceEvent is one entry in a meeting's diagnostic trace
type TraceEvent struct {
	Stage     string    `json:"stage"`
	AgentName string    `json:"agent_name,omitempty"`
	Model     string    `json:"model,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int64     `json:"duration_ms,omitempty"`
}

// AttachedFile references a company file included in a meeting's context
type AttachedFile struct {
	FileID   types.ID `json:"file_id"`
	Filename string   `json:"filename"`
	MIMEType string   `json:"mime_type"`
	Category string   `json:"category"`
}

// Meeting represents a persisted board deliberation with full version history
type Meeting struct {
	ID                  types.ID          `json:"id"`
	UserID              int64             `json:"user_id"`
	Question            string            `json:"question"`
	Context             string            `json:"context,omitempty"`
	Status              MeetingStatus     `json:"status"`
	Opinions            []Opinion         `json:"opinions"`
	ChairSummary        string            `json:"chair_summary"`
	ChairRecommendation string            `json:"chair_recommendation"`
	CurrentVersion      int               `json:"current_version"`
	History             []MeetingSnapshot `json:"history,omitempty"`
	FollowUps           []FollowUp        `json:"follow_ups,omitempty"`
	AttachedFiles       []AttachedFile    `json:"attached_files,omitempty"`
	Trace               []TraceEvent      `json:"trace,omitempty"`
	TotalTokensUsed     int               `json:"total_tokens_used"`
	TotalCostUSD        float64           `json:"total_cost_usd"`
	CreatedAt           time.Time         `json:"created_at"`
	CompletedAt         *time.Time        `json:"completed_at,omitempty"`
	RegeneratedAt       *time.Time        `json:"regenerated_at,omitempty"`
	RegeneratedBy       *int64            `json:"regenerated_by,omitempty"`
	RestoredAt          *time.Time        `json:"restored_at,omitempty"`
	RestoredBy          *int64            `json:"restored_by,omitempty"`
}

// TokenUsageRecord is one LLM call's token and cost accounting entry
type TokenUsageRecord struct {
	ID               types.ID  `json:"id"`
	UserID           int64     `json:"user_id"`
	AgentID          types.ID  `json:"agent_id"`
	AgentName        string    `json:"agent_name"`
	AgentRole        string    `json:"agent_role"`
	Model            string    `json:"model"`
	MeetingID        types.ID  `json:"meeting_id"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CostUSD          float64   `json:"cost_usd"`
	CreatedAt        time.Time `json:"created_at"`
}

// CompanyFile is an uploaded document available for meeting context
type CompanyFile struct {
	ID               types.ID         `json:"id"`
	UserID           int64            `json:"user_id"`
	Filename         string           `json:"filename"`
	Category         string           `json:"category"`
	MIMEType         string           `json:"mime_type"`
	Content          string           `json:"content"`
	Description      string           `json:"description,omitempty"`
	ExtractionStatus ExtractionStatus `json:"extraction_status"`
	RawData          []byte           `json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
}

// UsageTotals aggregates token and cost figures over a set of usage records
type UsageTotals struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
	Calls            int     `json:"calls"`
}

// AgentUsage groups usage totals under a single agent
type AgentUsage struct {
	AgentID   types.ID    `json:"agent_id"`
	AgentName string      `json:"agent_name"`
	AgentRole string      `json:"agent_role"`
	Totals    UsageTotals `json:"totals"`
}

// ModelUsage groups usage totals under a single model
type ModelUsage struct {
	Model  string      `json:"model"`
	Totals UsageTotals `json:"totals"`
}

// UsageSummary is the full billing breakdown for a user over a time window
type UsageSummary struct {
	UserID   int64        `json:"user_id"`
	Since    time.Time    `json:"since"`
	Until    time.Time    `json:"until"`
	Totals   UsageTotals  `json:"totals"`
	ByAgent  []AgentUsage `json:"by_agent"`
	ByModel  []ModelUsage `json:"by_model"`
	Meetings int          `json:"meetings"`
}
