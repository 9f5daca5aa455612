package database

import (
	"context"
	"testing"
	"time"

	"github.com/prototypeforge/aicxo/internal/types"
)

func recordUsage(t *testing.T, dao UsageDAO, userID int64, meetingID, agentID types.ID, name, role, model string, prompt, completion int, cost float64) {
	t.Helper()

	err := dao.Record(context.Background(), &TokenUsageRecord{
		UserID:           userID,
		AgentID:          agentID,
		AgentName:        name,
		AgentRole:        role,
		Model:            model,
		MeetingID:        meetingID,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		CostUSD:          cost,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
}

func TestRecordUsage_Defaults(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewUsageDAO(db)
	userID := seedUser(t, db, "usage@example.com", "usage")
	m := seedMeeting(t, db, userID, "q")

	record := &TokenUsageRecord{
		UserID:           userID,
		AgentID:          types.NewID(),
		AgentName:        "A",
		AgentRole:        "CFO",
		Model:            "gpt-4o-mini",
		MeetingID:        m.ID,
		PromptTokens:     100,
		CompletionTokens: 50,
	}
	if err := dao.Record(ctx, record); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if record.ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if record.TotalTokens != 150 {
		t.Errorf("expected total tokens 150, got %d", record.TotalTokens)
	}
	if record.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be auto-set")
	}
}

func TestMeetingTotals(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewUsageDAO(db)
	userID := seedUser(t, db, "totals@example.com", "totals")
	m := seedMeeting(t, db, userID, "q")
	agentID := types.NewID()

	recordUsage(t, dao, userID, m.ID, agentID, "A", "CFO", "gpt-4o-mini", 100, 50, 0.001)
	recordUsage(t, dao, userID, m.ID, agentID, "A", "CFO", "gpt-4o-mini", 200, 100, 0.002)

	totals, err := dao.MeetingTotals(ctx, m.ID)
	if err != nil {
		t.Fatalf("MeetingTotals failed: %v", err)
	}
	if totals.PromptTokens != 300 || totals.CompletionTokens != 150 || totals.TotalTokens != 450 {
		t.Errorf("unexpected totals: %+v", totals)
	}
	if totals.Calls != 2 {
		t.Errorf("expected 2 calls, got %d", totals.Calls)
	}
	if totals.CostUSD < 0.0029 || totals.CostUSD > 0.0031 {
		t.Errorf("expected cost ~0.003, got %f", totals.CostUSD)
	}
}

func TestWindowTotals_BoundsRespected(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewUsageDAO(db)
	userID := seedUser(t, db, "window@example.com", "window")
	m := seedMeeting(t, db, userID, "q")

	old := &TokenUsageRecord{
		UserID: userID, AgentID: types.NewID(), AgentName: "A", AgentRole: "CFO",
		Model: "gpt-4o-mini", MeetingID: m.ID,
		PromptTokens: 10, CompletionTokens: 10,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -60),
	}
	if err := dao.Record(ctx, old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	recordUsage(t, dao, userID, m.ID, types.NewID(), "A", "CFO", "gpt-4o-mini", 100, 50, 0.001)

	until := time.Now().UTC().Add(time.Hour)
	since := until.AddDate(0, 0, -30)

	totals, err := dao.WindowTotals(ctx, userID, since, until)
	if err != nil {
		t.Fatalf("WindowTotals failed: %v", err)
	}
	if totals.Calls != 1 {
		t.Errorf("expected only the recent record in the window, got %d calls", totals.Calls)
	}
	if totals.TotalTokens != 150 {
		t.Errorf("expected 150 tokens in window, got %d", totals.TotalTokens)
	}
}

func TestUsageSummary_Grouping(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewUsageDAO(db)
	userID := seedUser(t, db, "summary@example.com", "summary")
	m1 := seedMeeting(t, db, userID, "q1")
	m2 := seedMeeting(t, db, userID, "q2")

	cfoID, ctoID := types.NewID(), types.NewID()
	recordUsage(t, dao, userID, m1.ID, cfoID, "Alexandra", "CFO", "gpt-4o-mini", 100, 50, 0.001)
	recordUsage(t, dao, userID, m1.ID, ctoID, "Marcus", "CTO", "gpt-4o", 200, 100, 0.01)
	recordUsage(t, dao, userID, m2.ID, cfoID, "Alexandra", "CFO", "gpt-4o-mini", 100, 50, 0.001)

	until := time.Now().UTC().Add(time.Hour)
	since := until.AddDate(0, 0, -1)

	summary, err := dao.Summary(ctx, userID, since, until)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.Totals.Calls != 3 {
		t.Errorf("expected 3 calls, got %d", summary.Totals.Calls)
	}
	if summary.Meetings != 2 {
		t.Errorf("expected 2 distinct meetings, got %d", summary.Meetings)
	}

	if len(summary.ByAgent) != 2 {
		t.Fatalf("expected 2 agent groups, got %d", len(summary.ByAgent))
	}
	// Most expensive agent first
	if summary.ByAgent[0].AgentName != "Marcus" {
		t.Errorf("expected Marcus first by cost, got %s", summary.ByAgent[0].AgentName)
	}
	for _, a := range summary.ByAgent {
		if a.AgentName == "Alexandra" {
			if a.Totals.Calls != 2 || a.Totals.TotalTokens != 300 {
				t.Errorf("unexpected CFO group: %+v", a.Totals)
			}
		}
	}

	if len(summary.ByModel) != 2 {
		t.Fatalf("expected 2 model groups, got %d", len(summary.ByModel))
	}
	if summary.ByModel[0].Model != "gpt-4o" {
		t.Errorf("expected gpt-4o first by cost, got %s", summary.ByModel[0].Model)
	}
}

func TestSummary_EmptyWindow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "empty@example.com", "empty")

	until := time.Now().UTC()
	summary, err := NewUsageDAO(db).Summary(context.Background(), userID, until.AddDate(0, 0, -1), until)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Totals.Calls != 0 || summary.Meetings != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if len(summary.ByAgent) != 0 || len(summary.ByModel) != 0 {
		t.Errorf("expected no groups, got %+v", summary)
	}
}
