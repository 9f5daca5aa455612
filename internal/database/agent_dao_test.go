package database

import (
	"context"
	"errors"
	"testing"

	"github.com/prototypeforge/aicxo/internal/types"
)

func TestCreateAgent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewAgentDAO(db)
	userID := seedUser(t, db, "agents@example.com", "agents")

	agent := &Agent{
		Name:         "Quinn Vega",
		Role:         "CMO",
		SystemPrompt: "You are a marketing executive.",
		Weights:      Weights{Finance: 0.4, Technology: 0.2, Operations: 0.3, PeopleHR: 0.5, Logistics: 0.1},
		Model:        "gpt-4o",
		AvatarColor:  "#22d3ee",
		IsActive:     true,
		CreatedBy:    userID,
	}

	if err := dao.Create(ctx, agent); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if agent.ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}

	retrieved, err := dao.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Name != "Quinn Vega" {
		t.Errorf("expected name Quinn Vega, got %s", retrieved.Name)
	}
	if retrieved.Weights != agent.Weights {
		t.Errorf("weights did not round-trip: %+v", retrieved.Weights)
	}
	if retrieved.UpdatedAt != nil {
		t.Error("expected nil UpdatedAt on a fresh agent")
	}
}

func TestCreateAgent_DefaultsWeights(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewAgentDAO(db)
	userID := seedUser(t, db, "weights@example.com", "weights")

	agent := &Agent{Name: "No Weights", Role: "Advisor", SystemPrompt: "p", Model: "gpt-4o-mini", CreatedBy: userID}
	if err := dao.Create(ctx, agent); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := dao.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Weights != DefaultWeights() {
		t.Errorf("expected default weights, got %+v", retrieved.Weights)
	}
}

func TestGetAgent_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewAgentDAO(db).GetByID(context.Background(), types.NewID())
	if types.CodeOf(err) != types.AGENT_NOT_FOUND {
		t.Errorf("expected AGENT_NOT_FOUND, got %v", err)
	}
}

func TestListAgents_ActiveOnly(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewAgentDAO(db)
	userID := seedUser(t, db, "list@example.com", "list")

	active := seedAgent(t, db, userID, "Active One", "CFO")
	inactive := seedAgent(t, db, userID, "Inactive One", "CTO")
	if err := dao.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	agents, err := dao.List(ctx, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, a := range agents {
		if a.ID == inactive.ID {
			t.Error("inactive agent returned from active-only list")
		}
	}

	all, err := dao.List(ctx, false)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != len(agents)+1 {
		t.Errorf("expected full list to have one more agent than active list")
	}

	_ = active
}

func TestUpdateAgent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewAgentDAO(db)
	userID := seedUser(t, db, "update@example.com", "update")
	agent := seedAgent(t, db, userID, "Before", "CFO")

	agent.Name = "After"
	agent.Model = "gpt-4o"
	if err := dao.Update(ctx, agent); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, err := dao.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Name != "After" || retrieved.Model != "gpt-4o" {
		t.Errorf("update did not persist: %+v", retrieved)
	}
	if retrieved.UpdatedAt == nil {
		t.Error("expected UpdatedAt to be set after update")
	}
}

func TestUpdateAgent_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	agent := &Agent{ID: types.NewID(), Name: "Ghost", Role: "None", SystemPrompt: "p"}
	err := NewAgentDAO(db).Update(context.Background(), agent)
	if types.CodeOf(err) != types.AGENT_NOT_FOUND {
		t.Errorf("expected AGENT_NOT_FOUND, got %v", err)
	}
}

func TestDeleteAgent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewAgentDAO(db)
	userID := seedUser(t, db, "delete@example.com", "delete")
	agent := seedAgent(t, db, userID, "Doomed", "CFO")

	if err := dao.Delete(ctx, agent.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := dao.GetByID(ctx, agent.ID)
	if types.CodeOf(err) != types.AGENT_NOT_FOUND {
		t.Errorf("expected AGENT_NOT_FOUND after delete, got %v", err)
	}
}

func TestGetChair(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	dao := NewAgentDAO(db)

	// Migrations seed a chair; deactivate it to test the no-chair path
	seeded, err := dao.GetChair(ctx)
	if err != nil {
		t.Fatalf("GetChair failed: %v", err)
	}
	if seeded == nil {
		t.Fatal("expected seeded chair")
	}

	if err := dao.SetActive(ctx, seeded.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	chair, err := dao.GetChair(ctx)
	if err != nil {
		t.Fatalf("GetChair failed: %v", err)
	}
	if chair != nil {
		t.Errorf("expected nil chair when none is active, got %+v", chair)
	}
}

func TestBoardErrorMatching(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewAgentDAO(db).GetByID(context.Background(), types.NewID())

	if !errors.Is(err, types.NewError(types.AGENT_NOT_FOUND, "")) {
		t.Error("expected errors.Is to match by code")
	}
}
