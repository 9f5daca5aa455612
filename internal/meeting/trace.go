package meeting

import (
	"fmt"
	"sync"
	"time"

	"github.com/prototypeforge/aicxo/internal/database"
)

// Trace stages recorded during a deliberation run
const (
	StageMeetingStarted   = "meeting_started"
	StageOpinionRequested = "opinion_requested"
	StageOpinionReceived  = "opinion_received"
	StageOpinionFailed    = "opinion_failed"
	StageChairRequested   = "chair_requested"
	StageChairReceived    = "chair_received"
	StageChairFailed      = "chair_failed"
	StageFollowUp         = "follow_up"
	StageMeetingCompleted = "meeting_completed"
)

// TraceRecorder accumulates diagnostic events for one deliberation run.
// Each run gets its own recorder, so concurrent meetings never mix
// their traces. Safe for use from parallel opinion goroutines.
type TraceRecorder struct {
	mu     sync.Mutex
	events []database.TraceEvent
}

// NewTraceRecorder creates an empty recorder
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{}
}

// Record appends one event with the current timestamp
func (t *TraceRecorder) Record(stage, agentName, model, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, database.TraceEvent{
		Stage:     stage,
		AgentName: agentName,
		Model:     model,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}

// Recordf is Record with a formatted detail string
func (t *TraceRecorder) Recordf(stage, agentName, model, format string, args ...any) {
	t.Record(stage, agentName, model, fmt.Sprintf(format, args...))
}

// Timed records a stage event whose duration spans from the call to
// Timed until the returned function is invoked
func (t *TraceRecorder) Timed(stage, agentName, model string) func(detail string) {
	start := time.Now()
	return func(detail string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.events = append(t.events, database.TraceEvent{
			Stage:     stage,
			AgentName: agentName,
			Model:     model,
			Detail:    detail,
			Timestamp: time.Now().UTC(),
			Duration:  time.Since(start).Milliseconds(),
		})
	}
}

// Events returns a copy of the recorded events in order
func (t *TraceRecorder) Events() []database.TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]database.TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}
