package service

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is the structured record emitted after every successful
// state-changing atomic unit. Emission happens strictly after commit, never
// before, so a sink can treat every event as durable fact.
type AuditEvent struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	CommunityID uint                   `json:"community_id"`
	UserID      uint                   `json:"user_id"`
	Amount      int64                  `json:"amount,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
	At          time.Time              `json:"at"`
}

type AuditSink interface {
	Emit(AuditEvent)
}

func newAuditEvent(kind string, communityID, userID uint, amount int64, meta map[string]interface{}) AuditEvent {
	return AuditEvent{
		ID:          uuid.NewString(),
		Kind:        kind,
		CommunityID: communityID,
		UserID:      userID,
		Amount:      amount,
		Meta:        meta,
		At:          time.Now().UTC(),
	}
}

// LogSink writes audit events to the process log.
type LogSink struct{}

func (LogSink) Emit(e AuditEvent) {
	log.Printf("[audit] %s community=%d user=%d amount=%d id=%s", e.Kind, e.CommunityID, e.UserID, e.Amount, e.ID)
}

// MultiSink fans one event out to several sinks.
type MultiSink []AuditSink

func (m MultiSink) Emit(e AuditEvent) {
	for _, s := range m {
		s.Emit(e)
	}
}

// NopSink discards events; used by tests that don't assert on auditing.
type NopSink struct{}

func (NopSink) Emit(AuditEvent) {}
