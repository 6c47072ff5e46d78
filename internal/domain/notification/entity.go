package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeJob     Type = "job"
	TypePayment Type = "payment"
	TypeMessage Type = "message"
	TypeProject Type = "project"
	TypeSystem  Type = "system"
)

func (t Type) Valid() bool {
	switch t {
	case TypeJob, TypePayment, TypeMessage, TypeProject, TypeSystem:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities for the display sort; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

// Notification is a delivered event describing a state change relevant to a
// user. Seq is a process-wide insertion sequence number; the canonical order
// of a recipient's notifications is (CreatedAt, Seq) ascending.
type Notification struct {
	ID              uuid.UUID
	RecipientID     uuid.UUID
	Type            Type
	Priority        Priority
	Title           string
	Body            string
	IsRead          bool
	CreatedAt       time.Time
	Seq             uint64
	RelatedEntityID *uuid.UUID
}

// Before reports whether n precedes other in the canonical order.
func (n Notification) Before(other Notification) bool {
	if n.CreatedAt.Equal(other.CreatedAt) {
		return n.Seq < other.Seq
	}
	return n.CreatedAt.Before(other.CreatedAt)
}
