package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInProgress,
	TicketStatusPending,
	TicketStatusResolved,
	TicketStatusClosed,
}

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ParseTicketStatus accepts any casing and surrounding whitespace.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	s := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.IsValid()
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketPriorities lists every priority from lowest to highest.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// IsValid reports whether p is a known priority.
func (p TicketPriority) IsValid() bool {
	for _, candidate := range TicketPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// ParseTicketPriority accepts any casing and surrounding whitespace.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	p := TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
	return p, p.IsValid()
}

// Ticket is the aggregate for a customer support case. Customer, agent and
// category are held by identifier only.
type Ticket struct {
	ID           int64
	TicketNumber string
	Title        string
	Description  string
	CustomerID   int64
	AgentID      *int64
	CategoryID   int64
	Status       TicketStatus
	Priority     TicketPriority
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	Comments     []Comment
}

// SetStatus overwrites the status. Any status may follow any other. The
// first transition into RESOLVED stamps ResolvedAt; later ones keep it.
func (t *Ticket) SetStatus(status TicketStatus, now time.Time) {
	t.Status = status
	if status == TicketStatusResolved && t.ResolvedAt == nil {
		resolved := now
		t.ResolvedAt = &resolved
	}
	t.Touch(now)
}

// SetPriority overwrites the priority.
func (t *Ticket) SetPriority(priority TicketPriority, now time.Time) {
	t.Priority = priority
	t.Touch(now)
}

// AssignAgent attaches the agent and moves a NEW ticket to IN_PROGRESS.
func (t *Ticket) AssignAgent(agentID int64, now time.Time) {
	id := agentID
	t.AgentID = &id
	t.Touch(now)
	if t.Status == TicketStatusNew {
		t.SetStatus(TicketStatusInProgress, now)
	}
}

// AddComment stamps the comment with now and the ticket's ID and appends it.
func (t *Ticket) AddComment(comment Comment, now time.Time) Comment {
	comment.TicketID = t.ID
	comment.CreatedAt = now
	t.Comments = append(t.Comments, comment)
	t.Touch(now)
	return comment
}

// Touch refreshes UpdatedAt, never letting it fall behind CreatedAt.
func (t *Ticket) Touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// IsAssigned reports whether an agent is attached.
func (t *Ticket) IsAssigned() bool {
	return t.AgentID != nil
}

// AssignedTo reports whether the ticket is assigned to agentID.
func (t *Ticket) AssignedTo(agentID int64) bool {
	return t.AgentID != nil && *t.AgentID == agentID
}

// Matches reports whether keyword occurs in the title or description,
// ignoring case.
func (t *Ticket) Matches(keyword string) bool {
	needle := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// Clone returns a deep copy safe to hand to callers.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AgentID != nil {
		agentID := *t.AgentID
		cp.AgentID = &agentID
	}
	if t.ResolvedAt != nil {
		resolved := *t.ResolvedAt
		cp.ResolvedAt = &resolved
	}
	if t.Comments != nil {
		cp.Comments = make([]Comment, len(t.Comments))
		for i, c := range t.Comments {
			cp.Comments[i] = c.clone()
		}
	}
	return &cp
}
