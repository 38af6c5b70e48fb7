package dto

import (
	"time"

	"github.com/deskline/ticket-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	CustomerID   int64                 `json:"customer_id"`
	CategoryID   int64                 `json:"category_id"`
	AgentID      *int64                `json:"agent_id"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest payload for PUT /tickets/:id.
type UpdateTicketRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	CustomerID  int64                  `json:"customer_id"`
	CategoryID  int64                  `json:"category_id"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID int64 `json:"agent_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority string `json:"priority"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	AuthorID *int64 `json:"author_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           int64                 `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	CustomerID   int64                 `json:"customer_id"`
	AgentID      *int64                `json:"agent_id"`
	CategoryID   int64                 `json:"category_id"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	AuthorID  *int64    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketSummary maps a ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Title:        ticket.Title,
		CustomerID:   ticket.CustomerID,
		AgentID:      ticket.AgentID,
		CategoryID:   ticket.CategoryID,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ResolvedAt:   ticket.ResolvedAt,
	}
}

// NewTicketDetail maps a ticket with its comment thread.
func NewTicketDetail(ticket *domain.Ticket) TicketDetailResponse {
	comments := make([]CommentResponse, 0, len(ticket.Comments))
	for i := range ticket.Comments {
		comments = append(comments, NewCommentResponse(&ticket.Comments[i]))
	}
	return TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		Comments:      comments,
	}
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// NewTicketSummaries maps a slice of tickets.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i]))
	}
	return items
}
