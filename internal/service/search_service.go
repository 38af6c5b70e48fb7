package service

import (
	"context"
	"strings"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/repository"
)

// SearchCriteria narrows a ticket search. Nil fields and a blank keyword
// are ignored; every supplied field must match.
type SearchCriteria struct {
	Keyword    string
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	CategoryID *int64
	AgentID    *int64
	CustomerID *int64
}

// SearchService filters the ticket collection by arbitrary criteria.
type SearchService struct {
	tickets repository.TicketRepository
}

// NewSearchService constructs the service.
func NewSearchService(tickets repository.TicketRepository) *SearchService {
	return &SearchService{tickets: tickets}
}

// Search scans every ticket in store order and keeps those matching all
// criteria. Keyword matching is a case-insensitive substring test on the
// title or description.
func (s *SearchService) Search(ctx context.Context, criteria SearchCriteria) ([]domain.Ticket, error) {
	if criteria.Status != nil && !criteria.Status.IsValid() {
		return nil, invalidStatus(*criteria.Status)
	}
	if criteria.Priority != nil && !criteria.Priority.IsValid() {
		return nil, invalidPriority(*criteria.Priority)
	}

	keyword := strings.TrimSpace(criteria.Keyword)
	all := s.tickets.FindAll(ctx)
	result := make([]domain.Ticket, 0, len(all))
	for i := range all {
		ticket := &all[i]
		if keyword != "" && !ticket.Matches(keyword) {
			continue
		}
		if criteria.Status != nil && ticket.Status != *criteria.Status {
			continue
		}
		if criteria.Priority != nil && ticket.Priority != *criteria.Priority {
			continue
		}
		if criteria.CategoryID != nil && ticket.CategoryID != *criteria.CategoryID {
			continue
		}
		if criteria.AgentID != nil && !ticket.AssignedTo(*criteria.AgentID) {
			continue
		}
		if criteria.CustomerID != nil && ticket.CustomerID != *criteria.CustomerID {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}
