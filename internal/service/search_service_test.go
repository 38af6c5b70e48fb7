package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/ticket-desk/internal/domain"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

func seedSearchTickets(t *testing.T, f *fixture) map[string]*domain.Ticket {
	t.Helper()
	ctx := context.Background()

	rows := []struct {
		key         string
		title       string
		description string
		status      domain.TicketStatus
		priority    domain.TicketPriority
		customer    int64
		category    int64
		assign      bool
	}{
		{"login-title", "Cannot LOGIN", "Portal rejects password", domain.TicketStatusResolved, domain.TicketPriorityHigh, 1, 1, true},
		{"login-desc", "Account locked", "Reported a Login issue yesterday", domain.TicketStatusNew, domain.TicketPriorityLow, 2, 1, false},
		{"billing", "Invoice wrong", "Charged twice", domain.TicketStatusResolved, domain.TicketPriorityLow, 1, 2, false},
		{"outage", "Service down", "Nothing loads", domain.TicketStatusPending, domain.TicketPriorityHigh, 3, 3, true},
		{"closed", "Refund", "Please refund", domain.TicketStatusClosed, domain.TicketPriorityCritical, 2, 2, false},
		{"resolved-high", "Slow dashboard", "Takes a minute", domain.TicketStatusResolved, domain.TicketPriorityHigh, 3, 3, false},
		{"medium", "Feature request", "Dark mode", domain.TicketStatusInProgress, domain.TicketPriorityMedium, 1, 3, false},
	}

	out := map[string]*domain.Ticket{}
	for _, row := range rows {
		ticket := f.create(t, TicketDraft{
			Title:       row.title,
			Description: row.description,
			CustomerID:  row.customer,
			CategoryID:  row.category,
			Priority:    row.priority,
		})
		if row.assign {
			_, err := f.svc.Assign(ctx, ticket.ID, f.agentID)
			require.NoError(t, err)
		}
		_, err := f.svc.UpdateStatus(ctx, ticket.ID, row.status)
		require.NoError(t, err)
		out[row.key] = ticket
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestSearch(t *testing.T) {
	f := newFixture(t)
	seeded := seedSearchTickets(t, f)
	search := NewSearchService(f.tickets)

	idsOf := func(keys ...string) []int64 {
		out := make([]int64, 0, len(keys))
		for _, k := range keys {
			out = append(out, seeded[k].ID)
		}
		return out
	}

	tests := []struct {
		name     string
		criteria SearchCriteria
		want     []int64
	}{
		{
			name: "no criteria returns everything in insertion order",
			want: idsOf("login-title", "login-desc", "billing", "outage", "closed", "resolved-high", "medium"),
		},
		{
			name:     "status and priority combine with AND",
			criteria: SearchCriteria{Status: ptr(domain.TicketStatusResolved), Priority: ptr(domain.TicketPriorityHigh)},
			want:     idsOf("login-title", "resolved-high"),
		},
		{
			name:     "keyword matches title or description ignoring case",
			criteria: SearchCriteria{Keyword: "login"},
			want:     idsOf("login-title", "login-desc"),
		},
		{
			name:     "blank keyword is ignored",
			criteria: SearchCriteria{Keyword: "   ", CategoryID: ptr(int64(2))},
			want:     idsOf("billing", "closed"),
		},
		{
			name:     "agent filter",
			criteria: SearchCriteria{AgentID: ptr(f.agentID)},
			want:     idsOf("login-title", "outage"),
		},
		{
			name:     "customer and keyword",
			criteria: SearchCriteria{CustomerID: ptr(int64(1)), Keyword: "twice"},
			want:     idsOf("billing"),
		},
		{
			name:     "no match",
			criteria: SearchCriteria{Keyword: "login", Status: ptr(domain.TicketStatusClosed)},
			want:     []int64{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := search.Search(context.Background(), tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestSearch_InvalidEnumsRejected(t *testing.T) {
	f := newFixture(t)
	search := NewSearchService(f.tickets)

	_, err := search.Search(context.Background(), SearchCriteria{Status: ptr(domain.TicketStatus("LOST"))})
	assert.True(t, apperrors.IsValidation(err))

	_, err = search.Search(context.Background(), SearchCriteria{Priority: ptr(domain.TicketPriority(""))})
	assert.True(t, apperrors.IsValidation(err))
}
