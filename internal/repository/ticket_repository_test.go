package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/ticket-desk/internal/domain"
)

var t0 = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

func draft(number string, status domain.TicketStatus, priority domain.TicketPriority, created time.Time) *domain.Ticket {
	return &domain.Ticket{
		TicketNumber: number,
		Title:        "Title " + number,
		Description:  "Description " + number,
		CustomerID:   1,
		CategoryID:   1,
		Status:       status,
		Priority:     priority,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestTicketRepository_SaveAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	a, err := repo.Save(ctx, draft("A", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)
	b, err := repo.Save(ctx, draft("B", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	require.True(t, repo.Delete(ctx, b.ID))
	c, err := repo.Save(ctx, draft("C", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID, "identifiers are never reused")
}

func TestTicketRepository_SaveRejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	_, err := repo.Save(ctx, draft("TKT-1", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)

	dup := draft("TKT-1", domain.TicketStatusNew, domain.TicketPriorityLow, t0)
	_, err = repo.Save(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Zero(t, dup.ID)
	assert.Len(t, repo.FindAll(ctx), 1)
}

func TestTicketRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	_, err := repo.Update(ctx, &domain.Ticket{ID: 42, TicketNumber: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, &domain.Ticket{TicketNumber: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	saved, err := repo.Save(ctx, draft("TKT-1", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)

	saved.Priority = domain.TicketPriorityCritical
	_, err = repo.Update(ctx, saved)
	require.NoError(t, err)

	got, ok := repo.FindByID(ctx, saved.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketPriorityCritical, got.Priority)
}

func TestTicketRepository_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	saved, err := repo.Save(ctx, draft("TKT-1", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)

	saved.Title = "mutated"
	got, ok := repo.FindByID(ctx, saved.ID)
	require.True(t, ok)
	assert.Equal(t, "Title TKT-1", got.Title)

	got.Title = "mutated again"
	all := repo.FindAll(ctx)
	all[0].Status = domain.TicketStatusClosed
	again, _ := repo.FindByID(ctx, saved.ID)
	assert.Equal(t, "Title TKT-1", again.Title)
	assert.Equal(t, domain.TicketStatusNew, again.Status)
}

func TestTicketRepository_FindByTicketNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	saved, err := repo.Save(ctx, draft("TKT-9", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)

	got, ok := repo.FindByTicketNumber(ctx, "TKT-9")
	require.True(t, ok)
	assert.Equal(t, saved.ID, got.ID)

	_, ok = repo.FindByTicketNumber(ctx, "TKT-0")
	assert.False(t, ok)

	repo.Delete(ctx, saved.ID)
	_, ok = repo.FindByTicketNumber(ctx, "TKT-9")
	assert.False(t, ok)
}

func TestTicketRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	assert.False(t, repo.Delete(ctx, 99))

	saved, err := repo.Save(ctx, draft("TKT-1", domain.TicketStatusNew, domain.TicketPriorityLow, t0))
	require.NoError(t, err)
	assert.True(t, repo.Delete(ctx, saved.ID))

	_, ok := repo.FindByID(ctx, saved.ID)
	assert.False(t, ok)
	assert.False(t, repo.Delete(ctx, saved.ID))
}

func TestTicketRepository_DerivedFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	agent := int64(5)
	rows := []*domain.Ticket{
		draft("T1", domain.TicketStatusNew, domain.TicketPriorityLow, t0),
		draft("T2", domain.TicketStatusResolved, domain.TicketPriorityHigh, t0.Add(time.Hour)),
		draft("T3", domain.TicketStatusResolved, domain.TicketPriorityLow, t0.Add(2*time.Hour)),
		draft("T4", domain.TicketStatusPending, domain.TicketPriorityHigh, t0.Add(3*time.Hour)),
	}
	rows[1].AgentID = &agent
	rows[2].CustomerID = 2
	rows[3].CategoryID = 9
	for _, row := range rows {
		_, err := repo.Save(ctx, row)
		require.NoError(t, err)
	}

	numbers := func(tickets []domain.Ticket) []string {
		out := make([]string, 0, len(tickets))
		for _, tk := range tickets {
			out = append(out, tk.TicketNumber)
		}
		return out
	}

	assert.Equal(t, []string{"T1", "T2", "T3", "T4"}, numbers(repo.FindAll(ctx)))
	assert.Equal(t, []string{"T2", "T3"}, numbers(repo.FindByStatus(ctx, domain.TicketStatusResolved)))
	assert.Equal(t, []string{"T2", "T4"}, numbers(repo.FindByPriority(ctx, domain.TicketPriorityHigh)))
	assert.Equal(t, []string{"T2"}, numbers(repo.FindByAssignedAgent(ctx, agent)))
	assert.Equal(t, []string{"T3"}, numbers(repo.FindByCustomer(ctx, 2)))
	assert.Equal(t, []string{"T4"}, numbers(repo.FindByCategory(ctx, 9)))
	assert.Equal(t, []string{"T2", "T3"}, numbers(repo.FindByCreatedBetween(ctx, t0.Add(time.Hour), t0.Add(2*time.Hour))))
	assert.Empty(t, repo.FindByStatus(ctx, domain.TicketStatusClosed))
}

func TestTicketRepository_NextCommentID(t *testing.T) {
	repo := NewTicketRepository()
	assert.Equal(t, int64(1), repo.NextCommentID())
	assert.Equal(t, int64(2), repo.NextCommentID())
}
