package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/repository"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

func TestCustomerService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(repository.NewMemoryCustomerRepository(), nil)

	ada, err := svc.Create(ctx, CustomerInput{Name: " Ada ", Email: "ada@example.com", Phone: "555-1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", ada.Name)

	_, err = svc.Create(ctx, CustomerInput{Name: "Other", Email: "ADA@example.com"})
	assert.True(t, apperrors.IsConflict(err))

	_, err = svc.Create(ctx, CustomerInput{Name: " "})
	assert.True(t, apperrors.IsValidation(err))

	bob, err := svc.Create(ctx, CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob.ID, CustomerInput{Name: "Bob", Email: "ada@example.com"})
	assert.True(t, apperrors.IsConflict(err))

	updated, err := svc.Update(ctx, bob.ID, CustomerInput{Name: "Robert", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)

	_, err = svc.Update(ctx, 99, CustomerInput{Name: "Ghost"})
	assert.True(t, apperrors.IsNotFound(err))

	found, err := svc.FindByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, found.ID)

	found, err = svc.FindByPhone(ctx, "555-1")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, found.ID)

	_, err = svc.FindByPhone(ctx, "000")
	assert.True(t, apperrors.IsNotFound(err))

	matches, err := svc.SearchByName(ctx, "rob")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, bob.ID, matches[0].ID)

	_, err = svc.SearchByName(ctx, "")
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.FindByEmail(ctx, "")
	assert.True(t, apperrors.IsValidation(err))

	removed, err := svc.Delete(ctx, ada.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.Delete(ctx, ada.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Get(ctx, ada.ID)
	assert.True(t, apperrors.IsNotFound(err))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCustomerService_BlankEmailsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(repository.NewMemoryCustomerRepository(), nil)

	first, err := svc.Create(ctx, CustomerInput{Name: "Walk-in One"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CustomerInput{Name: "Walk-in Two", Email: "  "})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = svc.Update(ctx, second.ID, CustomerInput{Name: "Walk-in Two", Phone: "555-2"})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

type failingCustomers struct {
	repository.CustomerRepository
}

func (failingCustomers) GetByEmail(context.Context, string) (*domain.Customer, error) {
	return nil, errors.New("timeout")
}

func TestCustomerService_LookupFailureIsInternal(t *testing.T) {
	svc := NewCustomerService(failingCustomers{repository.NewMemoryCustomerRepository()}, nil)

	_, err := svc.Create(context.Background(), CustomerInput{Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.ToDomainError(err).Code)
}

func TestDirectoryService(t *testing.T) {
	ctx := context.Background()
	agents := repository.NewMemoryAgentRepository()
	categories := repository.NewMemoryCategoryRepository()
	require.NoError(t, agents.Create(ctx, &domain.Agent{Name: "Sam"}))
	require.NoError(t, categories.Create(ctx, &domain.Category{Name: "Billing"}))

	svc := NewDirectoryService(agents, categories)

	list, err := svc.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetAgent(ctx, 5)
	assert.True(t, apperrors.IsNotFound(err))

	cat, err := svc.GetCategory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Billing", cat.Name)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}
