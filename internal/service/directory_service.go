package service

import (
	"context"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/repository"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

// DirectoryService exposes read access to agents and categories.
type DirectoryService struct {
	agents     repository.AgentRepository
	categories repository.CategoryRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(agents repository.AgentRepository, categories repository.CategoryRepository) *DirectoryService {
	return &DirectoryService{agents: agents, categories: categories}
}

func (s *DirectoryService) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return agents, nil
}

func (s *DirectoryService) GetAgent(ctx context.Context, id int64) (*domain.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "agent", map[string]any{"id": id})
	}
	return agent, nil
}

func (s *DirectoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return categories, nil
}

func (s *DirectoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "category", map[string]any{"id": id})
	}
	return category, nil
}
