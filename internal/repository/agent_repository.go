package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/ticket-desk/internal/domain"
)

// AgentRepository resolves agents by identifier.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	List(ctx context.Context) ([]domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the Postgres-backed repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (name, email, employee_id, department, active_flag)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		agent.Name,
		agent.Email,
		agent.EmployeeID,
		agent.Department,
		agent.Active,
	).Scan(&agent.ID)
	return translatePgError(err)
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	const query = `
        SELECT id, name, email, employee_id, department, active_flag
        FROM agents WHERE id=$1`

	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.EmployeeID,
		&agent.Department,
		&agent.Active,
	); err != nil {
		return nil, translatePgError(err)
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context) ([]domain.Agent, error) {
	const query = `
        SELECT id, name, email, employee_id, department, active_flag
        FROM agents ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.EmployeeID, &agent.Department, &agent.Active); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}
