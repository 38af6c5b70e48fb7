// Package seed loads the sample directory used for demos and local runs.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/repository"
	"github.com/deskline/ticket-desk/internal/service"
)

// Customers is the sample customer set.
var Customers = []service.CustomerInput{
	{Name: "John Doe", Email: "john.doe@email.com", Phone: "+256701234567", Address: "Kampala, Uganda"},
	{Name: "Jane Smith", Email: "jane.smith@email.com", Phone: "+256702345678", Address: "Entebbe, Uganda"},
	{Name: "Bob Johnson", Email: "bob.johnson@email.com", Phone: "+256703456789", Address: "Jinja, Uganda"},
}

// Agents is the sample agent roster.
var Agents = []domain.Agent{
	{Name: "Alice Nakato", Email: "alice.nakato@desk.local", EmployeeID: "AG-001", Department: "Technical Support", Active: true},
	{Name: "David Okello", Email: "david.okello@desk.local", EmployeeID: "AG-002", Department: "Billing", Active: true},
}

// Categories is the sample category list.
var Categories = []domain.Category{
	{Name: "Technical", Description: "Connectivity, login and device problems"},
	{Name: "Billing", Description: "Invoices, payments and refunds"},
	{Name: "General", Description: "Anything else"},
}

// Directory groups the stores seeded by Load.
type Directory struct {
	Customers  *service.CustomerService
	Agents     repository.AgentRepository
	Categories repository.CategoryRepository
}

// Result counts what Load inserted.
type Result struct {
	Customers  int
	Agents     int
	Categories int
}

// Load inserts the sample data into every empty store. Stores that already
// hold records are left untouched so repeated runs against Postgres do not
// duplicate rows.
func Load(ctx context.Context, dir Directory, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result

	existingCustomers, err := dir.Customers.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list customers: %w", err)
	}
	if len(existingCustomers) == 0 {
		for _, input := range Customers {
			if _, err := dir.Customers.Create(ctx, input); err != nil {
				return res, fmt.Errorf("seed customer %s: %w", input.Email, err)
			}
			res.Customers++
		}
	}

	existingAgents, err := dir.Agents.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list agents: %w", err)
	}
	if len(existingAgents) == 0 {
		for _, agent := range Agents {
			agent := agent
			if err := dir.Agents.Create(ctx, &agent); err != nil {
				return res, fmt.Errorf("seed agent %s: %w", agent.EmployeeID, err)
			}
			res.Agents++
		}
	}

	existingCategories, err := dir.Categories.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	if len(existingCategories) == 0 {
		for _, category := range Categories {
			category := category
			if err := dir.Categories.Create(ctx, &category); err != nil {
				return res, fmt.Errorf("seed category %s: %w", category.Name, err)
			}
			res.Categories++
		}
	}

	logger.Info("sample data loaded",
		zap.Int("customers", res.Customers),
		zap.Int("agents", res.Agents),
		zap.Int("categories", res.Categories))
	return res, nil
}
