package dto

import (
	"time"

	"github.com/deskline/ticket-desk/internal/domain"
)

// CustomerRequest payload for create and update.
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerResponse represents a customer.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomerResponse maps a customer.
func NewCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCustomerResponses maps a slice of customers.
func NewCustomerResponses(customers []domain.Customer) []CustomerResponse {
	items := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, NewCustomerResponse(&customers[i]))
	}
	return items
}

// AgentResponse represents an agent.
type AgentResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

// CategoryResponse represents a ticket category.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewAgentResponse(a *domain.Agent) AgentResponse {
	return AgentResponse{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		EmployeeID: a.EmployeeID,
		Department: a.Department,
		Active:     a.Active,
	}
}

func NewCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}
