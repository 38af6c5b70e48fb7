package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/repository"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

// CustomerService manages the customer directory.
type CustomerService struct {
	customers repository.CustomerRepository
	logger    *zap.Logger
}

// CustomerInput carries editable customer fields.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{customers: customers, logger: logger}
}

// Create registers a customer. Email addresses are unique ignoring case.
func (s *CustomerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	customer, err := normalizeCustomer(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, customer.Email, 0); err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, mapCustomerError(err, customer)
	}
	s.logger.Info("customer created", zap.Int64("customer_id", customer.ID))
	return customer, nil
}

// Update replaces the editable fields of an existing customer.
func (s *CustomerService) Update(ctx context.Context, id int64, input CustomerInput) (*domain.Customer, error) {
	if id == 0 {
		return nil, apperrors.NewValidationError("customer id is required", nil)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	customer, err := normalizeCustomer(input)
	if err != nil {
		return nil, err
	}
	customer.ID = id
	if err := s.ensureEmailFree(ctx, customer.Email, id); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, mapCustomerError(err, customer)
	}
	s.logger.Info("customer updated", zap.Int64("customer_id", id))
	return customer, nil
}

// Get returns one customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	if id == 0 {
		return nil, apperrors.NewValidationError("customer id is required", nil)
	}
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "customer", map[string]any{"id": id})
	}
	return customer, nil
}

// List returns every customer.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return customers, nil
}

// Delete removes a customer and reports whether it existed.
func (s *CustomerService) Delete(ctx context.Context, id int64) (bool, error) {
	if id == 0 {
		return false, apperrors.NewValidationError("customer id is required", nil)
	}
	removed, err := s.customers.Delete(ctx, id)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return removed, nil
}

// SearchByName matches a case-insensitive substring of the name.
func (s *CustomerService) SearchByName(ctx context.Context, name string) ([]domain.Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	customers, err := s.customers.SearchByName(ctx, name)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return customers, nil
}

// FindByEmail looks a customer up by email ignoring case.
func (s *CustomerService) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	}
	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoError(err, "customer", map[string]any{"email": email})
	}
	return customer, nil
}

// FindByPhone looks a customer up by phone number.
func (s *CustomerService) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperrors.NewValidationError("phone is required", map[string]any{"field": "phone"})
	}
	customer, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		return nil, mapRepoError(err, "customer", map[string]any{"phone": phone})
	}
	return customer, nil
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email string, self int64) error {
	if email == "" {
		return nil
	}
	existing, err := s.customers.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if existing.ID != self {
		return apperrors.NewConflict("email is already in use", map[string]any{"email": email})
	}
	return nil
}

func normalizeCustomer(input CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}
	if customer.Name == "" {
		return nil, apperrors.NewValidationError("customer name is required", map[string]any{"field": "name"})
	}
	return customer, nil
}

func mapCustomerError(err error, customer *domain.Customer) error {
	details := map[string]any{"email": customer.Email}
	if customer.ID != 0 {
		details["id"] = customer.ID
	}
	mapped := mapRepoError(err, "customer", details)
	if apperrors.IsConflict(mapped) {
		return apperrors.NewConflict("email is already in use", details)
	}
	return mapped
}
