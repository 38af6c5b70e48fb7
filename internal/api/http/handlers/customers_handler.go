package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/ticket-desk/internal/api/dto"
	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/service"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

// CustomersHandler manages the customer directory endpoints.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// Create POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	customer, err := h.service.Create(c.UserContext(), customerInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// List GET /customers. Supports ?name=, ?email= and ?phone= lookups.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	switch {
	case c.Query("email") != "":
		customer, err := h.service.FindByEmail(ctx, c.Query("email"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": []dto.CustomerResponse{dto.NewCustomerResponse(customer)}})
	case c.Query("phone") != "":
		customer, err := h.service.FindByPhone(ctx, c.Query("phone"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": []dto.CustomerResponse{dto.NewCustomerResponse(customer)}})
	}

	var (
		customers []domain.Customer
		err       error
	)
	if name := c.Query("name"); name != "" {
		customers, err = h.service.SearchByName(ctx, name)
	} else {
		customers, err = h.service.List(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponses(customers)})
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	customer, err := h.service.Update(c.UserContext(), id, customerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	removed, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewNotFound("customer", map[string]any{"id": id})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func customerInput(req dto.CustomerRequest) service.CustomerInput {
	return service.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}
