package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/ticket-desk/internal/api/dto"
	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/service"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle and search endpoints.
type TicketsHandler struct {
	service *service.TicketService
	search  *service.SearchService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, searchService *service.SearchService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, search: searchService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), service.TicketDraft{
		TicketNumber: req.TicketNumber,
		Title:        req.Title,
		Description:  req.Description,
		CustomerID:   req.CustomerID,
		CategoryID:   req.CategoryID,
		AgentID:      req.AgentID,
		Status:       normalizeStatus(req.Status),
		Priority:     normalizePriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// ListTickets GET /tickets. At most one filter may be given; combined
// filters go through /tickets/search.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	ctx := c.UserContext()

	filters := 0
	for _, key := range []string{"status", "priority", "agent_id", "customer_id", "category_id"} {
		if c.Query(key) != "" {
			filters++
		}
	}
	from, to := c.Query("created_from"), c.Query("created_to")
	if from != "" || to != "" {
		filters++
	}
	if filters > 1 {
		return apperrors.NewValidationError("only one filter is supported; use /tickets/search to combine", nil)
	}

	var (
		tickets []domain.Ticket
		err     error
	)
	switch {
	case c.Query("status") != "":
		tickets, err = h.service.ListByStatus(ctx, normalizeStatus(domain.TicketStatus(c.Query("status"))))
	case c.Query("priority") != "":
		tickets, err = h.service.ListByPriority(ctx, normalizePriority(domain.TicketPriority(c.Query("priority"))))
	case c.Query("agent_id") != "":
		var id int64
		if id, err = parseQueryID(c, "agent_id"); err == nil {
			tickets, err = h.service.ListByAgent(ctx, id)
		}
	case c.Query("customer_id") != "":
		var id int64
		if id, err = parseQueryID(c, "customer_id"); err == nil {
			tickets, err = h.service.ListByCustomer(ctx, id)
		}
	case c.Query("category_id") != "":
		var id int64
		if id, err = parseQueryID(c, "category_id"); err == nil {
			tickets, err = h.service.ListByCategory(ctx, id)
		}
	case from != "" || to != "":
		var start, end time.Time
		if start, err = parseTime("created_from", from); err == nil {
			if end, err = parseTime("created_to", to); err == nil {
				tickets, err = h.service.ListByDateRange(ctx, start, end)
			}
		}
	default:
		tickets = h.service.List(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// SearchTickets GET /tickets/search.
func (h *TicketsHandler) SearchTickets(c *fiber.Ctx) error {
	criteria := service.SearchCriteria{Keyword: c.Query("keyword")}
	if raw := c.Query("status"); raw != "" {
		status := normalizeStatus(domain.TicketStatus(raw))
		criteria.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := normalizePriority(domain.TicketPriority(raw))
		criteria.Priority = &priority
	}
	for key, target := range map[string]**int64{
		"category_id": &criteria.CategoryID,
		"agent_id":    &criteria.AgentID,
		"customer_id": &criteria.CustomerID,
	} {
		if c.Query(key) == "" {
			continue
		}
		id, err := parseQueryID(c, key)
		if err != nil {
			return err
		}
		*target = &id
	}

	tickets, err := h.search.Search(c.UserContext(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// GetTicketByNumber GET /tickets/number/:number.
func (h *TicketsHandler) GetTicketByNumber(c *fiber.Ctx) error {
	ticket, err := h.service.GetByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TicketUpdateInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		CategoryID:  req.CategoryID,
	}
	if req.Status != nil {
		status := normalizeStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := normalizePriority(*req.Priority)
		input.Priority = &priority
	}
	ticket, err := h.service.Update(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	if !h.service.Delete(c.UserContext(), id) {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), id, req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), id, normalizeStatus(domain.TicketStatus(req.Status)))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// UpdatePriority PATCH /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdatePriority(c.UserContext(), id, normalizePriority(domain.TicketPriority(req.Priority)))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), id, service.CommentInput{
		Content:  req.Content,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

func normalizeStatus(s domain.TicketStatus) domain.TicketStatus {
	if s == "" {
		return s
	}
	parsed, _ := domain.ParseTicketStatus(string(s))
	return parsed
}

func normalizePriority(p domain.TicketPriority) domain.TicketPriority {
	if p == "" {
		return p
	}
	parsed, _ := domain.ParseTicketPriority(string(p))
	return parsed
}

func parseParamID(c *fiber.Ctx, key string) (int64, error) {
	return parseID(key, c.Params(key))
}

func parseQueryID(c *fiber.Ctx, key string) (int64, error) {
	return parseID(key, c.Query(key))
}

func parseID(key, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+key, map[string]any{key: raw})
	}
	return id, nil
}

// parseTime accepts RFC3339 timestamps or plain dates. An empty value is
// returned as the zero time so the service reports the missing bound.
func parseTime(key, val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, val); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.NewValidationError("invalid "+key, map[string]any{key: val})
}
