package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskline/ticket-desk/internal/api/http/handlers"
	"github.com/deskline/ticket-desk/internal/clock"
	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/observability"
	"github.com/deskline/ticket-desk/internal/repository"
	"github.com/deskline/ticket-desk/internal/service"
)

type testServer struct {
	app     *fiber.App
	agentID int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	agents := repository.NewMemoryAgentRepository()
	agent := &domain.Agent{Name: "Sam", Active: true}
	require.NoError(t, agents.Create(ctx, agent))
	categories := repository.NewMemoryCategoryRepository()
	require.NoError(t, categories.Create(ctx, &domain.Category{Name: "Technical"}))

	tickets := repository.NewTicketRepository()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		AgentRepo:  agents,
		Clock:      clock.NewManual(time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)),
	})
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("ticket-desk", "test", nil, metrics),
		Tickets:   handlers.NewTicketsHandler(ticketService, service.NewSearchService(tickets)),
		Customers: handlers.NewCustomersHandler(service.NewCustomerService(repository.NewMemoryCustomerRepository(), nil)),
		Directory: handlers.NewDirectoryHandler(service.NewDirectoryService(agents, categories)),
	})
	return &testServer{app: app, agentID: agent.ID}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

type ticketBody struct {
	ID           int64     `json:"id"`
	TicketNumber string    `json:"ticket_number"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	AgentID      *int64    `json:"agent_id"`
	ResolvedAt   *string   `json:"resolved_at"`
	Comments     []any     `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func createTicket(t *testing.T, s *testServer, title string) ticketBody {
	t.Helper()
	status, env := s.do(t, "POST", "/tickets", map[string]any{
		"title":       title,
		"description": "details for " + title,
		"customer_id": 1,
		"category_id": 1,
	})
	require.Equal(t, fiber.StatusCreated, status)
	return decode[ticketBody](t, env.Data)
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	created := createTicket(t, s, "Cannot login")
	assert.Equal(t, "TKT-20250506070809", created.TicketNumber)
	assert.Equal(t, "NEW", created.Status)
	assert.Equal(t, "MEDIUM", created.Priority)

	path := "/tickets/" + itoa(created.ID)

	status, env := s.do(t, "POST", path+"/assign", map[string]any{"agent_id": s.agentID})
	require.Equal(t, fiber.StatusOK, status)
	assigned := decode[ticketBody](t, env.Data)
	assert.Equal(t, "IN_PROGRESS", assigned.Status)
	require.NotNil(t, assigned.AgentID)

	status, env = s.do(t, "PATCH", path+"/status", map[string]any{"status": "resolved"})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotNil(t, decode[ticketBody](t, env.Data).ResolvedAt)

	status, _ = s.do(t, "PATCH", path+"/priority", map[string]any{"priority": "HIGH"})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, "POST", path+"/comments", map[string]any{"content": "Reset the password"})
	require.Equal(t, fiber.StatusCreated, status)

	status, env = s.do(t, "GET", path, nil)
	require.Equal(t, fiber.StatusOK, status)
	fetched := decode[ticketBody](t, env.Data)
	assert.Equal(t, "HIGH", fetched.Priority)
	assert.Len(t, fetched.Comments, 1)

	status, env = s.do(t, "GET", "/tickets/number/"+created.TicketNumber, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, created.ID, decode[ticketBody](t, env.Data).ID)

	status, _ = s.do(t, "DELETE", path, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, env = s.do(t, "DELETE", path, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCreateTicket_ValidationError(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, "POST", "/tickets", map[string]any{
		"title":       "  ",
		"description": "x",
		"customer_id": 1,
		"category_id": 1,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "title", env.Error.Details["field"])
}

func TestSearchAndListOverHTTP(t *testing.T) {
	s := newTestServer(t)

	login := createTicket(t, s, "Login broken")
	createTicket(t, s, "Printer jam")
	status, _ := s.do(t, "PATCH", "/tickets/"+itoa(login.ID)+"/priority", map[string]any{"priority": "critical"})
	require.Equal(t, fiber.StatusOK, status)

	status, env := s.do(t, "GET", "/tickets/search?keyword=LOGIN&priority=critical", nil)
	require.Equal(t, fiber.StatusOK, status)
	found := decode[[]ticketBody](t, env.Data)
	require.Len(t, found, 1)
	assert.Equal(t, login.ID, found[0].ID)

	status, env = s.do(t, "GET", "/tickets", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]ticketBody](t, env.Data), 2)

	status, env = s.do(t, "GET", "/tickets?status=NEW", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]ticketBody](t, env.Data), 2)

	status, env = s.do(t, "GET", "/tickets?created_from=2025-05-06&created_to=2025-05-07", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]ticketBody](t, env.Data), 2)

	status, _ = s.do(t, "GET", "/tickets?status=NEW&priority=LOW", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, "GET", "/tickets/search?status=UNKNOWN", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, "GET", "/tickets/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCustomerEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, "POST", "/customers", map[string]any{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, fiber.StatusCreated, status)
	created := decode[map[string]any](t, env.Data)

	status, env = s.do(t, "POST", "/customers", map[string]any{"name": "Eve", "email": "ADA@example.com"})
	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, env = s.do(t, "GET", "/customers?name=ad", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	status, _ = s.do(t, "GET", "/customers?email=nobody@example.com", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	id := itoa(int64(created["id"].(float64)))
	status, _ = s.do(t, "PUT", "/customers/"+id, map[string]any{"name": "Ada L", "email": "ada@example.com"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, "DELETE", "/customers/"+id, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = s.do(t, "GET", "/customers/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDirectoryAndHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, "GET", "/agents", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	status, _ = s.do(t, "GET", "/agents/99", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = s.do(t, "GET", "/categories/1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Technical", decode[map[string]any](t, env.Data)["name"])

	status, _ = s.do(t, "GET", "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, "GET", "/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, env = s.do(t, "GET", "/health/metrics", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), "requests")

	status, env = s.do(t, "GET", "/nowhere", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
