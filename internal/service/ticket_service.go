package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/deskline/ticket-desk/internal/clock"
	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/events"
	"github.com/deskline/ticket-desk/internal/identity"
	"github.com/deskline/ticket-desk/internal/repository"
	apperrors "github.com/deskline/ticket-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Every read-modify-write path
// runs under a single service-wide lock, so operations on the same ticket
// never interleave. Event handlers run while that lock is held and must not
// call back into the service.
type TicketService struct {
	mu         sync.Mutex
	tickets    repository.TicketRepository
	agents     repository.AgentRepository
	numbers    *identity.NumberGenerator
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	AgentRepo  repository.AgentRepository
	Numbers    *identity.NumberGenerator
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketDraft describes ticket creation payload. Zero values mean unset.
type TicketDraft struct {
	TicketNumber string
	Title        string
	Description  string
	CustomerID   int64
	CategoryID   int64
	AgentID      *int64
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	CreatedAt    time.Time
}

// TicketUpdateInput replaces the editable fields of an existing ticket.
// Ticket number, creation time and comments are never touched. Nil status
// or priority keep the stored value.
type TicketUpdateInput struct {
	ID          int64
	Title       string
	Description string
	CustomerID  int64
	CategoryID  int64
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
}

// CommentInput is a comment submitted to a ticket. The creation time is
// always assigned by the service.
type CommentInput struct {
	Content  string
	AuthorID *int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		agents:     deps.AgentRepo,
		numbers:    deps.Numbers,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
	if svc.numbers == nil {
		svc.numbers = identity.NewNumberGenerator("")
	}
	if svc.clock == nil {
		svc.clock = clock.NewSystem()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Create validates the draft, fills defaults and stores a new ticket.
func (s *TicketService) Create(ctx context.Context, draft TicketDraft) (*domain.Ticket, error) {
	if err := validateTicketFields(draft.Title, draft.Description, draft.CustomerID, draft.CategoryID); err != nil {
		return nil, err
	}
	status, err := statusOrDefault(draft.Status, domain.TicketStatusNew)
	if err != nil {
		return nil, err
	}
	priority, err := priorityOrDefault(draft.Priority, domain.TicketPriorityMedium)
	if err != nil {
		return nil, err
	}
	if draft.AgentID != nil {
		if err := s.requireAgent(ctx, *draft.AgentID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	createdAt := draft.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	number, err := s.assignNumber(ctx, strings.TrimSpace(draft.TicketNumber), now)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketNumber: number,
		Title:        strings.TrimSpace(draft.Title),
		Description:  strings.TrimSpace(draft.Description),
		CustomerID:   draft.CustomerID,
		CategoryID:   draft.CategoryID,
		Priority:     priority,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if draft.AgentID != nil {
		agentID := *draft.AgentID
		ticket.AgentID = &agentID
	}
	ticket.SetStatus(status, createdAt)

	saved, err := s.tickets.Save(ctx, ticket)
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticket_number": number})
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", saved.ID),
		zap.String("ticket_number", saved.TicketNumber),
		zap.String("priority", string(saved.Priority)))
	s.publishEvent(ctx, events.EventTicketCreated, saved, events.TicketCreatedPayload{
		CustomerID: saved.CustomerID,
		CategoryID: saved.CategoryID,
		Priority:   saved.Priority,
		Title:      saved.Title,
	})
	return saved, nil
}

// assignNumber returns requested when it is free, or the first free
// candidate derived from the issue time when requested is empty. Callers
// hold s.mu.
func (s *TicketService) assignNumber(ctx context.Context, requested string, issuedAt time.Time) (string, error) {
	if requested != "" {
		if _, taken := s.tickets.FindByTicketNumber(ctx, requested); taken {
			return "", apperrors.NewConflict("ticket number already in use", map[string]any{"ticket_number": requested})
		}
		return requested, nil
	}
	for attempt := 1; ; attempt++ {
		candidate := s.numbers.Candidate(issuedAt, attempt)
		if _, taken := s.tickets.FindByTicketNumber(ctx, candidate); !taken {
			return candidate, nil
		}
	}
}

// Update replaces the editable fields of an existing ticket.
func (s *TicketService) Update(ctx context.Context, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.ID == 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": input.ID})
	}
	if err := validateTicketFields(input.Title, input.Description, input.CustomerID, input.CategoryID); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalidStatus(*input.Status)
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, invalidPriority(*input.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ticket.Title = strings.TrimSpace(input.Title)
	ticket.Description = strings.TrimSpace(input.Description)
	ticket.CustomerID = input.CustomerID
	ticket.CategoryID = input.CategoryID
	if input.Status != nil {
		ticket.SetStatus(*input.Status, now)
	}
	if input.Priority != nil {
		ticket.SetPriority(*input.Priority, now)
	}
	ticket.Touch(now)

	saved, err := s.persist(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket updated", zap.Int64("ticket_id", saved.ID))
	s.publishEvent(ctx, events.EventTicketUpdated, saved, events.TicketUpdatedPayload{
		Title:    saved.Title,
		Status:   saved.Status,
		Priority: saved.Priority,
	})
	return saved, nil
}

// Assign attaches an agent to a ticket. A NEW ticket moves to IN_PROGRESS;
// any other status is kept.
func (s *TicketService) Assign(ctx context.Context, ticketID, agentID int64) (*domain.Ticket, error) {
	if ticketID == 0 {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	if agentID == 0 {
		return nil, apperrors.NewValidationError("agent id is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAgent(ctx, agentID); err != nil {
		return nil, err
	}

	previous := ticket.AgentID
	oldStatus := ticket.Status
	ticket.AssignAgent(agentID, s.clock.Now())

	saved, err := s.persist(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket assigned",
		zap.Int64("ticket_id", saved.ID),
		zap.Int64("agent_id", agentID),
		zap.String("status", string(saved.Status)))
	s.publishEvent(ctx, events.EventTicketAssigned, saved, events.TicketAssignedPayload{
		AgentID:         agentID,
		PreviousAgentID: previous,
		Status:          saved.Status,
	})
	if oldStatus != saved.Status {
		s.publishEvent(ctx, events.EventTicketStatusChanged, saved, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: saved.Status,
		})
	}
	return saved, nil
}

// UpdateStatus overwrites the status. No transition graph is enforced.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) (*domain.Ticket, error) {
	if ticketID == 0 {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	if !status.IsValid() {
		return nil, invalidStatus(status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	ticket.SetStatus(status, s.clock.Now())

	saved, err := s.persist(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket status changed",
		zap.Int64("ticket_id", saved.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(saved.Status)))
	s.publishEvent(ctx, events.EventTicketStatusChanged, saved, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: saved.Status,
	})
	return saved, nil
}

// UpdatePriority overwrites the priority.
func (s *TicketService) UpdatePriority(ctx context.Context, ticketID int64, priority domain.TicketPriority) (*domain.Ticket, error) {
	if ticketID == 0 {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	if !priority.IsValid() {
		return nil, invalidPriority(priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldPriority := ticket.Priority
	ticket.SetPriority(priority, s.clock.Now())

	saved, err := s.persist(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket priority changed",
		zap.Int64("ticket_id", saved.ID),
		zap.String("old_priority", string(oldPriority)),
		zap.String("new_priority", string(saved.Priority)))
	s.publishEvent(ctx, events.EventTicketPriorityChanged, saved, events.TicketPriorityChangedPayload{
		OldPriority: oldPriority,
		NewPriority: saved.Priority,
	})
	return saved, nil
}

// AddComment appends a comment stamped with the current time.
func (s *TicketService) AddComment(ctx context.Context, ticketID int64, input CommentInput) (*domain.Comment, error) {
	if ticketID == 0 {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", map[string]any{"field": "content"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if input.AuthorID != nil {
		if err := s.requireAgent(ctx, *input.AuthorID); err != nil {
			return nil, err
		}
	}

	comment := ticket.AddComment(domain.Comment{
		ID:       s.tickets.NextCommentID(),
		AuthorID: input.AuthorID,
		Content:  content,
	}, s.clock.Now())

	saved, err := s.persist(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket comment added",
		zap.Int64("ticket_id", saved.ID),
		zap.Int64("comment_id", comment.ID))
	s.publishEvent(ctx, events.EventTicketCommentAdded, saved, events.TicketCommentAddedPayload{
		CommentID:   comment.ID,
		AuthorID:    comment.AuthorID,
		BodyPreview: stringPreview(comment.Content, 140),
	})
	return &comment, nil
}

// Delete removes the ticket and reports whether it existed.
func (s *TicketService) Delete(ctx context.Context, ticketID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets.FindByID(ctx, ticketID)
	if !ok || !s.tickets.Delete(ctx, ticketID) {
		return false
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", ticketID))
	s.publishEvent(ctx, events.EventTicketDeleted, ticket, nil)
	return true
}

// GetByID returns the ticket with the given identifier.
func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if id == 0 {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	return s.load(ctx, id)
}

// GetByNumber returns the ticket with the given ticket number.
func (s *TicketService) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperrors.NewValidationError("ticket number is required", nil)
	}
	ticket, ok := s.tickets.FindByTicketNumber(ctx, number)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
	}
	return ticket, nil
}

// List returns every ticket in insertion order.
func (s *TicketService) List(ctx context.Context) []domain.Ticket {
	return s.tickets.FindAll(ctx)
}

func (s *TicketService) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !status.IsValid() {
		return nil, invalidStatus(status)
	}
	return s.tickets.FindByStatus(ctx, status), nil
}

func (s *TicketService) ListByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	if !priority.IsValid() {
		return nil, invalidPriority(priority)
	}
	return s.tickets.FindByPriority(ctx, priority), nil
}

func (s *TicketService) ListByAgent(ctx context.Context, agentID int64) ([]domain.Ticket, error) {
	if agentID == 0 {
		return nil, apperrors.NewValidationError("agent id is required", nil)
	}
	return s.tickets.FindByAssignedAgent(ctx, agentID), nil
}

func (s *TicketService) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Ticket, error) {
	if customerID == 0 {
		return nil, apperrors.NewValidationError("customer id is required", nil)
	}
	return s.tickets.FindByCustomer(ctx, customerID), nil
}

func (s *TicketService) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Ticket, error) {
	if categoryID == 0 {
		return nil, apperrors.NewValidationError("category id is required", nil)
	}
	return s.tickets.FindByCategory(ctx, categoryID), nil
}

// ListByDateRange returns tickets created within [start, end].
func (s *TicketService) ListByDateRange(ctx context.Context, start, end time.Time) ([]domain.Ticket, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.NewValidationError("start and end are required", nil)
	}
	if start.After(end) {
		return nil, apperrors.NewValidationError("start must not be after end", map[string]any{
			"start": start,
			"end":   end,
		})
	}
	return s.tickets.FindByCreatedBetween(ctx, start, end), nil
}

func (s *TicketService) load(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := s.tickets.FindByID(ctx, id)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

func (s *TicketService) persist(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	saved, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"id": ticket.ID})
	}
	return saved, nil
}

func (s *TicketService) requireAgent(ctx context.Context, agentID int64) error {
	if s.agents == nil {
		return apperrors.NewNotFound("agent", map[string]any{"id": agentID})
	}
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		return mapRepoError(err, "agent", map[string]any{"id": agentID})
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, ticket, s.clock.Now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
	}
}

func validateTicketFields(title, description string, customerID, categoryID int64) error {
	switch {
	case strings.TrimSpace(title) == "":
		return apperrors.NewValidationError("ticket title is required", map[string]any{"field": "title"})
	case strings.TrimSpace(description) == "":
		return apperrors.NewValidationError("ticket description is required", map[string]any{"field": "description"})
	case customerID == 0:
		return apperrors.NewValidationError("ticket must have a customer", map[string]any{"field": "customer_id"})
	case categoryID == 0:
		return apperrors.NewValidationError("ticket must have a category", map[string]any{"field": "category_id"})
	}
	return nil
}

func statusOrDefault(status, fallback domain.TicketStatus) (domain.TicketStatus, error) {
	if status == "" {
		return fallback, nil
	}
	if !status.IsValid() {
		return "", invalidStatus(status)
	}
	return status, nil
}

func priorityOrDefault(priority, fallback domain.TicketPriority) (domain.TicketPriority, error) {
	if priority == "" {
		return fallback, nil
	}
	if !priority.IsValid() {
		return "", invalidPriority(priority)
	}
	return priority, nil
}

func invalidStatus(status domain.TicketStatus) error {
	return apperrors.NewValidationError("invalid ticket status", map[string]any{
		"status":  status,
		"allowed": domain.TicketStatuses,
	})
}

func invalidPriority(priority domain.TicketPriority) error {
	return apperrors.NewValidationError("invalid ticket priority", map[string]any{
		"priority": priority,
		"allowed":  domain.TicketPriorities,
	})
}

// mapRepoError translates repository sentinels into domain errors.
func mapRepoError(err error, resource string, details map[string]any) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", details)
	default:
		return apperrors.NewInternalError(err)
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
