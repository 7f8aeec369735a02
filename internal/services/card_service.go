package services

import (
	"fmt"
	"log"

	"cardmarket/internal/models"
	"cardmarket/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// EventPublisher broadcasts catalog lifecycle events. Implementations must be
// safe for concurrent use. A nil publisher disables events.
type EventPublisher interface {
	PublishCatalogEvent(event string, payload map[string]interface{}) error
}

// CardService handles business logic for the card catalog: input validation,
// derived fields (id, timestamps, remaining supply) and the CRUD contract
// over the repository. Validation always runs before any store mutation, so a
// rejected request leaves the catalog untouched.
type CardService struct {
	repo     repositories.CardRepository
	events   EventPublisher
	validate *validator.Validate
	clock    Clock
	ids      IDGenerator
}

// NewCardService creates a new CardService with the system clock and the
// default id generator.
func NewCardService(repo repositories.CardRepository, events EventPublisher) *CardService {
	return &CardService{
		repo:     repo,
		events:   events,
		validate: validator.New(),
		clock:    SystemClock(),
		ids:      RandomIDGenerator(),
	}
}

// WithClock overrides the service clock. Used by tests to pin timestamps.
func (s *CardService) WithClock(clock Clock) *CardService {
	s.clock = clock
	return s
}

// WithIDGenerator overrides the id generator. Used by tests to assert exact
// ids.
func (s *CardService) WithIDGenerator(ids IDGenerator) *CardService {
	s.ids = ids
	return s
}

// ListCards returns the catalog snapshot in insertion order.
func (s *CardService) ListCards() ([]models.Card, error) {
	return s.repo.GetAll()
}

// GetCard retrieves a single card by its ID.
func (s *CardService) GetCard(id string) (*models.Card, error) {
	return s.repo.GetByID(id)
}

// CreateCard validates the payload and appends a new card to the catalog.
// The creator identity comes from the request context, not the payload.
func (s *CardService) CreateCard(req *models.CreateCardRequest, creatorID string) (*models.Card, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	now := s.clock.Now()
	card := &models.Card{
		ID:              s.ids.NewID(),
		Name:            req.Name,
		Description:     req.Description,
		FrontImageURL:   req.FrontImageURL,
		BackImageURL:    req.BackImageURL,
		Price:           *req.Price,
		TotalSupply:     req.TotalSupply,
		RemainingSupply: req.TotalSupply,
		Category:        req.Category,
		CreatorID:       creatorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if card.Category == "" {
		card.Category = models.DefaultCategory
	}

	if err := s.repo.Create(card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.publish("card.created", card)
	return card, nil
}

// UpdateCard merges the provided fields over the stored card. Unset fields
// keep their prior values; updatedAt is always refreshed server-side.
func (s *CardService) UpdateCard(id string, req *models.UpdateCardRequest) (*models.Card, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		card.Name = *req.Name
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.FrontImageURL != nil {
		card.FrontImageURL = *req.FrontImageURL
	}
	if req.BackImageURL != nil {
		card.BackImageURL = *req.BackImageURL
	}
	if req.Price != nil {
		card.Price = *req.Price
	}
	if req.TotalSupply != nil {
		card.TotalSupply = *req.TotalSupply
	}
	if req.Category != nil {
		card.Category = *req.Category
	}
	card.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(card); err != nil {
		return nil, fmt.Errorf("failed to update card %s: %w", id, err)
	}

	s.publish("card.updated", card)
	return card, nil
}

// DeleteCard removes a card and returns the removed entity as confirmation.
func (s *CardService) DeleteCard(id string) (*models.Card, error) {
	card, err := s.repo.Delete(id)
	if err != nil {
		return nil, err
	}

	s.publish("card.deleted", card)
	return card, nil
}

// publish sends a catalog event. Events are best-effort: the store is already
// consistent, so a publish failure is logged and never propagated.
func (s *CardService) publish(event string, card *models.Card) {
	if s.events == nil {
		return
	}
	payload := map[string]interface{}{
		"event":       event,
		"cardId":      card.ID,
		"name":        card.Name,
		"totalSupply": card.TotalSupply,
	}
	if err := s.events.PublishCatalogEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for card %s: %v", event, card.ID, err)
	}
}
