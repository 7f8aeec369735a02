package repositories

import (
	"errors"

	"cardmarket/internal/models"
)

// ErrCardNotFound reports that no card matches the requested id. Callers
// check it with errors.Is to translate the failure into a 404.
var ErrCardNotFound = errors.New("card not found")

// CardRepository defines the interface for catalog data access.
type CardRepository interface {
	// GetAll returns the catalog snapshot in insertion order.
	GetAll() ([]models.Card, error)
	GetByID(id string) (*models.Card, error)
	// Create appends the card. Id uniqueness is the caller's responsibility.
	Create(card *models.Card) error
	// Update replaces the stored entity matching card.ID.
	Update(card *models.Card) error
	// Delete removes the card and returns the removed entity.
	Delete(id string) (*models.Card, error)
}
