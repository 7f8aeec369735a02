package repositories

import (
	"fmt"
	"sync"

	"cardmarket/internal/models"
)

// MemoryCardRepository is an in-memory implementation of CardRepository. It
// keeps cards in an ordered slice so listings reflect insertion order, and
// every operation runs atomically under the lock.
type MemoryCardRepository struct {
	cards []models.Card
	mu    sync.RWMutex
}

// NewMemoryCardRepository creates a new instance of MemoryCardRepository.
func NewMemoryCardRepository() *MemoryCardRepository {
	return &MemoryCardRepository{}
}

// GetAll returns all cards in insertion order.
func (r *MemoryCardRepository) GetAll() ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]models.Card, len(r.cards))
	copy(snapshot, r.cards)
	return snapshot, nil
}

// GetByID returns a card by its ID.
func (r *MemoryCardRepository) GetByID(id string) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.cards {
		if r.cards[i].ID == id {
			card := r.cards[i]
			return &card, nil
		}
	}
	return nil, fmt.Errorf("card with ID %s: %w", id, ErrCardNotFound)
}

// Create appends a new card to the catalog.
func (r *MemoryCardRepository) Create(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cards = append(r.cards, *card)
	return nil
}

// Update replaces an existing card in place, preserving its position.
func (r *MemoryCardRepository) Update(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cards {
		if r.cards[i].ID == card.ID {
			r.cards[i] = *card
			return nil
		}
	}
	return fmt.Errorf("card with ID %s: %w", card.ID, ErrCardNotFound)
}

// Delete removes a card by its ID and returns the removed entity.
func (r *MemoryCardRepository) Delete(id string) (*models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cards {
		if r.cards[i].ID == id {
			removed := r.cards[i]
			r.cards = append(r.cards[:i], r.cards[i+1:]...)
			return &removed, nil
		}
	}
	return nil, fmt.Errorf("card with ID %s: %w", id, ErrCardNotFound)
}
