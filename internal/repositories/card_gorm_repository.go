package repositories

import (
	"errors"
	"fmt"

	"cardmarket/internal/models"

	"gorm.io/gorm"
)

// GORMCardRepository is a GORM implementation of CardRepository, for
// deployments that want the catalog to survive a restart.
type GORMCardRepository struct {
	db *gorm.DB
}

// NewGORMCardRepository creates a new instance of GORMCardRepository.
func NewGORMCardRepository(db *gorm.DB) *GORMCardRepository {
	return &GORMCardRepository{
		db: db,
	}
}

// GetAll retrieves all cards ordered by their insertion sequence.
func (r *GORMCardRepository) GetAll() ([]models.Card, error) {
	cards := make([]models.Card, 0)
	if err := r.db.Order("seq").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get all cards: %w", err)
	}
	return cards, nil
}

// GetByID retrieves a single card by its ID.
func (r *GORMCardRepository) GetByID(id string) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("card with ID %s: %w", id, ErrCardNotFound)
		}
		return nil, fmt.Errorf("failed to get card by ID %s: %w", id, err)
	}
	return &card, nil
}

// Create inserts a new card. The auto-increment seq column records insertion
// order.
func (r *GORMCardRepository) Create(card *models.Card) error {
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// Update replaces an existing card row. An explicit UPDATE is used rather
// than Save: Save falls back to an insert when no row matches, and a miss
// here must stay a miss.
func (r *GORMCardRepository) Update(card *models.Card) error {
	res := r.db.Model(&models.Card{}).
		Where("id = ?", card.ID).
		Select("*").Omit("seq").
		Updates(card) // Select("*") updates all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update card: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card with ID %s: %w", card.ID, ErrCardNotFound)
	}
	return nil
}

// Delete removes a card by its ID and returns the removed entity.
func (r *GORMCardRepository) Delete(id string) (*models.Card, error) {
	card, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(&models.Card{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete card: %w", err)
	}
	return card, nil
}
