package models

import (
	"encoding/json"
	"time"
)

// DefaultCategory is applied when a create payload omits the category.
const DefaultCategory = "general"

// Card represents a sellable digital trading card in the catalog.
type Card struct {
	// Seq is a surrogate auto-increment key that preserves insertion order
	// for listing. The public identifier is ID.
	Seq             uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	ID              string    `json:"id" gorm:"uniqueIndex;type:varchar(64)"`
	Name            string    `json:"name" gorm:"type:varchar(100)"`
	Description     string    `json:"description" gorm:"type:varchar(500)"`
	FrontImageURL   string    `json:"frontImageUrl"`
	BackImageURL    string    `json:"backImageUrl"`
	Price           float64   `json:"price"`
	TotalSupply     int       `json:"totalSupply"`
	RemainingSupply int       `json:"remainingSupply"`
	Category        string    `json:"category"`
	CreatorID       string    `json:"creatorId"`
	CreatedAt       time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// Rarity returns the card's display tier for its current total supply.
func (c Card) Rarity() Rarity {
	return CalculateRarity(c.TotalSupply)
}

// MarshalJSON includes the derived rarity field, recomputed on every marshal
// so it can never disagree with totalSupply.
func (c Card) MarshalJSON() ([]byte, error) {
	type alias Card
	return json.Marshal(struct {
		alias
		Rarity Rarity `json:"rarity"`
	}{alias(c), c.Rarity()})
}

// CreateCardRequest is the payload for creating a card. Price is a pointer so
// that an explicit 0 is distinguishable from a missing field.
type CreateCardRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"omitempty,max=500"`
	FrontImageURL string   `json:"frontImageUrl" validate:"required"`
	BackImageURL  string   `json:"backImageUrl" validate:"required"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	TotalSupply   int      `json:"totalSupply" validate:"required,gt=0"`
	Category      string   `json:"category" validate:"omitempty,max=100"`
}

// UpdateCardRequest is the partial payload for updating a card. Only the
// fields listed here are mutable; id, createdAt, remainingSupply and
// creatorId are server-owned and never overwritten by a payload.
type UpdateCardRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1"`
	Description   *string  `json:"description" validate:"omitempty,max=500"`
	FrontImageURL *string  `json:"frontImageUrl" validate:"omitempty,min=1"`
	BackImageURL  *string  `json:"backImageUrl" validate:"omitempty,min=1"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	TotalSupply   *int     `json:"totalSupply" validate:"omitempty,gt=0"`
	Category      *string  `json:"category" validate:"omitempty,max=100"`
}
