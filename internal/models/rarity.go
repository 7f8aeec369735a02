package models

// Rarity is a display tier derived from a card's total supply. It is computed
// on demand and never persisted.
type Rarity string

const (
	RarityLegendary Rarity = "legendary"
	RarityEpic      Rarity = "epic"
	RarityRare      Rarity = "rare"
	RarityCommon    Rarity = "common"
)

// CalculateRarity maps a total supply to its rarity tier. Upper bounds are
// inclusive: a supply of 10 is still legendary, 50 epic, 200 rare.
func CalculateRarity(totalSupply int) Rarity {
	switch {
	case totalSupply <= 10:
		return RarityLegendary
	case totalSupply <= 50:
		return RarityEpic
	case totalSupply <= 200:
		return RarityRare
	default:
		return RarityCommon
	}
}
