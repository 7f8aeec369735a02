package handlers

import (
	"errors"
	"fmt"
	"log"

	"cardmarket/internal/models"
	"cardmarket/internal/repositories"
	"cardmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CardHandler handles HTTP requests for the card catalog.
type CardHandler struct {
	service *services.CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service *services.CardService) *CardHandler {
	return &CardHandler{
		service: service,
	}
}

// RegisterRoutes registers the card routes with the Fiber app.
func (h *CardHandler) RegisterRoutes(router fiber.Router) {
	cardRoutes := router.Group("/cards")
	cardRoutes.Get("/", h.HandleListCards)
	cardRoutes.Post("/", h.HandleCreateCard)
	cardRoutes.Get("/:id", h.HandleGetCard)
	cardRoutes.Put("/:id", h.HandleUpdateCard)
	cardRoutes.Delete("/:id", h.HandleDeleteCard)
}

// HandleListCards returns the whole catalog in insertion order.
func (h *CardHandler) HandleListCards(c *fiber.Ctx) error {
	cards, err := h.service.ListCards()
	if err != nil {
		log.Printf("Error listing cards: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cards",
			"error":   err.Error(),
		})
	}
	return c.JSON(cards)
}

// HandleGetCard retrieves a single card by its ID.
func (h *CardHandler) HandleGetCard(c *fiber.Ctx) error {
	cardID := c.Params("id")
	card, err := h.service.GetCard(cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Card with ID %s not found", cardID),
			})
		}
		log.Printf("Error getting card by ID %s: %v", cardID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve card",
			"error":   err.Error(),
		})
	}
	return c.JSON(card)
}

// HandleCreateCard creates a new card from the request payload. The creator
// identity is taken from the request context set by the identity middleware.
func (h *CardHandler) HandleCreateCard(c *fiber.Ctx) error {
	var req models.CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create card request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	creatorID, _ := c.Locals("creator_id").(string)

	card, err := h.service.CreateCard(&req, creatorID)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  validationErr.Fields,
			})
		}
		log.Printf("Error creating card: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create card",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(card)
}

// HandleUpdateCard merges a partial payload over an existing card.
func (h *CardHandler) HandleUpdateCard(c *fiber.Ctx) error {
	cardID := c.Params("id")

	var req models.UpdateCardRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update card request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	card, err := h.service.UpdateCard(cardID, &req)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  validationErr.Fields,
			})
		}
		if errors.Is(err, repositories.ErrCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Card with ID %s not found", cardID),
			})
		}
		log.Printf("Error updating card %s: %v", cardID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update card",
			"error":   err.Error(),
		})
	}

	return c.JSON(card)
}

// HandleDeleteCard removes a card and returns the removed entity.
func (h *CardHandler) HandleDeleteCard(c *fiber.Ctx) error {
	cardID := c.Params("id")

	card, err := h.service.DeleteCard(cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Card with ID %s not found", cardID),
			})
		}
		log.Printf("Error deleting card %s: %v", cardID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete card",
			"error":   err.Error(),
		})
	}

	return c.JSON(card)
}
