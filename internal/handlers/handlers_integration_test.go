package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"cardmarket/internal/handlers"
	"cardmarket/internal/middleware"
	"cardmarket/internal/models"
	"cardmarket/internal/repositories"
	"cardmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// setupApp builds a Fiber app with a fresh in-memory catalog, the identity
// middleware and all handlers wired, mirroring the production wiring.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	cardRepo := repositories.NewMemoryCardRepository()
	cardService := services.NewCardService(cardRepo, nil)

	cardHandler := handlers.NewCardHandler(cardService)
	uploadHandler := handlers.NewUploadHandler(t.TempDir())

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.CreatorIdentity("demo-user"))
	cardHandler.RegisterRoutes(apiV1)
	uploadHandler.RegisterRoutes(apiV1)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func putJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeCard(t *testing.T, resp *http.Response) models.Card {
	t.Helper()
	defer resp.Body.Close()
	var card models.Card
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		t.Fatalf("failed to decode card response: %v", err)
	}
	return card
}

func createFireDragon(t *testing.T, app *fiber.App) models.Card {
	t.Helper()
	resp := postJSON(t, app, "/api/v1/cards", fiber.Map{
		"name":          "Fire Dragon",
		"frontImageUrl": "/u/f.png",
		"backImageUrl":  "/u/b.png",
		"price":         1000,
		"totalSupply":   5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeCard(t, resp)
}

func TestCreateCard_RoundTrip(t *testing.T) {
	app := setupApp(t)

	resp := postJSON(t, app, "/api/v1/cards", fiber.Map{
		"name":          "Fire Dragon",
		"frontImageUrl": "/u/f.png",
		"backImageUrl":  "/u/b.png",
		"price":         1000,
		"totalSupply":   5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.NoError(t, err)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Fire Dragon", body["name"])
	assert.Equal(t, float64(5), body["totalSupply"])
	assert.Equal(t, float64(5), body["remainingSupply"])
	assert.Equal(t, "general", body["category"])
	assert.Equal(t, "", body["description"])
	assert.Equal(t, "legendary", body["rarity"])
	assert.Equal(t, "demo-user", body["creatorId"], "identity middleware stamps the creator")
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, body["createdAt"], body["updatedAt"])
}

func TestCreateCard_ValidationFailures(t *testing.T) {
	app := setupApp(t)

	// Missing price is rejected.
	resp := postJSON(t, app, "/api/v1/cards", fiber.Map{
		"name":          "Fire Dragon",
		"frontImageUrl": "/u/f.png",
		"backImageUrl":  "/u/b.png",
		"totalSupply":   5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Explicit price 0 is valid.
	resp = postJSON(t, app, "/api/v1/cards", fiber.Map{
		"name":          "Freebie",
		"frontImageUrl": "/u/f.png",
		"backImageUrl":  "/u/b.png",
		"price":         0,
		"totalSupply":   500,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	card := decodeCard(t, resp)
	assert.Equal(t, float64(0), card.Price)

	// Zero supply is rejected.
	resp = postJSON(t, app, "/api/v1/cards", fiber.Map{
		"name":          "Ghost",
		"frontImageUrl": "/u/f.png",
		"backImageUrl":  "/u/b.png",
		"price":         100,
		"totalSupply":   0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// A rejected create leaves the catalog untouched.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer listResp.Body.Close()
	var cards []models.Card
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&cards))
	assert.Len(t, cards, 1)
}

func TestListCards_InsertionOrder(t *testing.T) {
	app := setupApp(t)

	names := []string{"Alpha", "Beta", "Gamma"}
	for _, name := range names {
		resp := postJSON(t, app, "/api/v1/cards", fiber.Map{
			"name":          name,
			"frontImageUrl": "/u/f.png",
			"backImageUrl":  "/u/b.png",
			"price":         100,
			"totalSupply":   100,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cards []models.Card
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&cards))
	assert.Len(t, cards, 3)
	for i, card := range cards {
		assert.Equal(t, names[i], card.Name)
	}
}

func TestGetCard(t *testing.T) {
	app := setupApp(t)
	created := createFireDragon(t, app)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/"+created.ID, nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	card := decodeCard(t, resp)
	assert.Equal(t, created.ID, card.ID)
	assert.Equal(t, "Fire Dragon", card.Name)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cards/does-not-exist", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateCard(t *testing.T) {
	app := setupApp(t)
	created := createFireDragon(t, app)

	resp := putJSON(t, app, "/api/v1/cards/"+created.ID, fiber.Map{"price": 500})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	card := decodeCard(t, resp)
	assert.Equal(t, float64(500), card.Price)
	assert.Equal(t, created.Name, card.Name)
	assert.Equal(t, created.TotalSupply, card.TotalSupply)
	assert.Equal(t, created.RemainingSupply, card.RemainingSupply)
	assert.True(t, created.CreatedAt.Equal(card.CreatedAt))
	assert.False(t, card.UpdatedAt.Before(created.UpdatedAt))

	// Unknown id is a 404.
	resp = putJSON(t, app, "/api/v1/cards/does-not-exist", fiber.Map{"price": 500})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateCard_ServerOwnedFieldsAreProtected(t *testing.T) {
	app := setupApp(t)
	created := createFireDragon(t, app)

	resp := putJSON(t, app, "/api/v1/cards/"+created.ID, fiber.Map{
		"id":              "forged-id",
		"remainingSupply": 9999,
		"creatorId":       "someone-else",
		"createdAt":       "1999-01-01T00:00:00Z",
		"name":            "Renamed Dragon",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	card := decodeCard(t, resp)

	assert.Equal(t, "Renamed Dragon", card.Name)
	assert.Equal(t, created.ID, card.ID)
	assert.Equal(t, created.RemainingSupply, card.RemainingSupply)
	assert.Equal(t, "demo-user", card.CreatorID)
	assert.True(t, created.CreatedAt.Equal(card.CreatedAt))
}

func TestDeleteCard(t *testing.T) {
	app := setupApp(t)
	created := createFireDragon(t, app)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cards/"+created.ID, nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decodeCard(t, resp)
	assert.Equal(t, created.ID, removed.ID, "delete returns the removed card")

	// Gone from the listing.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer listResp.Body.Close()
	var cards []models.Card
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&cards))
	assert.Len(t, cards, 0)

	// Subsequent lookups and deletes are 404s.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cards/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cards/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func uploadFile(t *testing.T, app *fiber.App, filename, contentType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write multipart content: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	return resp
}

func TestUpload(t *testing.T) {
	app := setupApp(t)

	// Declared content type wins.
	resp := uploadFile(t, app, "front.png", "image/png", []byte("not-really-a-png"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// <unix-millis>-<random base36><ext>
	assert.Regexp(t, `^/uploads/\d+-[0-9a-z]+\.png$`, body["url"])
}

func TestUpload_ExtensionFallback(t *testing.T) {
	app := setupApp(t)

	// No usable declared type: the .heic extension decides.
	resp := uploadFile(t, app, "photo.HEIC", "application/octet-stream", []byte("heic-bytes"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["url"], ".heic")
}

func TestUpload_Rejections(t *testing.T) {
	app := setupApp(t)

	// Disallowed declared type names the offender.
	resp := uploadFile(t, app, "doc.pdf", "application/pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "application/pdf")

	// Unknown extension with no declared type falls back to a generic binary
	// type, which is rejected.
	resp = uploadFile(t, app, "mystery.bin", "", []byte{0x00, 0x01})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Missing file field entirely.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
