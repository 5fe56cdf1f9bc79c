package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"shoestore/internal/handlers"
	"shoestore/internal/repositories"
	"shoestore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// setupApp wires a Fiber app the way main does, backed by the given
// repository. The repository doubles as the diagnostics store probe.
func setupApp(repo interface {
	repositories.ShoeRepository
	repositories.StoreProbe
}) *fiber.App {
	shoeService := services.NewShoeService(repo, nil) // no broker in tests
	shoeHandler := handlers.NewShoeHandler(shoeService)
	systemHandler := handlers.NewSystemHandler(repo)

	app := fiber.New()
	systemHandler.RegisterRoutes(app)
	api := app.Group("/api")
	shoeHandler.RegisterRoutes(api)
	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		assert.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var body map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&body)
	assert.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealthEndpoints(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())

	resp, body := doJSON(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Shoe Store Backend Running", body["message"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/hello", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello from the backend API!", body["message"])
}

func TestDiagnosticsWithWorkingStore(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())

	resp, body := doJSON(t, app, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "running", body["backend"])
	assert.Equal(t, "connected and working", body["database"])
	assert.Equal(t, "connected", body["connection_status"])
	assert.Contains(t, body["collections"], "shoe")
	// Presence indicators are reported, never the configured values
	assert.Contains(t, body, "database_url")
	assert.Contains(t, body, "database_name")
}

func TestDiagnosticsWithUninitializedStore(t *testing.T) {
	// A Mongo repository with no database handle reports every call as
	// not initialized; diagnostics must still answer 200.
	app := setupApp(repositories.NewMongoShoeRepository(nil))

	resp, body := doJSON(t, app, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "available but not initialized", body["database"])
	assert.Equal(t, "not connected", body["connection_status"])
	assert.Empty(t, body["collections"])
}

// brokenProbeRepository serves shoe data normally but fails every
// store-reachability probe with a fixed error.
type brokenProbeRepository struct {
	*repositories.InMemoryShoeRepository
	probeErr error
}

func (r *brokenProbeRepository) CollectionNames(context.Context, int) ([]string, error) {
	return nil, r.probeErr
}

// wideStoreRepository reports a configurable set of collection names,
// honoring the caller's cap the way the real store implementations do.
type wideStoreRepository struct {
	*repositories.InMemoryShoeRepository
	names []string
}

func (r *wideStoreRepository) CollectionNames(_ context.Context, limit int) ([]string, error) {
	names := r.names
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func TestDiagnosticsWithFailingCollectionListing(t *testing.T) {
	// 60 multibyte runes: the reported error must be cut to 50 characters
	// without splitting a rune.
	probeErr := errors.New(strings.Repeat("é", 60))
	app := setupApp(&brokenProbeRepository{repositories.NewInMemoryShoeRepository(), probeErr})

	resp, body := doJSON(t, app, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected", body["connection_status"])
	assert.Empty(t, body["collections"])

	database, ok := body["database"].(string)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(database, "connected but error: "), "got %q", database)

	detail := strings.TrimPrefix(database, "connected but error: ")
	assert.True(t, utf8.ValidString(detail))
	assert.Equal(t, 50, utf8.RuneCountInString(detail))
	assert.Equal(t, strings.Repeat("é", 50), detail)
}

func TestDiagnosticsCapsCollectionNames(t *testing.T) {
	names := make([]string, 15)
	for i := range names {
		names[i] = fmt.Sprintf("collection_%02d", i)
	}
	app := setupApp(&wideStoreRepository{repositories.NewInMemoryShoeRepository(), names})

	resp, body := doJSON(t, app, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected and working", body["database"])

	collections, ok := body["collections"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, collections, 10)
	assert.Equal(t, "collection_00", collections[0])
}

func TestCreateShoeValidation(t *testing.T) {
	repo := repositories.NewInMemoryShoeRepository()
	app := setupApp(repo)

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"brand": "Nike", "price": 99.0}},
		{"missing brand", map[string]interface{}{"name": "Air Max", "price": 99.0}},
		{"missing price", map[string]interface{}{"name": "Air Max", "brand": "Nike"}},
		{"negative price", map[string]interface{}{"name": "Air Max", "brand": "Nike", "price": -1.0}},
		{"rating above 5", map[string]interface{}{"name": "Air Max", "brand": "Nike", "price": 99.0, "rating": 5.1}},
		{"rating below 0", map[string]interface{}{"name": "Air Max", "brand": "Nike", "price": 99.0, "rating": -0.1}},
		{"price wrong type", map[string]interface{}{"name": "Air Max", "brand": "Nike", "price": "cheap"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/shoes", tc.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// Rejected requests must not have touched the store
	count, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateShoeDefaults(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())

	// price 0 is valid; only negative prices are rejected
	resp, body := doJSON(t, app, http.MethodPost, "/api/shoes", map[string]interface{}{
		"name":  "Freebie",
		"brand": "Nike",
		"price": 0.0,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["id"])

	_, listBody := doJSON(t, app, http.MethodGet, "/api/shoes", nil)
	items := listBody["items"].([]interface{})
	assert.Len(t, items, 1)

	shoe := items[0].(map[string]interface{})
	assert.Equal(t, true, shoe["in_stock"])
	assert.Equal(t, false, shoe["featured"])
	assert.Equal(t, []interface{}{}, shoe["images"])
	assert.Equal(t, []interface{}{}, shoe["colors"])
	assert.Equal(t, []interface{}{}, shoe["sizes"])
	// API-created records carry no timestamps (only seeded ones do)
	assert.NotContains(t, shoe, "created_at")
	assert.NotContains(t, shoe, "updated_at")
}

func createShoe(t *testing.T, app *fiber.App, name, brand string, price float64, featured bool) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/shoes", map[string]interface{}{
		"name":     name,
		"brand":    brand,
		"price":    price,
		"featured": featured,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := body["id"].(string)
	assert.True(t, ok, "id must be a string")
	assert.NotEmpty(t, id)
	return id
}

func TestListShoesFiltering(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())

	createShoe(t, app, "Air Zoom Bolt", "Nike", 139.99, true)
	createShoe(t, app, "Air Max Nova", "Nike", 159.5, false)
	createShoe(t, app, "UltraRide Blaze", "Puma", 119.0, true)

	// Brand filter returns only matching records
	_, body := doJSON(t, app, http.MethodGet, "/api/shoes?brand=Nike", nil)
	items := body["items"].([]interface{})
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, "Nike", it.(map[string]interface{})["brand"])
	}

	// Featured filter returns only featured records
	_, body = doJSON(t, app, http.MethodGet, "/api/shoes?featured=true", nil)
	items = body["items"].([]interface{})
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, true, it.(map[string]interface{})["featured"])
	}

	// Limit caps the result set
	_, body = doJSON(t, app, http.MethodGet, "/api/shoes?brand=Nike&limit=1", nil)
	assert.Len(t, body["items"].([]interface{}), 1)

	// Unknown brand matches nothing but is not an error
	resp, body := doJSON(t, app, http.MethodGet, "/api/shoes?brand=Adidas", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])

	// Malformed featured and limit values are client errors
	resp, _ = doJSON(t, app, http.MethodGet, "/api/shoes?featured=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/shoes?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListShoesIDShaping(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())
	created := createShoe(t, app, "Air Zoom Bolt", "Nike", 139.99, false)

	_, body := doJSON(t, app, http.MethodGet, "/api/shoes", nil)
	items := body["items"].([]interface{})
	assert.Len(t, items, 1)

	shoe := items[0].(map[string]interface{})
	id, ok := shoe["id"].(string)
	assert.True(t, ok, "id must be a string")
	assert.Equal(t, created, id)
	assert.NotContains(t, shoe, "_id")
}

func TestSeedIdempotence(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())

	// First call inserts the fixed demo set
	resp, body := doJSON(t, app, http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(4), body["inserted"])

	// Seeded records carry timestamps
	_, listBody := doJSON(t, app, http.MethodGet, "/api/shoes", nil)
	items := listBody["items"].([]interface{})
	assert.Len(t, items, 4)
	for _, it := range items {
		shoe := it.(map[string]interface{})
		assert.Contains(t, shoe, "created_at")
		assert.Contains(t, shoe, "updated_at")
	}

	// Second call inserts nothing and reports the existing count
	resp, body = doJSON(t, app, http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Already seeded", body["message"])
	assert.Equal(t, float64(4), body["count"])

	_, listBody = doJSON(t, app, http.MethodGet, "/api/shoes", nil)
	assert.Len(t, listBody["items"].([]interface{}), 4)
}

func TestListBrandsAfterSeed(t *testing.T) {
	app := setupApp(repositories.NewInMemoryShoeRepository())

	resp, body := doJSON(t, app, http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/brands", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw := body["items"].([]interface{})
	brands := make([]string, 0, len(raw))
	seen := make(map[string]bool)
	for _, b := range raw {
		brand := b.(string)
		assert.False(t, seen[brand], "brand %q appears more than once", brand)
		seen[brand] = true
		brands = append(brands, brand)
	}
	assert.Contains(t, brands, "Nike")
	assert.Contains(t, brands, "Puma")
}

func TestEndpointsWithoutStore(t *testing.T) {
	app := setupApp(repositories.NewMongoShoeRepository(nil))

	// Seed is the strict path: missing store is a server error
	resp, body := doJSON(t, app, http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Database not configured", body["message"])

	// Brands degrades to an empty list
	resp, body = doJSON(t, app, http.MethodGet, "/api/brands", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])

	// List shoes has no catch and propagates a server error
	resp, _ = doJSON(t, app, http.MethodGet, "/api/shoes", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// Diagnostics still answers 200
	resp, _ = doJSON(t, app, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
