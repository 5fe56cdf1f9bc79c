package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shoestore/internal/models"
	"shoestore/internal/services"
)

const defaultListLimit = 50

// ShoeHandler handles HTTP requests for the shoe catalog.
type ShoeHandler struct {
	service  *services.ShoeService
	validate *validator.Validate
}

// NewShoeHandler creates a new ShoeHandler.
func NewShoeHandler(service *services.ShoeService) *ShoeHandler {
	return &ShoeHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *ShoeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shoes", h.HandleListShoes)
	router.Post("/shoes", h.HandleCreateShoe)
	router.Get("/brands", h.HandleListBrands)
	router.Post("/seed", h.HandleSeedDemoData)
}

// HandleListShoes lists shoes matching the optional brand/featured filters,
// capped at limit (default 50). Filters absent from the query string are
// omitted from the store filter entirely.
func (h *ShoeHandler) HandleListShoes(c *fiber.Ctx) error {
	filter := models.ShoeFilter{
		Brand: c.Query("brand"),
		Limit: defaultListLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Invalid limit value %q, expected an integer", raw),
			})
		}
		filter.Limit = int64(limit)
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Invalid featured value %q, expected a boolean", raw),
			})
		}
		filter.Featured = &featured
	}

	shoes, err := h.service.ListShoes(c.UserContext(), filter)
	if err != nil {
		log.Printf("Error listing shoes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve shoes",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"items": shoes})
}

// CreateShoeRequest represents the request body for creating a shoe.
// Price and rating are pointers so "absent" and "zero" stay distinct:
// price 0 is valid, missing price is not.
type CreateShoeRequest struct {
	Name        string    `json:"name" validate:"required"`
	Brand       string    `json:"brand" validate:"required"`
	Price       *float64  `json:"price" validate:"required,gte=0"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Colors      []string  `json:"colors"`
	Sizes       []float64 `json:"sizes"`
	Featured    bool      `json:"featured"`
	Rating      *float64  `json:"rating" validate:"omitempty,gte=0,lte=5"`
	InStock     *bool     `json:"in_stock"`
}

// HandleCreateShoe validates and inserts one shoe, returning its new
// identifier as a string with status 201. Validation rejects the request
// before any store access.
func (h *ShoeHandler) HandleCreateShoe(c *fiber.Ctx) error {
	var req CreateShoeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create shoe request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	shoe := req.toShoe()
	id, err := h.service.CreateShoe(c.UserContext(), &shoe)
	if err != nil {
		log.Printf("Error creating shoe: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create shoe",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// toShoe applies the documented defaults: empty sequences instead of null,
// in_stock true when omitted. No timestamps are stamped on this path.
func (r CreateShoeRequest) toShoe() models.Shoe {
	shoe := models.Shoe{
		Name:        r.Name,
		Brand:       r.Brand,
		Price:       *r.Price,
		Description: r.Description,
		Images:      r.Images,
		Colors:      r.Colors,
		Sizes:       r.Sizes,
		Featured:    r.Featured,
		Rating:      r.Rating,
		InStock:     true,
	}
	if r.InStock != nil {
		shoe.InStock = *r.InStock
	}
	if shoe.Images == nil {
		shoe.Images = []string{}
	}
	if shoe.Colors == nil {
		shoe.Colors = []string{}
	}
	if shoe.Sizes == nil {
		shoe.Sizes = []float64{}
	}
	return shoe
}

// HandleListBrands returns the distinct brand values. When the store is
// unavailable this degrades to an empty list rather than an error.
func (h *ShoeHandler) HandleListBrands(c *fiber.Ctx) error {
	brands := h.service.ListBrands(c.UserContext())
	return c.JSON(fiber.Map{"items": brands})
}

// HandleSeedDemoData populates the demo catalog at most once. Unlike the
// read paths, a missing store here is a hard server error.
func (h *ShoeHandler) HandleSeedDemoData(c *fiber.Ctx) error {
	result, err := h.service.SeedDemoData(c.UserContext())
	if err != nil {
		log.Printf("Error seeding demo data: %v", err)
		if errors.Is(err, services.ErrStoreUnavailable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Database not configured",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not seed demo data",
			"error":   err.Error(),
		})
	}

	if result.AlreadySeeded {
		return c.JSON(fiber.Map{
			"message": "Already seeded",
			"count":   result.ExistingCount,
		})
	}
	return c.JSON(fiber.Map{"inserted": result.Inserted})
}
