package handlers

import (
	"errors"
	"log"

	"belanja/internal/middleware"
	"belanja/internal/pricing"
	"belanja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/cart", h.HandleGetCart)
	router.Post("/cart/add", h.HandleAddToCart)
	router.Delete("/cart", h.HandleClearCart)
}

// LineItemResponse is one priced cart row.
type LineItemResponse struct {
	ProductID   uint             `json:"product_id"`
	ProductName string           `json:"product_name"`
	Category    pricing.Category `json:"category"`
	UnitPrice   float64          `json:"unit_price"`
	Quantity    int              `json:"quantity"`
	Tax         float64          `json:"tax"`
	TotalPrice  float64          `json:"total_price"`
}

// CartResponse is the body of GET /cart.
type CartResponse struct {
	CartDetails []LineItemResponse `json:"cartDetails"`
	TotalAmount float64            `json:"total_amount"`
}

func newCartResponse(quote pricing.Quote) CartResponse {
	resp := CartResponse{
		CartDetails: make([]LineItemResponse, 0, len(quote.Items)),
		TotalAmount: quote.Total.InexactFloat64(),
	}
	for _, item := range quote.Items {
		resp.CartDetails = append(resp.CartDetails, LineItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    item.Category,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Quantity:    item.Quantity,
			Tax:         item.Tax.InexactFloat64(),
			TotalPrice:  item.LineTotal.InexactFloat64(),
		})
	}
	return resp
}

// HandleGetCart prices the caller's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	quote, err := h.service.GetCart(c.UserContext(), claims.UserID)
	if err != nil {
		log.Printf("Error getting cart for user %d: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Error occurred",
		})
	}
	return c.JSON(newCartResponse(quote))
}

// AddToCartRequest is the body of POST /cart/add.
type AddToCartRequest struct {
	ProductID uint `json:"productID" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// HandleAddToCart appends a line to the caller's cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Validation failed",
			"errors": validationMessages(err),
		})
	}

	claims := middleware.ClaimsFrom(c)
	if err := h.service.AddToCart(c.UserContext(), claims.UserID, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, services.ErrInvalidQuantity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": err.Error(),
			})
		}
		log.Printf("Error adding product %d to cart of user %d: %v", req.ProductID, claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Error occurred while inserting to cart",
		})
	}

	return c.JSON(fiber.Map{
		"detail": "Added to cart successfully",
	})
}

// HandleClearCart empties the caller's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	if err := h.service.ClearCart(c.UserContext(), claims.UserID); err != nil {
		log.Printf("Error clearing cart of user %d: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Error occurred while clearing the cart",
		})
	}

	return c.JSON(fiber.Map{
		"detail": "Cart cleared successfully",
	})
}
