package handlers

import (
	"errors"
	"fmt"
	"log"

	"belanja/internal/middleware"
	"belanja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for signup, login and the protected route.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers routes that sit behind AuthRequired.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/protected", h.HandleProtected)
}

// CredentialsRequest is the body of signup and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// maxPasswordBytes is bcrypt's input limit; longer passwords fail to hash.
const maxPasswordBytes = 72

// parseCredentials returns a nil request when it has already written a 400.
func (h *AuthHandler) parseCredentials(c *fiber.Ctx) (*CredentialsRequest, error) {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing credentials request body: %v", err)
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": validationMessages(err),
		})
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": fiber.Map{"Password": fmt.Sprintf("Field 'Password' exceeds %d bytes", maxPasswordBytes)},
		})
	}
	return &req, nil
}

// HandleSignup creates a user. Any failure, a taken username included, is a 500.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	req, err := h.parseCredentials(c)
	if req == nil {
		return err
	}

	if _, err := h.authService.Signup(c.UserContext(), req.Username, req.Password); err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// HandleLogin checks credentials and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	req, err := h.parseCredentials(c)
	if req == nil {
		return err
	}

	token, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication failed",
			})
		}
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to query database",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

// HandleProtected echoes the caller's token claims.
func (h *AuthHandler) HandleProtected(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "This is a protected route.",
		"user":    middleware.ClaimsFrom(c),
	})
}
