package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleCreateUser creates a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.UserCreate
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if errs := h.validateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}

	user, err := h.service.CreateUser(req)
	if err != nil {
		return h.handleServiceError(c, err, "Could not create user")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleListUsers retrieves users in insertion order with skip/limit
// pagination. Out-of-range values never fail; they yield empty lists.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	users, err := h.service.GetAllUsers(skip, limit)
	if err != nil {
		return h.handleServiceError(c, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

// HandleGetUser retrieves a single user by ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"id": "must be an integer"},
		})
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		return h.handleServiceError(c, err, "Could not retrieve user")
	}
	return c.JSON(user)
}

// HandleUpdateUser applies a partial update to an existing user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"id": "must be an integer"},
		})
	}

	var upd models.UserUpdate
	if err := c.BodyParser(&upd); err != nil {
		log.Printf("Error parsing update user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if errs := h.validateStruct(upd); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}

	user, err := h.service.UpdateUser(id, upd)
	if err != nil {
		return h.handleServiceError(c, err, "Could not update user")
	}
	return c.JSON(user)
}

// HandleDeleteUser removes a user. Success is an empty 204 body.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"id": "must be an integer"},
		})
	}

	if err := h.service.DeleteUser(id); err != nil {
		return h.handleServiceError(c, err, "Could not delete user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// validateStruct runs validator tags over s and flattens failures into
// a field->message map for the response body.
func (h *UserHandler) validateStruct(s interface{}) map[string]string {
	if err := h.validate.Struct(s); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return errorMessages
	}
	return nil
}

// handleServiceError maps repository sentinel errors to their outward
// status. Anything unrecognized is logged in full and surfaced as an
// opaque internal error.
func (h *UserHandler) handleServiceError(c *fiber.Ctx, err error, logContext string) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	case errors.Is(err, repositories.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Email already registered",
		})
	default:
		log.Printf("%s: %v", logContext, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
