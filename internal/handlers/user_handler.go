package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yhafez/read-master-sub002/internal/httpx"
	"github.com/yhafez/read-master-sub002/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetCurrentUser returns the profile behind the bearer token.
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return serviceError(c, "fetch_user_failed", err)
	}
	return c.JSON(user.ToResponse())
}

// GetUser resolves a user by numeric ID or username.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	if identifier == "" {
		return httpx.BadRequest(c, "missing_identifier", "User identifier is required")
	}

	user, err := h.userService.ResolveUser(identifier)
	if err != nil {
		return serviceError(c, "fetch_user_failed", err)
	}
	return c.JSON(user.ToResponse())
}
