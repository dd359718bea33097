package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yhafez/read-master-sub002/internal/httpx"
	"github.com/yhafez/read-master-sub002/internal/service"
	"gorm.io/gorm"
)

// serviceError maps service-layer sentinel errors onto the HTTP error
// envelope: validation → 400, authorization → 403, missing rows → 404,
// terminal-state conflicts → 409.
func serviceError(c *fiber.Ctx, code string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return httpx.NotFound(c, "not_found", "Resource not found")
	case errors.Is(err, service.ErrSessionFinished):
		return httpx.Conflict(c, "session_finished", err.Error())
	case errors.Is(err, service.ErrNotHost),
		errors.Is(err, service.ErrHostCannotLeave):
		return httpx.Forbidden(c, "forbidden", err.Error())
	case errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrContentTooLong),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrChatDisabled),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrCannotRejoin),
		errors.Is(err, service.ErrSessionFull),
		errors.Is(err, service.ErrSessionPrivate),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrNotSyncedActor):
		return httpx.BadRequest(c, code, err.Error())
	default:
		return httpx.Internal(c, code)
	}
}
