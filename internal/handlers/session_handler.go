package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/yhafez/read-master-sub002/internal/cache"
	"github.com/yhafez/read-master-sub002/internal/httpx"
	"github.com/yhafez/read-master-sub002/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
	sessionCache   *cache.SessionCache
}

func NewSessionHandler(sessionService *service.SessionService, sessionCache *cache.SessionCache) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		sessionCache:   sessionCache,
	}
}

func sessionIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return uint(id), nil
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateSessionInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	session, err := h.sessionService.CreateSession(userID, input)
	if err != nil {
		return serviceError(c, "create_session_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(session.ToResponse())
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	sessions, err := h.sessionService.ListPublicSessions(limit)
	if err != nil {
		return httpx.Internal(c, "list_sessions_failed")
	}

	responses := make([]interface{}, len(sessions))
	for i := range sessions {
		responses[i] = sessions[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"sessions": responses,
		"count":    len(sessions),
	})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	session, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		return serviceError(c, "fetch_session_failed", err)
	}

	return c.JSON(session.ToResponse())
}

func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	var input service.UpdateSessionInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	session, err := h.sessionService.UpdateSession(sessionID, userID, input)
	if err != nil {
		return serviceError(c, "update_session_failed", err)
	}

	_ = h.sessionCache.InvalidateSyncState(sessionID)

	return c.JSON(session.ToResponse())
}

func (h *SessionHandler) EndSession(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	session, err := h.sessionService.EndSession(sessionID, userID)
	if err != nil {
		return serviceError(c, "end_session_failed", err)
	}

	_ = h.sessionCache.InvalidateSyncState(sessionID)

	return c.JSON(session.ToResponse())
}

func (h *SessionHandler) JoinSession(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	participant, err := h.sessionService.JoinSession(sessionID, userID)
	if err != nil {
		return serviceError(c, "join_session_failed", err)
	}

	_ = h.sessionCache.InvalidateSyncState(sessionID)

	return c.Status(fiber.StatusCreated).JSON(participant.ToResponse())
}

func (h *SessionHandler) LeaveSession(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	if err := h.sessionService.LeaveSession(sessionID, userID); err != nil {
		return serviceError(c, "leave_session_failed", err)
	}

	_ = h.sessionCache.InvalidateSyncState(sessionID)

	return c.JSON(fiber.Map{"message": "Left session successfully"})
}

func (h *SessionHandler) GetParticipants(c *fiber.Ctx) error {
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	participants, err := h.sessionService.GetParticipants(sessionID)
	if err != nil {
		return httpx.Internal(c, "fetch_participants_failed")
	}

	responses := make([]interface{}, len(participants))
	for i := range participants {
		responses[i] = participants[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"participants": responses,
		"count":        len(participants),
	})
}
