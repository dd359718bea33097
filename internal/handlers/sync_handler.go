package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yhafez/read-master-sub002/internal/cache"
	"github.com/yhafez/read-master-sub002/internal/httpx"
	"github.com/yhafez/read-master-sub002/internal/service"
)

type SyncHandler struct {
	syncService  *service.SyncService
	sessionCache *cache.SessionCache
}

func NewSyncHandler(syncService *service.SyncService, sessionCache *cache.SessionCache) *SyncHandler {
	return &SyncHandler{
		syncService:  syncService,
		sessionCache: sessionCache,
	}
}

// GetSyncState serves the full snapshot every polling client asks for. The
// cache TTL is shorter than the poll interval, so clients see fresh state
// while Postgres sees one query per interval per session.
func (h *SyncHandler) GetSyncState(c *fiber.Ctx) error {
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	if cached, ok := h.sessionCache.GetSyncState(sessionID); ok {
		return c.JSON(cached)
	}

	state, err := h.syncService.GetSyncState(sessionID)
	if err != nil {
		return serviceError(c, "fetch_sync_state_failed", err)
	}

	_ = h.sessionCache.SetSyncState(sessionID, state)

	return c.JSON(state)
}

func (h *SyncHandler) UpdatePage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	var input service.PageUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	result, err := h.syncService.UpdatePage(sessionID, userID, input)
	if err != nil {
		return serviceError(c, "update_page_failed", err)
	}

	_ = h.sessionCache.InvalidateSyncState(sessionID)

	return c.JSON(result)
}

type participantSyncRequest struct {
	IsSynced    bool `json:"is_synced"`
	CurrentPage int  `json:"current_page"`
}

func (h *SyncHandler) UpdateParticipantSync(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	var req participantSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.syncService.UpdateParticipantSync(sessionID, userID, req.IsSynced, req.CurrentPage); err != nil {
		return serviceError(c, "update_participant_sync_failed", err)
	}

	_ = h.sessionCache.InvalidateSyncState(sessionID)

	return c.JSON(fiber.Map{"message": "Sync preference updated"})
}
