package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yhafez/read-master-sub002/internal/cache"
	"github.com/yhafez/read-master-sub002/internal/httpx"
	"github.com/yhafez/read-master-sub002/internal/models"
	"github.com/yhafez/read-master-sub002/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
	sessionCache   *cache.SessionCache
}

func NewMessageHandler(messageService *service.MessageService, sessionCache *cache.SessionCache) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		sessionCache:   sessionCache,
	}
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messageService.SendMessage(sessionID, userID, input)
	if err != nil {
		return serviceError(c, "send_message_failed", err)
	}

	_ = h.sessionCache.InvalidateMessages(sessionID)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// GetMessages serves both fetch modes the polling client uses: `since` for
// incremental catch-up and `cursor` for older history pages. The first page
// (no cursor, no since) is the hot path and is cache-backed.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	sessionID, err := sessionIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_session_id", "Invalid session ID")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if sinceStr := c.Query("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339Nano, sinceStr)
		if err != nil {
			return httpx.BadRequest(c, "invalid_since", "Invalid since timestamp")
		}
		page, err := h.messageService.ListMessagesSince(sessionID, since, limit)
		if err != nil {
			return serviceError(c, "fetch_messages_failed", err)
		}
		return c.JSON(fiber.Map{
			"messages": toMessageResponses(page.Messages),
			"has_more": page.HasMore,
			"count":    len(page.Messages),
		})
	}

	var cursor uint
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		parsed, err := strconv.ParseUint(cursorStr, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
		}
		cursor = uint(parsed)
	}

	// Cache only the default first page; cursor pages are cold history. The
	// cached entry carries its own pagination markers, so a full page does
	// not read back as the end of history.
	if cursor == 0 {
		if cached, ok := h.sessionCache.GetFirstPage(sessionID); ok && len(cached.Messages) > 0 {
			// Serve from cache only when it can satisfy the requested limit.
			if len(cached.Messages) >= limit || !cached.HasMore {
				result := cached.Messages
				hasMore := cached.HasMore
				nextCursor := cached.NextCursor
				if len(result) > limit {
					result = result[:limit]
					hasMore = true
					nextCursor = result[len(result)-1].ID
				}
				resp := fiber.Map{
					"messages": result,
					"has_more": hasMore,
					"count":    len(result),
				}
				if nextCursor > 0 {
					resp["next_cursor"] = nextCursor
				}
				return c.JSON(resp)
			}
		}
	}

	page, err := h.messageService.ListMessages(sessionID, cursor, limit)
	if err != nil {
		return serviceError(c, "fetch_messages_failed", err)
	}

	responses := toMessageResponses(page.Messages)
	if cursor == 0 && len(responses) > 0 {
		_ = h.sessionCache.SetFirstPage(sessionID, &cache.FirstPage{
			Messages:   responses,
			HasMore:    page.HasMore,
			NextCursor: page.NextCursor,
		})
	}

	result := fiber.Map{
		"messages": responses,
		"has_more": page.HasMore,
		"count":    len(responses),
	}
	if page.NextCursor > 0 {
		result["next_cursor"] = page.NextCursor
	}

	return c.JSON(result)
}

func toMessageResponses(messages []models.SessionMessage) []models.SessionMessageResponse {
	responses := make([]models.SessionMessageResponse, len(messages))
	for i := range messages {
		responses[i] = messages[i].ToResponse()
	}
	return responses
}
