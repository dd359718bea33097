package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
)

// Client is the HTTP accessor for the live-session API. All operations carry
// the caller's bearer token; identity resolution happens server-side.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// MessagePage is one fetch of session messages, newest first.
type MessagePage struct {
	Messages   []models.SessionMessageResponse `json:"messages"`
	HasMore    bool                            `json:"has_more"`
	NextCursor uint                            `json:"next_cursor"`
}

// MessageQuery selects between the two fetch modes: Since for incremental
// catch-up, Cursor for older history pages.
type MessageQuery struct {
	Cursor uint
	Since  time.Time
	Limit  int
}

type SendMessageRequest struct {
	ClientID   string `json:"client_id,omitempty"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
	PageNumber *int   `json:"page_number,omitempty"`
}

type PageUpdateRequest struct {
	CurrentPage int    `json:"current_page"`
	EventType   string `json:"event_type,omitempty"`
}

type PageUpdateResult struct {
	CurrentPage    int `json:"current_page"`
	TotalPageTurns int `json:"total_page_turns"`
}

type participantSyncRequest struct {
	IsSynced    bool `json:"is_synced"`
	CurrentPage int  `json:"current_page"`
}

// UpdateSessionRequest mirrors the host-only session mutation body; nil
// fields are left unchanged.
type UpdateSessionRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Status       *string  `json:"status,omitempty"`
	CurrentSpeed *float64 `json:"current_speed,omitempty"`
	IsPublic     *bool    `json:"is_public,omitempty"`
	AllowChat    *bool    `json:"allow_chat,omitempty"`
	SyncEnabled  *bool    `json:"sync_enabled,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func sessionPath(sessionID uint, suffix string) string {
	return fmt.Sprintf("/api/sessions/%d%s", sessionID, suffix)
}

func (c *Client) FetchMessages(ctx context.Context, sessionID uint, query MessageQuery) (*MessagePage, error) {
	params := url.Values{}
	if query.Cursor > 0 {
		params.Set("cursor", strconv.FormatUint(uint64(query.Cursor), 10))
	}
	if !query.Since.IsZero() {
		params.Set("since", query.Since.Format(time.RFC3339Nano))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	path := sessionPath(sessionID, "/messages")
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page MessagePage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) FetchSyncState(ctx context.Context, sessionID uint) (*models.SyncState, error) {
	var state models.SyncState
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/sync"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) PostMessage(ctx context.Context, sessionID uint, req SendMessageRequest) (*models.SessionMessageResponse, error) {
	var message models.SessionMessageResponse
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/messages"), req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (c *Client) PostPageUpdate(ctx context.Context, sessionID uint, req PageUpdateRequest) (*PageUpdateResult, error) {
	var result PageUpdateResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/sync"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PatchParticipantSync updates the caller's own participant row.
func (c *Client) PatchParticipantSync(ctx context.Context, sessionID uint, isSynced bool, currentPage int) error {
	req := participantSyncRequest{IsSynced: isSynced, CurrentPage: currentPage}
	return c.do(ctx, http.MethodPatch, sessionPath(sessionID, "/participants/me"), req, nil)
}

func (c *Client) GetSession(ctx context.Context, sessionID uint) (*models.SessionResponse, error) {
	var session models.SessionResponse
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) UpdateSession(ctx context.Context, sessionID uint, req UpdateSessionRequest) (*models.SessionResponse, error) {
	var session models.SessionResponse
	if err := c.do(ctx, http.MethodPut, sessionPath(sessionID, ""), req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) EndSession(ctx context.Context, sessionID uint) (*models.SessionResponse, error) {
	var session models.SessionResponse
	if err := c.do(ctx, http.MethodDelete, sessionPath(sessionID, ""), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) JoinSession(ctx context.Context, sessionID uint) (*models.ParticipantResponse, error) {
	var participant models.ParticipantResponse
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/join"), nil, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (c *Client) LeaveSession(ctx context.Context, sessionID uint) error {
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "/leave"), nil, nil)
}
