package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yhafez/read-master-sub002/internal/models"
)

// maxContentLength is the contract cap on message content; enforced locally
// before any request so oversized sends never reach the network.
const maxContentLength = 2000

// Options tunes one coordinator instance.
type Options struct {
	// MessageInterval and SyncInterval configure the two polling streams
	// independently. Zero means DefaultPollInterval; values below
	// MinPollInterval are clamped up.
	MessageInterval time.Duration
	SyncInterval    time.Duration
	// PageSize bounds each message fetch.
	PageSize int
	// AutoSync makes a synced non-host follower adopt host page changes
	// observed between successive snapshots, without issuing page updates of
	// its own.
	AutoSync bool
}

// Snapshot is a consistent read-only view of the coordinator's cache.
type Snapshot struct {
	Messages       []models.SessionMessageResponse
	Participants   []models.ParticipantResponse
	SessionStatus  models.SessionStatus
	CurrentPage    int
	TotalPageTurns int
	IsHost         bool
	IsSynced       bool
	HasMore        bool
	ConnectionOK   bool
	LastErr        error
}

// SendMessageInput is a message submission from the local user.
type SendMessageInput struct {
	Content    string
	Type       models.MessageType
	PageNumber *int
}

// PageUpdateInput is a local page move.
type PageUpdateInput struct {
	CurrentPage int
	EventType   string
}

// Coordinator owns the in-memory working set for one (session, user) pair:
// a bounded message cache and the latest sync snapshot, kept fresh by two
// independent polling streams. Create one per active session view and Close
// it when the view goes away; a closed coordinator discards any in-flight
// response instead of applying it.
type Coordinator struct {
	api       *Client
	sessionID uint
	userID    uint
	opts      Options

	mu           sync.Mutex
	closed       bool
	messages     []models.SessionMessageResponse
	roster       []models.ParticipantResponse
	status       models.SessionStatus
	hostPage     int
	localPage    int
	pageTurns    int
	haveSync     bool
	hasMore      bool
	connectionOK bool
	lastErr      error

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	msgPoller  *poller
	syncPoller *poller
}

func NewCoordinator(api *Client, sessionID, userID uint, opts Options) *Coordinator {
	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 50
	}
	return &Coordinator{
		api:       api,
		sessionID: sessionID,
		userID:    userID,
		opts:      opts,
	}
}

// Start primes the cache with an initial fetch of both streams, then runs the
// two pollers until Close or context cancellation. Initial fetch failures are
// recorded in the error slot, not fatal; polling will catch up.
func (co *Coordinator) Start(ctx context.Context) error {
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return ErrClosed
	}
	if co.cancel != nil {
		co.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	co.cancel = cancel
	co.mu.Unlock()

	if err := co.pollMessages(ctx); err != nil {
		co.noteFailure(err)
	}
	if err := co.pollSync(ctx); err != nil {
		co.noteFailure(err)
	}

	msgPoller := newPoller(co.opts.MessageInterval, co.pollMessages, co.noteFailure)
	syncPoller := newPoller(co.opts.SyncInterval, co.pollSync, co.noteFailure)
	co.mu.Lock()
	co.msgPoller = msgPoller
	co.syncPoller = syncPoller
	co.mu.Unlock()

	co.wg.Add(2)
	go func() {
		defer co.wg.Done()
		msgPoller.run(ctx)
	}()
	go func() {
		defer co.wg.Done()
		syncPoller.run(ctx)
	}()

	return nil
}

// Close stops both polling streams and guarantees no further cache writes:
// responses resolving after Close are dropped.
func (co *Coordinator) Close() {
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return
	}
	co.closed = true
	cancel := co.cancel
	co.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	co.wg.Wait()
}

// Pause suspends both polling streams while the consuming view is hidden.
func (co *Coordinator) Pause() {
	co.mu.Lock()
	msgPoller, syncPoller := co.msgPoller, co.syncPoller
	co.mu.Unlock()

	if msgPoller != nil {
		msgPoller.pause()
	}
	if syncPoller != nil {
		syncPoller.pause()
	}
}

func (co *Coordinator) Resume() {
	co.mu.Lock()
	msgPoller, syncPoller := co.msgPoller, co.syncPoller
	co.mu.Unlock()

	if msgPoller != nil {
		msgPoller.resume()
	}
	if syncPoller != nil {
		syncPoller.resume()
	}
}

// State returns a copy of the current cache; callers can hold it across their
// own awaits without racing the pollers.
func (co *Coordinator) State() Snapshot {
	co.mu.Lock()
	defer co.mu.Unlock()

	messages := make([]models.SessionMessageResponse, len(co.messages))
	copy(messages, co.messages)
	roster := make([]models.ParticipantResponse, len(co.roster))
	copy(roster, co.roster)

	return Snapshot{
		Messages:       messages,
		Participants:   roster,
		SessionStatus:  co.status,
		CurrentPage:    co.localPage,
		TotalPageTurns: co.pageTurns,
		IsHost:         IsUserHost(roster, co.userID),
		IsSynced:       UserSyncStatus(roster, co.userID),
		HasMore:        co.hasMore,
		ConnectionOK:   co.connectionOK,
		LastErr:        co.lastErr,
	}
}

// SendMessage validates locally, submits, and folds the created message into
// the cache so the sender sees it before the next poll cycle.
func (co *Coordinator) SendMessage(ctx context.Context, input SendMessageInput) error {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return ErrEmptyContent
	}
	if len(content) > maxContentLength {
		return ErrContentTooLong
	}
	if input.Type == "" {
		input.Type = models.ChatMessage
	}
	if !input.Type.Valid() {
		return ErrInvalidType
	}
	if input.PageNumber != nil && *input.PageNumber < 0 {
		return ErrInvalidPage
	}

	message, err := co.api.PostMessage(ctx, co.sessionID, SendMessageRequest{
		ClientID:   uuid.New().String(),
		Content:    content,
		Type:       string(input.Type),
		PageNumber: input.PageNumber,
	})
	if err != nil {
		return err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	if co.closed {
		return nil
	}
	co.messages = MergeMessages(co.messages, []models.SessionMessageResponse{*message})
	return nil
}

// UpdatePage submits a page move and applies it optimistically. The next sync
// snapshot reconciles; the merge/watermark scheme prevents it from regressing
// this update.
func (co *Coordinator) UpdatePage(ctx context.Context, input PageUpdateInput) error {
	if input.CurrentPage < 0 {
		return ErrInvalidPage
	}

	// Mirror the server's checks to fail fast before the round trip.
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return ErrClosed
	}
	if co.status.IsTerminal() {
		co.mu.Unlock()
		return ErrSessionFinished
	}
	if co.haveSync && !IsUserHost(co.roster, co.userID) && !UserSyncStatus(co.roster, co.userID) {
		co.mu.Unlock()
		return ErrNotSyncedActor
	}
	co.mu.Unlock()

	result, err := co.api.PostPageUpdate(ctx, co.sessionID, PageUpdateRequest{
		CurrentPage: input.CurrentPage,
		EventType:   input.EventType,
	})
	if err != nil {
		return err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	if co.closed {
		return nil
	}
	co.localPage = input.CurrentPage
	co.pageTurns = result.TotalPageTurns
	if IsUserHost(co.roster, co.userID) {
		co.hostPage = result.CurrentPage
	}
	return nil
}

// ToggleSync updates the caller's follow-the-host flag, then refetches the
// authoritative snapshot rather than patching the roster locally.
func (co *Coordinator) ToggleSync(ctx context.Context, synced bool) error {
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return ErrClosed
	}
	page := co.localPage
	co.mu.Unlock()

	if err := co.api.PatchParticipantSync(ctx, co.sessionID, synced, page); err != nil {
		return err
	}

	return co.pollSync(ctx)
}

// LoadMoreMessages fetches the next older history page using the oldest
// cached message as cursor. No-op when the server reported no more pages or
// nothing is cached yet.
func (co *Coordinator) LoadMoreMessages(ctx context.Context) error {
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return ErrClosed
	}
	if !co.hasMore || len(co.messages) == 0 {
		co.mu.Unlock()
		return nil
	}
	cursor := co.messages[len(co.messages)-1].ID
	co.mu.Unlock()

	page, err := co.api.FetchMessages(ctx, co.sessionID, MessageQuery{
		Cursor: cursor,
		Limit:  co.opts.PageSize,
	})
	if err != nil {
		return err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	if co.closed {
		return nil
	}
	co.messages = MergeMessages(co.messages, page.Messages)
	co.hasMore = page.HasMore
	return nil
}

// pollMessages is one cycle of the message stream: first call fetches the
// newest page, later calls pass the newest cached timestamp as a watermark so
// the server returns only new rows. Optimistically merged sends advance the
// watermark too, so a lagging poll can never regress them. The since pages
// come oldest-first; a full page means a backlog built up between polls, so
// the cycle keeps fetching until the backlog is drained — each iteration's
// watermark lands on the newest row received, never past unseen rows.
func (co *Coordinator) pollMessages(ctx context.Context) error {
	for {
		co.mu.Lock()
		if co.closed {
			co.mu.Unlock()
			return nil
		}
		var since time.Time
		if len(co.messages) > 0 {
			since = co.messages[0].CreatedAt
		}
		co.mu.Unlock()

		query := MessageQuery{Limit: co.opts.PageSize}
		firstPage := since.IsZero()
		if !firstPage {
			query.Since = since
		}

		page, err := co.api.FetchMessages(ctx, co.sessionID, query)
		if err != nil {
			return err
		}

		co.mu.Lock()
		if co.closed {
			co.mu.Unlock()
			return nil
		}
		co.messages = MergeMessages(co.messages, page.Messages)
		if firstPage {
			co.hasMore = page.HasMore
		}
		co.noteSuccessLocked()
		done := firstPage || !page.HasMore
		co.mu.Unlock()

		if done {
			return nil
		}
	}
}

// pollSync is one cycle of the sync stream: a full snapshot fetch applied
// atomically under the lock.
func (co *Coordinator) pollSync(ctx context.Context) error {
	state, err := co.api.FetchSyncState(ctx, co.sessionID)
	if err != nil {
		return err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	if co.closed {
		return nil
	}

	prevHostPage := co.hostPage
	hadSync := co.haveSync

	co.roster = state.Participants
	co.status = state.Status
	co.hostPage = state.CurrentPage

	if !hadSync {
		co.localPage = state.CurrentPage
		co.haveSync = true
	} else if co.opts.AutoSync && state.SyncEnabled &&
		!IsUserHost(state.Participants, co.userID) &&
		UserSyncStatus(state.Participants, co.userID) &&
		state.CurrentPage != prevHostPage {
		// Passive follow: adopt the host's page without issuing an update.
		co.localPage = state.CurrentPage
	}

	co.noteSuccessLocked()
	return nil
}

func (co *Coordinator) noteFailure(err error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.closed {
		return
	}
	co.lastErr = err
	co.connectionOK = false
}

func (co *Coordinator) noteSuccessLocked() {
	co.lastErr = nil
	co.connectionOK = true
}
