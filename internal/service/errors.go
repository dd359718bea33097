package service

import "errors"

// Validation-class errors: rejected before any store mutation.
var (
	ErrEmptyContent    = errors.New("message content is required")
	ErrContentTooLong  = errors.New("message content exceeds the maximum length")
	ErrInvalidType     = errors.New("invalid message type")
	ErrInvalidPage     = errors.New("page number must be zero or greater")
	ErrInvalidStatus   = errors.New("invalid session status")
	ErrInvalidTitle    = errors.New("session title must be 1-200 characters")
	ErrInvalidCapacity = errors.New("max participants must be at least 2")
	ErrChatDisabled    = errors.New("chat is disabled for this session")
	ErrAlreadyJoined   = errors.New("user is already a participant of this session")
	ErrCannotRejoin    = errors.New("participant has left and cannot rejoin this session")
	ErrSessionFull     = errors.New("session is at maximum capacity")
	ErrSessionPrivate  = errors.New("session is private")
	ErrNotParticipant  = errors.New("user is not an active participant of this session")
	ErrNotSyncedActor  = errors.New("only the host or a synced participant can update the page")
)

// Authorization-class errors: caller lacks the required role.
var (
	ErrNotHost         = errors.New("only the host can perform this action")
	ErrHostCannotLeave = errors.New("the host cannot leave; end the session instead")
)

// Conflict-class errors: the session reached a terminal status.
var (
	ErrSessionFinished = errors.New("cannot update a finished session")
)
