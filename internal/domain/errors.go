package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Roster precondition errors.

func ErrMatchNotOpen() *AppError {
	return &AppError{Code: "MATCH_NOT_OPEN", Message: "match is full or not accepting players", Status: 409}
}

func ErrAlreadyRostered() *AppError {
	return &AppError{Code: "ALREADY_ROSTERED", Message: "player is already in this match", Status: 409}
}

func ErrIsOrganizer() *AppError {
	return &AppError{Code: "IS_ORGANIZER", Message: "organizer cannot join as a player", Status: 409}
}

func ErrDeadlinePassed() *AppError {
	return &AppError{Code: "DEADLINE_PASSED", Message: "join deadline has passed", Status: 409}
}

func ErrSkillLevelTooLow(required SkillLevel) *AppError {
	return &AppError{Code: "SKILL_LEVEL_TOO_LOW", Message: fmt.Sprintf("match requires %s skill level or higher", required), Status: 403}
}

func ErrPlayerSuspended() *AppError {
	return &AppError{Code: "PLAYER_SUSPENDED", Message: "player is currently suspended", Status: 403}
}

func ErrNotRostered() *AppError {
	return &AppError{Code: "NOT_ROSTERED", Message: "player is not in this match", Status: 409}
}

func ErrMatchLocked() *AppError {
	return &AppError{Code: "MATCH_LOCKED", Message: "match has already started or completed", Status: 409}
}

func ErrInvalidState(msg string) *AppError {
	return &AppError{Code: "INVALID_STATE", Message: msg, Status: 409}
}

func ErrInsufficientPlayers(min int) *AppError {
	return &AppError{Code: "INSUFFICIENT_PLAYERS", Message: fmt.Sprintf("each team needs at least %d players to start", min), Status: 409}
}

// Reputation precondition errors.

func ErrSelfRating() *AppError {
	return &AppError{Code: "SELF_RATING", Message: "cannot rate yourself", Status: 400}
}

func ErrSelfReport() *AppError {
	return &AppError{Code: "SELF_REPORT", Message: "cannot report yourself", Status: 400}
}

func ErrMatchNotCompleted() *AppError {
	return &AppError{Code: "MATCH_NOT_COMPLETED", Message: "players can only be rated after match completion", Status: 409}
}

func ErrNotParticipant() *AppError {
	return &AppError{Code: "NOT_PARTICIPANT", Message: "both players must have participated in the match", Status: 403}
}

func ErrDuplicateRating() *AppError {
	return &AppError{Code: "DUPLICATE_RATING", Message: "player already rated for this match", Status: 409}
}

// Player request precondition errors.

func ErrRequestNotActive() *AppError {
	return &AppError{Code: "REQUEST_NOT_ACTIVE", Message: "request is no longer active", Status: 409}
}

func ErrNotContacted() *AppError {
	return &AppError{Code: "NOT_CONTACTED", Message: "player was not contacted for this request", Status: 403}
}

// Admission errors.

func ErrAccountLocked() *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: "too many failed login attempts, try again later", Status: 429}
}

func ErrRateLimited() *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: "too many requests", Status: 429}
}

// Shared errors.

func ErrNotAuthorized(msg string) *AppError {
	return &AppError{Code: "NOT_AUTHORIZED", Message: msg, Status: 403}
}

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
