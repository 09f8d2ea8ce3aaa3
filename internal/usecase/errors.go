package usecase

import "errors"

// Errors shared by every workflow engine. Handlers map them onto the uniform
// error envelope.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("you do not have permission to perform this action")
	ErrStateConflict = errors.New("the resource changed state, the operation is no longer allowed")
	ErrNoActor       = errors.New("no authenticated principal in context")
)
