package shared

import "errors"

var (

	// common errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")
	ErrorInternal      = errors.New("internal error")

	// auth-specific errors
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInvalidToken = errors.New("invalid token")

	// giveaway-specific errors
	ErrorGiveawayClosed   = errors.New("giveaway entry window has closed")
	ErrorGiveawayNotEnded = errors.New("giveaway has not ended yet")
	ErrorAlreadyEntered   = errors.New("user already entered this giveaway")
	ErrorAlreadyCommitted = errors.New("giveaway already has a commitment")

	// draw-specific errors
	ErrorWinnerAlreadyDrawn = errors.New("winner already drawn")
)
