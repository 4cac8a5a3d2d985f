package status

import "errors"

var (
	ErrEventNotFound      = errors.New("registry: event not found locally, refresh and try again")
	ErrSoldOut            = errors.New("registry: event is sold out")
	ErrInvalidCapacity    = errors.New("registry: max tickets must be greater than zero")
	ErrTicketNotFound     = errors.New("registry: ticket not found for this account")
	ErrTicketTypeNotFound = errors.New("registry: ticket type not found")
	ErrNoSigner           = errors.New("wallet: no signer is available for the connected account")
	ErrTokenMissing       = errors.New("registry: token id missing for this event")
	ErrBreakerOpen        = errors.New("chain: circuit breaker is open, failing fast")
)
