package handlers

const (
	ErrInvalidBody         = "Invalid request body"
	ErrInvalidFilter       = "Invalid filter"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrServiceUnavailable  = "Service unavailable"

	// maxBodySize bounds request bodies; task text is far shorter
	maxBodySize = 64 << 10
)
