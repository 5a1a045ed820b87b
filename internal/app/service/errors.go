package service

import (
	"net/http"

	"github.com/abndnt/paris-night-sub002/internal/pkg/exception"
)

var ErrTooManySearches = exception.ApplicationError{
	Message:    "too many concurrent searches",
	StatusCode: http.StatusServiceUnavailable,
}

var ErrSearchNotFound = exception.ApplicationError{
	Message:    "search not found",
	StatusCode: http.StatusNotFound,
}

var ErrSearchNotCompleted = exception.ApplicationError{
	Message:    "search has not completed",
	StatusCode: http.StatusConflict,
}

var ErrSearchCancelled = exception.ApplicationError{
	Message:    "search cancelled by user",
	StatusCode: http.StatusConflict,
}

var ErrProgramNotFound = exception.ApplicationError{
	Message:    "reward program not found",
	StatusCode: http.StatusNotFound,
}

var ErrInvalidPoints = exception.ApplicationError{
	Message:    "points amount must be positive",
	StatusCode: http.StatusBadRequest,
}

var ErrNoBalanceProvider = exception.ApplicationError{
	Message:    "no balance provider configured",
	StatusCode: http.StatusNotImplemented,
}
