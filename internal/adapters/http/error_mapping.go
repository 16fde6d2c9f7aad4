package httpadapter

import (
	"net/http"

	"github.com/askcampus/askcampus/internal/core/domain"
)

// Upstream failures all map to 503 with one generic message. The caller is
// a voice surface; internals must never be read aloud.
const unavailableMessage = "The service is temporarily unavailable. Please try again."

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRetrievalUnavailable),
		domain.IsKind(err, domain.ErrGenerationUnavailable),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, status int) string {
	if status >= 500 {
		return unavailableMessage
	}
	return err.Error()
}
