package pages

import (
	"errors"
	"net/http"

	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/source"
)

// StatusFor maps an issue browser error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, source.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, source.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrInvalidIdentifier),
		errors.Is(err, models.ErrUnknownFilter),
		errors.Is(err, browser.ErrInvalidPage):
		return http.StatusBadRequest
	}
	return http.StatusServiceUnavailable
}

// ErrorMessage is what a visitor is told about a failed fetch. Upstream
// error text never reaches the page.
func ErrorMessage(err error) string {
	switch source.Classify(err) {
	case "":
		return ""
	case "not_found":
		return "We couldn't find that repository."
	case "rate_limited":
		return "GitHub is rate limiting us right now. Try again later."
	case "network":
		return "We couldn't reach GitHub."
	case "canceled":
		return "GitHub took too long to answer. Try again."
	}
	return "Something went wrong on our side. Try again in a moment."
}

func (p *Pages) FetchError(w http.ResponseWriter, err error) error {
	switch status := StatusFor(err); status {
	case http.StatusNotFound:
		return p.Error404(w)
	case http.StatusServiceUnavailable:
		return p.Error503(w)
	case http.StatusBadRequest:
		return p.Error400(w, err.Error())
	default:
		return p.Error(w, ErrorParams{Status: status, Message: ErrorMessage(err)})
	}
}
