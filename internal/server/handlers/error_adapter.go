package handlers

import (
	"net/http"

	apperrors "github.com/industrylens/industrylens/internal/errors"
)

// ErrorResponder writes err to w as a JSON error body.
type ErrorResponder func(http.ResponseWriter, *http.Request, error)

var httpErrorResponder ErrorResponder = apperrors.RespondWithError

// SetHTTPErrorResponder swaps the error writer; nil restores the default.
func SetHTTPErrorResponder(responder ErrorResponder) {
	if responder == nil {
		responder = apperrors.RespondWithError
	}
	httpErrorResponder = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
