package testutil

import (
	"net/http"

	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/requestcontext"
)

// WithActor attaches actor to the request the way middleware/auth does after
// a token validates, so handler tests can skip minting JWTs.
func WithActor(req *http.Request, actor id.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}
