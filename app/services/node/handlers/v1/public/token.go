package public

import (
	"context"
	"net/http"

	"github.com/integr8/blockchain/foundation/blockchain/token"
	"github.com/integr8/blockchain/foundation/web"
)

// Token returns the token contract.
func (h Handlers) Token(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	t, err := h.State.QueryToken(web.Param(r, "ca"))
	if err != nil {
		return err
	}

	resp := struct {
		response
		Token token.Token `json:"token"`
	}{
		response: ok("Token fetched"),
		Token:    t,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
