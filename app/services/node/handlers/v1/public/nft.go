package public

import (
	"context"
	"net/http"

	"github.com/integr8/blockchain/business/sys/validate"
	"github.com/integr8/blockchain/business/web/errs"
	"github.com/integr8/blockchain/foundation/web"
)

// NFTURI returns the public description of an NFT.
func (h Handlers) NFTURI(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req nftURI
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	n, err := h.State.QueryNFT(req.NFT)
	if err != nil {
		return err
	}

	resp := struct {
		response
		URI map[string]any `json:"uri"`
	}{
		response: ok("NFT URI fetched"),
		URI:      n.URI(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
