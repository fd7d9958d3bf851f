package public

import (
	"context"
	"net/http"

	"github.com/integr8/blockchain/business/sys/validate"
	"github.com/integr8/blockchain/business/web/errs"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"github.com/integr8/blockchain/foundation/web"
)

// submit constructs the handler that turns a signed wallet request into a
// transaction for the action and adds it to the mempool.
func (h Handlers) submit(action string, newRequest func() txRequest) web.Handler {
	f := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil {
			return web.NewShutdownError("web value missing from context")
		}

		req := newRequest()
		if err := web.Decode(r, req); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		if err := validate.Check(req); err != nil {
			return err
		}

		payload, err := req.payload(action)
		if err != nil {
			return err
		}

		from, to, sig := req.signer()

		h.Log.Infow("submit tx", "traceid", v.TraceID, "type", payload.Type(), "action", payload.Action(), "from", h.NS.Lookup(from), "to", h.NS.Lookup(to))

		tx, err := h.State.SubmitWalletTransaction(from, to, payload, sig)
		if err != nil {
			return err
		}

		resp := struct {
			response
			Transaction transaction.Tx `json:"transaction"`
		}{
			response:    ok("Blockchain transaction successful"),
			Transaction: tx,
		}

		return web.Respond(ctx, w, resp, http.StatusCreated)
	}

	return f
}
