// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"fmt"
	"net/http"

	"github.com/integr8/blockchain/business/sys/validate"
	"github.com/integr8/blockchain/business/web/errs"
	"github.com/integr8/blockchain/foundation/blockchain/peer"
	"github.com/integr8/blockchain/foundation/blockchain/pubsub"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	PubSub *pubsub.PubSub
}

// P2P accepts a gossip connection from a peer.
func (h Handlers) P2P(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.Log.Infow("p2p connection", "traceid", v.TraceID, "remoteaddr", r.RemoteAddr, "host", r.Header.Get(pubsub.HostHeader))

	// Blocks until the connection is closed.
	if err := h.PubSub.Accept(w, r); err != nil {
		return fmt.Errorf("accepting gossip connection: %w", err)
	}

	return nil
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := h.State.Status()

	stats := h.PubSub.Stats()
	status.Connections = stats.Connections
	status.MessagesIn = stats.MessagesIn
	status.MessagesOut = stats.MessagesOut

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Peers returns the peers known to this node.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.KnownPeers(), http.StatusOK)
}

// SubmitPeer adds a peer to the set of known peers. The worker dials it on
// its next pass.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req struct {
		Host string `json:"host" validate:"required,hostname_port"`
	}
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	pr := peer.New(req.Host)
	if !h.State.AddKnownPeer(pr) {
		h.Log.Infow("add peer", "traceid", v.TraceID, "host", pr.Host, "status", "already known")
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	h.Log.Infow("add peer", "traceid", v.TraceID, "host", pr.Host)

	return web.Respond(ctx, w, pr, http.StatusCreated)
}

// Blocks returns the full chain for a peer that is synchronizing.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryBlocks(), http.StatusOK)
}

// Mempool returns the pending transactions keyed by id.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryMempool(), http.StatusOK)
}
