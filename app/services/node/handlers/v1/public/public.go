// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/events"
	"github.com/integr8/blockchain/foundation/nameservice"
	"github.com/integr8/blockchain/foundation/price"
	"github.com/integr8/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Price *price.Oracle
	Asset string
	WS    websocket.Upgrader
	Evts  *events.Events
	Build string
}

// Root identifies the node.
func (h Handlers) Root(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		response
		Version string `json:"version"`
	}{
		response: ok("Welcome to Integr8 Blockchain Node"),
		Version:  h.Build,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Health reports the node is serving requests.
func (h Handlers) Health(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		response
		Version     string `json:"version"`
		ChainLength int    `json:"chainLength"`
	}{
		response:    ok("Integr8 Blockchain Node is healthy"),
		Version:     h.Build,
		ChainLength: h.State.QueryChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
