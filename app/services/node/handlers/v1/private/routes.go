package private

import (
	"net/http"

	"github.com/integr8/blockchain/foundation/blockchain/pubsub"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	PubSub *pubsub.PubSub
}

// Routes binds all the private routes.
func Routes(app *web.App, cfg Config) {
	prv := Handlers{
		Log:    cfg.Log,
		State:  cfg.State,
		PubSub: cfg.PubSub,
	}

	app.Handle(http.MethodGet, "", pubsub.Path, prv.P2P)

	const version = "v1"

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/peers", prv.Peers)
	app.Handle(http.MethodPost, version, "/node/peers", prv.SubmitPeer)
	app.Handle(http.MethodGet, version, "/node/blocks", prv.Blocks)
	app.Handle(http.MethodGet, version, "/node/tx/list", prv.Mempool)
}
