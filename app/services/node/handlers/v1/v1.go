// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"github.com/integr8/blockchain/app/services/node/handlers/v1/private"
	"github.com/integr8/blockchain/app/services/node/handlers/v1/public"
	"github.com/integr8/blockchain/foundation/blockchain/pubsub"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/events"
	"github.com/integr8/blockchain/foundation/nameservice"
	"github.com/integr8/blockchain/foundation/price"
	"github.com/integr8/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	Evts   *events.Events
	Price  *price.Oracle
	Asset  string
	PubSub *pubsub.PubSub
	Build  string
}

// PublicRoutes binds all the public routes.
func PublicRoutes(app *web.App, cfg Config) {
	public.Routes(app, public.Config{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Price: cfg.Price,
		Asset: cfg.Asset,
		Evts:  cfg.Evts,
		Build: cfg.Build,
	})
}

// PrivateRoutes binds all the node to node routes.
func PrivateRoutes(app *web.App, cfg Config) {
	private.Routes(app, private.Config{
		Log:    cfg.Log,
		State:  cfg.State,
		PubSub: cfg.PubSub,
	})
}
