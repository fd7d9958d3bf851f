package public

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"github.com/integr8/blockchain/foundation/events"
	"github.com/integr8/blockchain/foundation/nameservice"
	"github.com/integr8/blockchain/foundation/price"
	"github.com/integr8/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Price *price.Oracle
	Asset string
	Evts  *events.Events
	Build string
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Price: cfg.Price,
		Asset: cfg.Asset,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
		Build: cfg.Build,
	}

	app.Handle(http.MethodGet, "", "/", pbl.Root)
	app.Handle(http.MethodGet, "", "/health", pbl.Health)

	const group = "api"

	app.Handle(http.MethodGet, group, "/events", pbl.Events)

	app.Handle(http.MethodGet, group, "/blockchain/blocks", pbl.Blocks)
	app.Handle(http.MethodGet, group, "/blockchain/blocks/length", pbl.BlocksLength)
	app.Handle(http.MethodGet, group, "/blockchain/blocks/mempool", pbl.Mempool)
	app.Handle(http.MethodGet, group, "/blockchain/blocks/mine-transactions", pbl.MineTransactions)
	app.Handle(http.MethodGet, group, "/blockchain/blocks/peers", pbl.Peers)
	app.Handle(http.MethodGet, group, "/blockchain/blocks/:page", pbl.BlocksPage)
	app.Handle(http.MethodGet, group, "/blockchain/block/:hash", pbl.Block)
	app.Handle(http.MethodGet, group, "/blockchain/block/:hash/transactions", pbl.BlockTransactions)
	app.Handle(http.MethodGet, group, "/blockchain/block/:hash/transactions/:id", pbl.BlockTransaction)
	app.Handle(http.MethodGet, group, "/blockchain/transactions/:id", pbl.Transaction)

	app.Handle(http.MethodGet, group, "/coin/create", pbl.CreateWallet)
	app.Handle(http.MethodGet, group, "/coin/:publicKey", pbl.Assets)
	app.Handle(http.MethodGet, group, "/coin/:publicKey/nonce", pbl.Nonce)
	app.Handle(http.MethodPost, group, "/coin/transfer", pbl.submit(transaction.ActionTransfer, func() txRequest { return &coinTransfer{} }))
	for _, action := range []string{transaction.ActionStake, transaction.ActionUnstake} {
		app.Handle(http.MethodPost, group, "/coin/"+action, pbl.submit(action, func() txRequest { return &coinStake{} }))
	}

	app.Handle(http.MethodGet, group, "/token/:ca", pbl.Token)
	app.Handle(http.MethodPost, group, "/token/create", pbl.submit(transaction.ActionCreate, func() txRequest { return &tokenCreate{} }))
	for _, action := range []string{transaction.ActionTransfer, transaction.ActionMint, transaction.ActionBurn, transaction.ActionStake, transaction.ActionUnstake} {
		app.Handle(http.MethodPost, group, "/token/"+action, pbl.submit(action, func() txRequest { return &tokenAmount{} }))
	}
	for _, action := range []string{transaction.ActionBuy, transaction.ActionSell} {
		app.Handle(http.MethodPost, group, "/token/"+action, pbl.submit(action, func() txRequest { return &tokenTrade{} }))
	}
	app.Handle(http.MethodPost, group, "/token/swap", pbl.submit(transaction.ActionSwap, func() txRequest { return &tokenSwap{} }))
	for _, action := range []string{transaction.ActionPause, transaction.ActionUnpause, transaction.ActionFreeze, transaction.ActionUnfreeze, transaction.ActionLock, transaction.ActionUnlock} {
		app.Handle(http.MethodPost, group, "/token/"+action, pbl.submit(action, func() txRequest { return &tokenAdmin{} }))
	}
	app.Handle(http.MethodPost, group, "/token/set-supply-cap", pbl.submit(transaction.ActionSetSupplyCap, func() txRequest { return &tokenSupplyCap{} }))
	app.Handle(http.MethodPost, group, "/token/approve", pbl.submit(transaction.ActionApprove, func() txRequest { return &tokenApprove{} }))

	app.Handle(http.MethodPost, group, "/nft/create", pbl.submit(transaction.ActionCreate, func() txRequest { return &nftCreate{} }))
	app.Handle(http.MethodPost, group, "/nft/mint", pbl.submit(transaction.ActionMint, func() txRequest { return &nftMint{} }))
	for _, action := range []string{transaction.ActionTransfer, transaction.ActionBurn} {
		app.Handle(http.MethodPost, group, "/nft/"+action, pbl.submit(action, func() txRequest { return &nftRef{} }))
	}
	for _, action := range []string{transaction.ActionBuy, transaction.ActionListForSale} {
		app.Handle(http.MethodPost, group, "/nft/"+action, pbl.submit(action, func() txRequest { return &nftSale{} }))
	}
	app.Handle(http.MethodPost, group, "/nft/get-uri", pbl.NFTURI)
}
