package public

import (
	"context"
	"errors"
	"net/http"

	"github.com/integr8/blockchain/business/web/errs"
	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/peer"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"github.com/integr8/blockchain/foundation/web"
)

// Blocks returns the full chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		response
		Blockchain []chain.Block `json:"blockchain"`
	}{
		response:   ok("Blockchain data fetched"),
		Blockchain: h.State.QueryBlocks(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksLength returns the number of blocks in the chain.
func (h Handlers) BlocksLength(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		response
		Blockchain int `json:"blockchain"`
	}{
		response:   ok("Blockchain length fetched"),
		Blockchain: h.State.QueryChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksPage returns a page of blocks, newest first.
func (h Handlers) BlocksPage(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	page, err := web.ParamInt(r, "page")
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		response
		Blockchain []chain.Block `json:"blockchain"`
	}{
		response:   ok("Blockchain paginated data fetched"),
		Blockchain: h.State.QueryBlocksPage(page),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the transactions waiting to be mined.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		response
		TransactionPool map[string]transaction.Tx `json:"transactionPool"`
	}{
		response:        ok("Blockchain transaction pool records fetched"),
		TransactionPool: h.State.QueryMempool(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MineTransactions mines the pending transactions now and redirects to the
// chain.
func (h Handlers) MineTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineNewBlock()
	if err != nil {
		if errors.Is(err, state.ErrNoTransactions) {
			return errs.NewTrusted(errors.New("No blockchain transactions to include"), http.StatusBadRequest)
		}
		return err
	}

	h.Log.Infow("mine transactions", "traceid", v.TraceID, "height", block.Height, "hash", block.Hash)

	return web.Redirect(ctx, w, r, "/api/blockchain/blocks", http.StatusFound)
}

// Peers returns the peers known to this node.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		response
		Peers []peer.Peer `json:"peers"`
	}{
		response: ok("Peer list fetched"),
		Peers:    h.State.KnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Block returns the block with the hash.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(r)
	if err != nil {
		return err
	}

	resp := struct {
		response
		Block chain.Block `json:"block"`
	}{
		response: ok("Block found"),
		Block:    block,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlockTransactions returns the transactions of the block with the hash.
func (h Handlers) BlockTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(r)
	if err != nil {
		return err
	}

	resp := struct {
		response
		Transactions []transaction.Tx `json:"transactions"`
	}{
		response:     ok("Block transactions found"),
		Transactions: block.Transactions,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlockTransaction returns a transaction of the block with the hash.
func (h Handlers) BlockTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(r)
	if err != nil {
		return err
	}

	tx, found := block.Transaction(web.Param(r, "id"))
	if !found {
		return database.NewStateError("Transaction not found in block")
	}

	resp := struct {
		response
		Transaction transaction.Tx `json:"transaction"`
	}{
		response:    ok("Transaction found in block"),
		Transaction: tx,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transaction finds a transaction anywhere in the chain.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tx, block, err := h.State.QueryTransaction(web.Param(r, "id"))
	if err != nil {
		return err
	}

	resp := struct {
		response
		Transaction transaction.Tx `json:"transaction"`
		BlockHash   string         `json:"blockHash"`
		Height      uint64         `json:"height"`
	}{
		response:    ok("Transaction found"),
		Transaction: tx,
		BlockHash:   block.Hash,
		Height:      block.Height,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

func (h Handlers) block(r *http.Request) (chain.Block, error) {
	block, err := h.State.QueryBlockByHash(web.Param(r, "hash"))
	if err != nil {
		return chain.Block{}, database.NewStateError("Block not found")
	}
	return block, nil
}
