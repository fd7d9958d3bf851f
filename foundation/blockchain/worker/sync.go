package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/peer"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// Sync updates the peer list, mempool and blocks from the known peers before
// the node starts gossiping.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.KnownPeers() {

		// Retrieve the status of this peer.
		var status peer.PeerStatus
		url := fmt.Sprintf("%s/status", fmt.Sprintf(w.baseURL, pr.Host))
		if err := send(http.MethodGet, url, nil, &status); err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(status.KnownPeers)

		// Retrieve the mempool from the peer.
		var pool map[string]transaction.Tx
		url = fmt.Sprintf("%s/tx/list", fmt.Sprintf(w.baseURL, pr.Host))
		if err := send(http.MethodGet, url, nil, &pool); err != nil {
			w.evHandler("worker: sync: retrievePeerMempool: %s: ERROR: %s", pr.Host, err)
		}
		for _, tx := range pool {
			if err := w.state.ProcessPeerTransaction(tx); err != nil {
				w.evHandler("worker: sync: retrievePeerMempool: %s: tx[%s]: %s", pr.Host, tx.ID, err)
			}
		}

		// If this peer has a longer chain, take it.
		if status.ChainLength > w.state.QueryChainLength() {
			w.evHandler("worker: sync: retrievePeerBlocks: %s: length[%d]", pr.Host, status.ChainLength)

			var blocks []chain.Block
			url = fmt.Sprintf("%s/blocks", fmt.Sprintf(w.baseURL, pr.Host))
			if err := send(http.MethodGet, url, nil, &blocks); err != nil {
				w.evHandler("worker: sync: retrievePeerBlocks: %s: ERROR %s", pr.Host, err)
				continue
			}

			if err := w.state.ProcessPeerChain(blocks); err != nil {
				w.evHandler("worker: sync: retrievePeerBlocks: %s: ERROR %s", pr.Host, err)
			}
		}
	}
}

// =============================================================================

// client is used for the sync requests to the peers.
var client = http.Client{
	Timeout: 10 * time.Second,
}

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequest(method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}

	default:
		var err error
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return err
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
