package worker

import (
	"context"
	"time"

	"github.com/integr8/blockchain/foundation/blockchain/peer"
)

// dialTimeout bounds a single attempt to connect to a peer.
const dialTimeout = 3 * time.Second

// peerOperations handles redialing known peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	w.runPeersOperation()

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation connects to every known peer this node is not connected
// to. Failures are logged and retried on the next tick.
func (w *Worker) runPeersOperation() {
	if w.gossip == nil {
		return
	}

	for _, pr := range w.state.KnownPeers() {
		if w.gossip.IsConnected(pr.Host) {
			continue
		}

		w.evHandler("worker: runPeersOperation: dial: %s", pr.Host)

		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		err := w.gossip.Connect(ctx, pr.Host)
		cancel()

		if err != nil {
			w.evHandler("worker: runPeersOperation: dial: %s: WARNING: %s", pr.Host, err)
		}
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of known peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	for _, pr := range knownPeers {
		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: adding peer-node %s", pr)
		}
	}
}
