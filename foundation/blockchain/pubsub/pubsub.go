// Package pubsub gossips transactions, chains and peer lists between nodes
// over websocket connections.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/peer"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"go.uber.org/atomic"
)

// Set of message types gossiped between nodes.
const (
	TypeBlockchain  = "BLOCKCHAIN"
	TypeTransaction = "TRANSACTION"
	TypePeers       = "PEERS"
)

// HostHeader carries the private host of the dialing node.
const HostHeader = "X-Node-Host"

// Path is the route the gossip websocket is served on.
const Path = "/p2p"

// defaultSeenTTL is how long a message id is remembered.
const defaultSeenTTL = 10 * time.Second

// Envelope is the wire form of every gossip message. Data holds the JSON
// encoding of the message body.
type Envelope struct {
	Type      string `json:"type"`
	Data      string `json:"data"`
	MessageID string `json:"messageId"`
}

// NewEnvelope encodes the value into an envelope with a fresh message id.
func NewEnvelope(typ string, v any) (Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s: %w", typ, err)
	}

	env := Envelope{
		Type:      typ,
		Data:      string(data),
		MessageID: uuid.NewString(),
	}

	return env, nil
}

// =============================================================================

// Config represents the settings for the gossip layer.
type Config struct {
	Host      string
	State     *state.State
	SeenTTL   time.Duration
	EvHandler state.EventHandler
}

// Stats reports the gossip counters.
type Stats struct {
	Connections int64 `json:"connections"`
	MessagesIn  int64 `json:"messages_in"`
	MessagesOut int64 `json:"messages_out"`
}

// PubSub manages the websocket connections to the peers.
type PubSub struct {
	host      string
	state     *state.State
	evHandler state.EventHandler
	upgrader  websocket.Upgrader
	dialer    *websocket.Dialer

	seen    *ristretto.Cache
	seenTTL time.Duration

	mu    sync.RWMutex
	conns map[*conn]struct{}

	connections atomic.Int64
	messagesIn  atomic.Int64
	messagesOut atomic.Int64
}

// New constructs the gossip layer for the node.
func New(cfg Config) (*PubSub, error) {
	seen, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing seen cache: %w", err)
	}

	ttl := cfg.SeenTTL
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	ps := PubSub{
		host:      cfg.Host,
		state:     cfg.State,
		evHandler: ev,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		dialer:  websocket.DefaultDialer,
		seen:    seen,
		seenTTL: ttl,
		conns:   make(map[*conn]struct{}),
	}

	return &ps, nil
}

// Shutdown closes every connection.
func (ps *PubSub) Shutdown() {
	ps.mu.Lock()
	conns := ps.conns
	ps.conns = make(map[*conn]struct{})
	ps.mu.Unlock()

	for c := range conns {
		c.ws.Close()
	}

	ps.seen.Close()
}

// Stats returns the connection and message counters.
func (ps *PubSub) Stats() Stats {
	return Stats{
		Connections: ps.connections.Load(),
		MessagesIn:  ps.messagesIn.Load(),
		MessagesOut: ps.messagesOut.Load(),
	}
}

// =============================================================================

// Accept upgrades the request to a gossip connection and serves it until the
// connection closes.
func (ps *PubSub) Accept(w http.ResponseWriter, r *http.Request) error {
	ws, err := ps.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	host := r.Header.Get(HostHeader)
	if host != "" {
		ps.state.AddKnownPeer(peer.New(host))
	}

	ps.evHandler("pubsub: Accept: connection: remote[%s]: host[%s]", r.RemoteAddr, host)

	c := ps.register(ws, peer.New(host).Host)
	ps.sharePeers(c)
	ps.serve(c)

	return nil
}

// Connect dials the peer and serves the connection in the background.
func (ps *PubSub) Connect(ctx context.Context, host string) error {
	pr := peer.New(host)
	if pr.Match(ps.host) {
		return errors.New("cannot connect to self")
	}

	header := http.Header{}
	header.Set(HostHeader, ps.host)

	url := fmt.Sprintf("ws://%s%s", pr.Host, Path)
	ws, _, err := ps.dialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", url, err)
	}

	ps.evHandler("pubsub: Connect: connected: %s", pr.Host)

	c := ps.register(ws, pr.Host)
	ps.sharePeers(c)
	go ps.serve(c)

	return nil
}

// IsConnected reports whether a connection to the host is open.
func (ps *PubSub) IsConnected(host string) bool {
	host = peer.New(host).Host

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for c := range ps.conns {
		if c.host == host {
			return true
		}
	}

	return false
}

// =============================================================================
// These methods implement the state.Network interface.

// BroadcastChain sends the chain to every connected peer.
func (ps *PubSub) BroadcastChain(blocks []chain.Block) {
	env, err := NewEnvelope(TypeBlockchain, blocks)
	if err != nil {
		ps.evHandler("pubsub: BroadcastChain: ERROR: %s", err)
		return
	}

	ps.publish(env)
}

// BroadcastTransaction sends the transaction to every connected peer.
func (ps *PubSub) BroadcastTransaction(tx transaction.Tx) {
	env, err := NewEnvelope(TypeTransaction, tx)
	if err != nil {
		ps.evHandler("pubsub: BroadcastTransaction: ERROR: %s", err)
		return
	}

	ps.publish(env)
}

// =============================================================================

// publish marks our own message as seen and sends it to every connection.
func (ps *PubSub) publish(env Envelope) {
	ps.markSeen(env.MessageID)

	data, err := json.Marshal(env)
	if err != nil {
		ps.evHandler("pubsub: publish: ERROR: %s", err)
		return
	}

	ps.broadcast(data, nil)
}

// broadcast writes the message to every connection except the sender.
func (ps *PubSub) broadcast(data []byte, sender *conn) {
	for _, c := range ps.snapshot() {
		if c == sender {
			continue
		}

		if err := c.write(data); err != nil {
			ps.evHandler("pubsub: broadcast: %s: WARNING: %s", c.host, err)
			continue
		}
		ps.messagesOut.Inc()
	}
}

// sharePeers tells the connection which peers this node knows.
func (ps *PubSub) sharePeers(c *conn) {
	hosts := append(ps.state.KnownPeers(), peer.New(ps.host))

	env, err := NewEnvelope(TypePeers, hostsOf(hosts))
	if err != nil {
		ps.evHandler("pubsub: sharePeers: ERROR: %s", err)
		return
	}
	ps.markSeen(env.MessageID)

	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	if err := c.write(data); err != nil {
		ps.evHandler("pubsub: sharePeers: %s: WARNING: %s", c.host, err)
		return
	}
	ps.messagesOut.Inc()
}

// serve reads messages from the connection until it fails.
func (ps *PubSub) serve(c *conn) {
	defer ps.unregister(c)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			ps.evHandler("pubsub: serve: %s: disconnected: %s", c.host, err)
			return
		}
		ps.messagesIn.Inc()

		if err := ps.handle(data, c); err != nil {
			ps.evHandler("pubsub: serve: %s: WARNING: %s", c.host, err)
		}
	}
}

// handle processes a single message and rebroadcasts it to the other peers
// when it was accepted. Messages seen within the TTL are dropped.
func (ps *PubSub) handle(data []byte, sender *conn) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding envelope: %w", err)
	}

	if env.MessageID != "" {
		if ps.isSeen(env.MessageID) {
			return nil
		}
		ps.markSeen(env.MessageID)
	}

	ps.evHandler("pubsub: handle: received: type[%s]: id[%s]", env.Type, env.MessageID)

	var err error
	switch env.Type {
	case TypeBlockchain:
		err = ps.handleBlockchain(env.Data)

	case TypeTransaction:
		err = ps.handleTransaction(env.Data)

	case TypePeers:
		err = ps.handlePeers(env.Data)

	default:
		err = fmt.Errorf("unknown message type %q", env.Type)
	}

	if err != nil {
		return err
	}

	ps.broadcast(data, sender)

	return nil
}

func (ps *PubSub) handleBlockchain(data string) error {
	var blocks []chain.Block
	if err := json.Unmarshal([]byte(data), &blocks); err != nil {
		return fmt.Errorf("decoding chain: %w", err)
	}

	return ps.state.ProcessPeerChain(blocks)
}

func (ps *PubSub) handleTransaction(data string) error {
	var tx transaction.Tx
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		return fmt.Errorf("decoding transaction: %w", err)
	}

	return ps.state.ProcessPeerTransaction(tx)
}

// handlePeers records the unknown peers and dials them.
func (ps *PubSub) handlePeers(data string) error {
	var hosts []string
	if err := json.Unmarshal([]byte(data), &hosts); err != nil {
		return fmt.Errorf("decoding peers: %w", err)
	}

	for _, host := range hosts {
		pr := peer.New(host)
		if pr.Match(ps.host) || !ps.state.AddKnownPeer(pr) || ps.IsConnected(pr.Host) {
			continue
		}

		ps.evHandler("pubsub: handlePeers: new peer: %s", pr.Host)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := ps.Connect(ctx, pr.Host); err != nil {
				ps.evHandler("pubsub: handlePeers: %s: WARNING: %s", pr.Host, err)
			}
		}()
	}

	return nil
}

// =============================================================================

func (ps *PubSub) isSeen(id string) bool {
	_, found := ps.seen.Get(id)
	return found
}

func (ps *PubSub) markSeen(id string) {
	ps.seen.SetWithTTL(id, struct{}{}, 1, ps.seenTTL)
	ps.seen.Wait()
}

func (ps *PubSub) register(ws *websocket.Conn, host string) *conn {
	c := conn{
		host: host,
		ws:   ws,
	}

	ps.mu.Lock()
	ps.conns[&c] = struct{}{}
	ps.mu.Unlock()

	ps.connections.Inc()

	return &c
}

func (ps *PubSub) unregister(c *conn) {
	ps.mu.Lock()
	_, exists := ps.conns[c]
	delete(ps.conns, c)
	ps.mu.Unlock()

	if exists {
		ps.connections.Dec()
	}

	c.ws.Close()
}

func (ps *PubSub) snapshot() []*conn {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	conns := make([]*conn, 0, len(ps.conns))
	for c := range ps.conns {
		conns = append(conns, c)
	}

	return conns
}

func hostsOf(peers []peer.Peer) []string {
	hosts := make([]string, 0, len(peers))
	for _, pr := range peers {
		if pr.Host != "" {
			hosts = append(hosts, pr.Host)
		}
	}
	return hosts
}

// =============================================================================

// conn is a single websocket connection. Writes are serialized.
type conn struct {
	host string
	ws   *websocket.Conn
	mu   sync.Mutex
}

// writeWait bounds a single write to a peer.
const writeWait = 10 * time.Second

func (c *conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}
