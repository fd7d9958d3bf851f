// Package merkle provides a radix trie keyed by hex strings whose root hash
// commits to every key and value stored in it.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

// node represents a single position in the trie. Each level of the trie
// consumes one byte of the decoded key.
type node struct {
	children map[byte]*node
	value    *string
	hash     string
}

func newNode() *node {
	n := node{
		children: make(map[byte]*node),
	}
	n.rehash()

	return &n
}

// rehash recomputes the hash of the node from the hashes of its children
// in ascending key order followed by the stored value.
func (n *node) rehash() {
	keys := make([]int, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(strconv.Itoa(k))
		buf.WriteString(n.children[byte(k)].hash)
	}
	if n.value != nil {
		buf.WriteString(*n.value)
	}

	sum := sha256.Sum256(buf.Bytes())
	n.hash = hex.EncodeToString(sum[:])
}

// =============================================================================

// Trie represents a merkle radix trie.
type Trie struct {
	root *node
}

// NewTrie constructs an empty trie.
func NewTrie() *Trie {
	return &Trie{
		root: newNode(),
	}
}

// Insert stores the JSON encoding of the value under the hex encoded key.
// Every node on the path to the key is rehashed.
func (t *Trie) Insert(key string, value any) error {
	path, err := hex.DecodeString(key)
	if err != nil {
		return fmt.Errorf("decoding key %q: %w", key, err)
	}

	data, err := signature.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	encoded := string(data)

	nodes := make([]*node, 0, len(path)+1)
	n := t.root
	nodes = append(nodes, n)

	for _, b := range path {
		child, exists := n.children[b]
		if !exists {
			child = newNode()
			n.children[b] = child
		}
		n = child
		nodes = append(nodes, n)
	}

	n.value = &encoded

	for i := len(nodes) - 1; i >= 0; i-- {
		nodes[i].rehash()
	}

	return nil
}

// Get decodes the value stored under the key into v. It reports false if
// nothing is stored under the key.
func (t *Trie) Get(key string, v any) (bool, error) {
	path, err := hex.DecodeString(key)
	if err != nil {
		return false, fmt.Errorf("decoding key %q: %w", key, err)
	}

	n := t.root
	for _, b := range path {
		child, exists := n.children[b]
		if !exists {
			return false, nil
		}
		n = child
	}

	if n.value == nil {
		return false, nil
	}

	if err := json.Unmarshal([]byte(*n.value), v); err != nil {
		return false, fmt.Errorf("decoding value: %w", err)
	}

	return true, nil
}

// RootHash returns the hash of the root node. An empty trie hashes to the
// sha256 of the empty string.
func (t *Trie) RootHash() string {
	return t.root.hash
}
