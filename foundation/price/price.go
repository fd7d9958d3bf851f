// Package price looks up the market price of chain assets. Lookups are best
// effort: results are cached and a fallback price is used when the market
// can't be reached.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Config represents the configuration for the oracle.
type Config struct {
	URL       string
	Currency  string
	Timeout   time.Duration
	TTL       time.Duration
	Fallback  float64
	EvHandler func(v string, args ...any)
}

// Oracle provides cached market prices.
type Oracle struct {
	url       string
	currency  string
	ttl       time.Duration
	fallback  float64
	client    *http.Client
	cache     *ristretto.Cache
	evHandler func(v string, args ...any)
}

// New constructs an oracle for the market at the url.
func New(cfg Config) (*Oracle, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing price cache: %w", err)
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	o := Oracle{
		url:       cfg.URL,
		currency:  currency,
		ttl:       cfg.TTL,
		fallback:  cfg.Fallback,
		client:    &http.Client{Timeout: timeout},
		cache:     cache,
		evHandler: ev,
	}

	return &o, nil
}

// Close releases the cache.
func (o *Oracle) Close() {
	o.cache.Close()
}

// Price returns the market price of the asset, or the fallback price when
// the market can't provide one.
func (o *Oracle) Price(ctx context.Context, asset string) float64 {
	price, err := o.Lookup(ctx, asset)
	if err != nil {
		o.evHandler("price: Price: asset[%s]: using fallback[%v]: ERROR: %s", asset, o.fallback, err)
		return o.fallback
	}
	return price
}

// Value returns the market value of the amount of the asset.
func (o *Oracle) Value(ctx context.Context, asset string, amount float64) float64 {
	return amount * o.Price(ctx, asset)
}

// Lookup returns the market price of the asset from the cache or the market.
func (o *Oracle) Lookup(ctx context.Context, asset string) (float64, error) {
	if v, found := o.cache.Get(asset); found {
		return v.(float64), nil
	}

	if o.url == "" {
		return 0, fmt.Errorf("no market configured")
	}

	price, err := o.fetch(ctx, asset)
	if err != nil {
		return 0, err
	}

	if o.ttl > 0 {
		o.cache.SetWithTTL(asset, price, 1, o.ttl)
		o.cache.Wait()
	}

	return price, nil
}

// fetch asks the market for the price. The market answers with a document
// of the form {"<asset>": {"<currency>": price}}.
func (o *Oracle) fetch(ctx context.Context, asset string) (float64, error) {
	q := url.Values{}
	q.Set("ids", asset)
	q.Set("vs_currencies", o.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("market responded with status %d", resp.StatusCode)
	}

	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return 0, fmt.Errorf("decoding market response: %w", err)
	}

	price, exists := prices[asset][o.currency]
	if !exists {
		return 0, fmt.Errorf("market has no %s price for %s", o.currency, asset)
	}

	return price, nil
}
