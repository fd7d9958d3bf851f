package price_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/integr8/blockchain/foundation/price"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Price(t *testing.T) {
	t.Log("Given the need to look up market prices.")
	{
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Query().Get("ids") != "integr8" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(`{"integr8":{"usd":2.5}}`))
		}))
		defer srv.Close()

		o, err := price.New(price.Config{
			URL:      srv.URL,
			Timeout:  time.Second,
			TTL:      time.Minute,
			Fallback: 1,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the oracle: %v", failed, err)
		}
		defer o.Close()

		ctx := context.Background()

		if p := o.Price(ctx, "integr8"); p != 2.5 {
			t.Fatalf("\t%s\tShould get the market price, got %v", failed, p)
		}
		t.Logf("\t%s\tShould get the market price.", success)

		if v := o.Value(ctx, "integr8", 10); v != 25 {
			t.Fatalf("\t%s\tShould value the holdings, got %v", failed, v)
		}
		if calls.Load() != 1 {
			t.Fatalf("\t%s\tShould serve the second lookup from the cache, calls %d", failed, calls.Load())
		}
		t.Logf("\t%s\tShould serve the second lookup from the cache.", success)

		if p := o.Price(ctx, "unknown"); p != 1 {
			t.Fatalf("\t%s\tShould use the fallback price, got %v", failed, p)
		}
		if _, err := o.Lookup(ctx, "unknown"); err == nil {
			t.Fatalf("\t%s\tShould report the failed lookup.", failed)
		}
		t.Logf("\t%s\tShould use the fallback price.", success)
	}
}

func Test_NoMarket(t *testing.T) {
	t.Log("Given the need to run a node without a market.")
	{
		o, err := price.New(price.Config{Fallback: 0})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the oracle: %v", failed, err)
		}
		defer o.Close()

		if p := o.Price(context.Background(), "integr8"); p != 0 {
			t.Fatalf("\t%s\tShould use the fallback price, got %v", failed, p)
		}
		t.Logf("\t%s\tShould use the fallback price.", success)
	}
}
