package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/integr8/blockchain/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Handle(t *testing.T) {
	t.Log("Given the need to route requests through the middleware chain.")
	{
		var order []string
		mw := func(name string) web.Middleware {
			return func(handler web.Handler) web.Handler {
				return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					order = append(order, name)
					return handler(ctx, w, r)
				}
			}
		}

		app := web.NewApp(make(chan os.Signal, 1), mw("app"))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := web.GetValues(ctx)
			if err != nil {
				return err
			}
			if v.TraceID == "" {
				return errors.New("missing trace id")
			}

			data := struct {
				Hash string `json:"hash"`
			}{
				Hash: web.Param(r, "hash"),
			}
			return web.Respond(ctx, w, data, http.StatusOK)
		}
		app.Handle(http.MethodGet, "api", "/block/:hash", h, mw("route"))

		r := httptest.NewRequest(http.MethodGet, "/api/block/abc", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200.", success)

		if !strings.Contains(w.Body.String(), `"hash":"abc"`) {
			t.Fatalf("\t%s\tShould receive the route parameter : %s", failed, w.Body.String())
		}
		t.Logf("\t%s\tShould receive the route parameter.", success)

		if len(order) != 2 || order[0] != "app" || order[1] != "route" {
			t.Fatalf("\t%s\tShould run the app middleware first : %v", failed, order)
		}
		t.Logf("\t%s\tShould run the app middleware first.", success)
	}
}

func Test_Shutdown(t *testing.T) {
	t.Log("Given the need to shut down on an integrity failure.")
	{
		shutdown := make(chan os.Signal, 1)
		app := web.NewApp(shutdown)

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return web.NewShutdownError("integrity failure")
		}
		app.Handle(http.MethodGet, "", "/fail", h)

		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

		select {
		case <-shutdown:
			t.Logf("\t%s\tShould signal a shutdown.", success)
		default:
			t.Fatalf("\t%s\tShould signal a shutdown.", failed)
		}

		if !web.IsShutdown(web.NewShutdownError("x")) || web.IsShutdown(errors.New("x")) {
			t.Fatalf("\t%s\tShould identify shutdown errors.", failed)
		}
		t.Logf("\t%s\tShould identify shutdown errors.", success)
	}
}

func Test_Redirect(t *testing.T) {
	t.Log("Given the need to redirect a request.")
	{
		app := web.NewApp(make(chan os.Signal, 1))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return web.Redirect(ctx, w, r, "/api/blockchain/blocks", http.StatusFound)
		}
		app.Handle(http.MethodGet, "", "/mine", h)

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mine", nil))

		if w.Code != http.StatusFound || w.Header().Get("Location") != "/api/blockchain/blocks" {
			t.Fatalf("\t%s\tShould redirect to the blocks : %d %q", failed, w.Code, w.Header().Get("Location"))
		}
		t.Logf("\t%s\tShould redirect to the blocks.", success)
	}
}
