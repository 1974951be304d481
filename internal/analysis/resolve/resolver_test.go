package resolve_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smishguard/internal/analysis/resolve"
	"smishguard/internal/config"
	"smishguard/internal/infrastructure/cache"
	"smishguard/pkg/logger"
)

func newResolver(store cache.Store) *resolve.Resolver {
	cfg := config.AnalysisConfig{
		MaxRedirects:    4,
		ResolveTimeout:  2 * time.Second,
		ResolveCacheTTL: time.Minute,
	}
	return resolve.New(cfg, store, logger.NewDefault())
}

func setupServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/middle", http.StatusFound)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/deep/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, fmt.Sprintf("/deep/%d", time.Now().UnixNano()), http.StatusFound)
	})
	mux.HandleFunc("/no-head", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	return httptest.NewServer(mux)
}

func TestResolveChain(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	r := newResolver(nil)
	exp, err := r.Resolve(context.Background(), srv.URL+"/short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.RedirectCount != 2 {
		t.Fatalf("expected 2 redirects, got %d", exp.RedirectCount)
	}
	if exp.FinalURL != srv.URL+"/final" {
		t.Fatalf("expected final url %s/final, got %s", srv.URL, exp.FinalURL)
	}
	if len(exp.RedirectChain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(exp.RedirectChain))
	}
}

func TestResolveNoRedirect(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	r := newResolver(nil)
	exp, err := r.Resolve(context.Background(), srv.URL+"/final")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.RedirectCount != 0 {
		t.Fatalf("expected no redirects, got %d", exp.RedirectCount)
	}
	if exp.FinalURL != srv.URL+"/final" {
		t.Fatalf("final url must be the original, got %s", exp.FinalURL)
	}
}

func TestResolveLoopStops(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	r := newResolver(nil)
	exp, err := r.Resolve(context.Background(), srv.URL+"/loop")
	if err != nil {
		t.Fatalf("loops must resolve to a partial chain, got error %v", err)
	}
	if exp.FinalURL != srv.URL+"/loop" {
		t.Fatalf("expected final url to stay at the loop, got %s", exp.FinalURL)
	}
}

func TestResolveHopCap(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	r := newResolver(nil)
	exp, err := r.Resolve(context.Background(), srv.URL+"/deep/start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.RedirectCount != 4 {
		t.Fatalf("expected the chain capped at 4 hops, got %d", exp.RedirectCount)
	}
}

func TestResolveHeadFallback(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	r := newResolver(nil)
	exp, err := r.Resolve(context.Background(), srv.URL+"/no-head")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.FinalURL != srv.URL+"/final" {
		t.Fatalf("expected GET fallback to reach /final, got %s", exp.FinalURL)
	}
}

func TestResolveUnreachable(t *testing.T) {
	r := newResolver(nil)
	_, err := r.Resolve(context.Background(), "http://127.0.0.1:1/nothing")
	if err == nil {
		t.Fatal("expected error when the first hop is unreachable")
	}
}

func TestResolveUsesCache(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	store := cache.NewMemoryStore(16)
	r := newResolver(store)

	first, err := r.Resolve(context.Background(), srv.URL+"/short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	srv.Close() // second call must be served from cache

	second, err := r.Resolve(context.Background(), srv.URL+"/short")
	if err != nil {
		t.Fatalf("expected cache hit, got error %v", err)
	}
	if second.FinalURL != first.FinalURL {
		t.Fatalf("cached result mismatch: %s vs %s", second.FinalURL, first.FinalURL)
	}
}
