package launcher

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func newCountingHandler() (*Handler, *int32) {
	h := New("./seo-backend-api")
	var spawns int32
	h.spawn = func() error {
		atomic.AddInt32(&spawns, 1)
		return nil
	}
	return h, &spawns
}

func TestRootSpawnsExactlyOnce(t *testing.T) {
	h, spawns := newCountingHandler()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(spawns); got != 1 {
		t.Fatalf("spawns = %d, want 1", got)
	}
}

func TestRootReturnsPlainText(t *testing.T) {
	h, _ := newCountingHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Launching dashboard") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestOtherPathsAreNotFound(t *testing.T) {
	h, spawns := newCountingHandler()

	for _, path := range []string{"/health", "/favicon.ico", "/dashboard"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("path %s: status = %d, want 404", path, rec.Code)
		}
	}
	if got := atomic.LoadInt32(spawns); got != 0 {
		t.Fatalf("spawns = %d, want 0", got)
	}
}

func TestSpawnFailureIsReported(t *testing.T) {
	h := New("")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestSpawnFailureAllowsRetry(t *testing.T) {
	h := New("./seo-backend-api")
	var spawns int32
	h.spawn = func() error {
		if atomic.AddInt32(&spawns, 1) == 1 {
			return errors.New("fork failed")
		}
		return nil
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("first status = %d, want 500", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("second status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Launching dashboard") {
		t.Fatalf("body = %q, want fresh launch message", rec.Body.String())
	}
	if got := atomic.LoadInt32(&spawns); got != 2 {
		t.Fatalf("spawns = %d, want 2", got)
	}
}

func TestNonGetMethodsOnRootAreRejected(t *testing.T) {
	h, spawns := newCountingHandler()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s /: status = %d, want 405", method, rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
			t.Fatalf("%s /: allow = %q, want GET", method, allow)
		}
	}
	if got := atomic.LoadInt32(spawns); got != 0 {
		t.Fatalf("spawns = %d, want 0", got)
	}
}
