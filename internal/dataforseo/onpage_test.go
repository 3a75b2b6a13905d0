package dataforseo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const pollBudget = 5

func newStubServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newPollClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Config{
		Login:           "login",
		Password:        "password",
		BaseURL:         "https://seo.test/v3",
		PollMaxAttempts: pollBudget,
		PollInterval:    time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// pollStub serves task_post, the status endpoint, and the pages endpoint. The
// task reports ready on the readyOn-th status poll (0 means never).
type pollStub struct {
	readyOn     int
	statusPolls int
	pagesCalls  int
	failStatus  bool
}

func (s *pollStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/on_page/task_post", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tasks":[{"id":"task-123"}]}`)
	})
	mux.HandleFunc("/v3/on_page/tasks/task-123", func(w http.ResponseWriter, r *http.Request) {
		s.statusPolls++
		if s.failStatus {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		status := "crawling"
		if s.readyOn > 0 && s.statusPolls >= s.readyOn {
			status = "ready"
		}
		fmt.Fprintf(w, `{"tasks":[{"id":"task-123","status":%q}]}`, status)
	})
	mux.HandleFunc("/v3/on_page/pages/task-123", func(w http.ResponseWriter, r *http.Request) {
		s.pagesCalls++
		fmt.Fprint(w, `{"tasks":[{"id":"task-123","result":[{"items":[{"url":"https://example.com","status_code":200}]}]}]}`)
	})
	return mux
}

func TestRunOnPageAnalysisReadyWithinBudget(t *testing.T) {
	for readyOn := 1; readyOn <= pollBudget; readyOn++ {
		t.Run(fmt.Sprintf("ready_on_attempt_%d", readyOn), func(t *testing.T) {
			stub := &pollStub{readyOn: readyOn}
			srv := newStubServer(t, stub.handler())

			client := newPollClient(t)
			client.baseURL = srv.URL + "/v3"

			resp, err := client.RunOnPageAnalysis(context.Background(), "https://example.com")
			if err != nil {
				t.Fatalf("run on-page analysis: %v", err)
			}
			if report := FlattenOnPage(resp); report == nil || report.URL != "https://example.com" {
				t.Fatalf("report = %+v, want page for example.com", report)
			}
			if stub.statusPolls != readyOn {
				t.Fatalf("status polls = %d, want %d", stub.statusPolls, readyOn)
			}
			if stub.pagesCalls != 1 {
				t.Fatalf("pages calls = %d, want 1", stub.pagesCalls)
			}
		})
	}
}

func TestRunOnPageAnalysisBudgetExhausted(t *testing.T) {
	for _, readyOn := range []int{0, pollBudget + 1} {
		t.Run(fmt.Sprintf("ready_on_%d", readyOn), func(t *testing.T) {
			stub := &pollStub{readyOn: readyOn}
			srv := newStubServer(t, stub.handler())

			client := newPollClient(t)
			client.baseURL = srv.URL + "/v3"

			_, err := client.RunOnPageAnalysis(context.Background(), "https://example.com")
			if !errors.Is(err, ErrPollTimeout) {
				t.Fatalf("error = %v, want ErrPollTimeout", err)
			}
			if stub.statusPolls != pollBudget {
				t.Fatalf("status polls = %d, want %d", stub.statusPolls, pollBudget)
			}
			if stub.pagesCalls != 0 {
				t.Fatalf("pages calls = %d, want 0", stub.pagesCalls)
			}
		})
	}
}

func TestRunOnPageAnalysisTransportErrorsConsumeBudget(t *testing.T) {
	stub := &pollStub{failStatus: true}
	srv := newStubServer(t, stub.handler())

	client := newPollClient(t)
	client.baseURL = srv.URL + "/v3"

	_, err := client.RunOnPageAnalysis(context.Background(), "https://example.com")
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("error = %v, want ErrPollTimeout", err)
	}
	// The timeout error should surface the last poll failure.
	if got := err.Error(); !strings.Contains(got, "502") {
		t.Fatalf("error %q should mention the last poll failure", got)
	}
	if stub.statusPolls != pollBudget {
		t.Fatalf("status polls = %d, want %d", stub.statusPolls, pollBudget)
	}
}

func TestRunOnPageAnalysisContextCancelled(t *testing.T) {
	stub := &pollStub{}
	srv := newStubServer(t, stub.handler())

	client := newPollClient(t)
	client.baseURL = srv.URL + "/v3"
	client.pollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.RunOnPageAnalysis(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestSubmitOnPageTaskNoID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/on_page/task_post", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tasks":[]}`)
	})
	srv := newStubServer(t, mux)

	client := newPollClient(t)
	client.baseURL = srv.URL + "/v3"

	if _, err := client.SubmitOnPageTask(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error when no task id returned")
	}
}
