package launcher

import (
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"sync"

	"seo-backend/internal/shared/telemetry"
)

// Handler answers the bootstrap route. GET / spawns the dashboard command as
// a detached child, exactly once across concurrent requests; other methods on
// / are a 405 and every other path is a 404. The child is not supervised.
type Handler struct {
	command string

	mu      sync.Mutex
	spawned bool
	spawn   func() error
}

// New constructs a Handler that spawns command on the first hit to /.
func New(command string) *Handler {
	h := &Handler{command: command}
	h.spawn = h.spawnProcess
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	first := !h.spawned
	var err error
	if first {
		// A failed spawn leaves the flag unset so the next request retries.
		if err = h.spawn(); err == nil {
			h.spawned = true
		}
	}
	h.mu.Unlock()

	if err != nil {
		telemetry.Error("launcher.spawn.failed", map[string]any{
			"command": h.command,
			"err":     err.Error(),
		})
		http.Error(w, "failed to launch dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if first {
		fmt.Fprintln(w, "Launching dashboard...")
		return
	}
	fmt.Fprintln(w, "Dashboard already launched.")
}

func (h *Handler) spawnProcess() error {
	fields := strings.Fields(h.command)
	if len(fields) == 0 {
		return fmt.Errorf("empty dashboard command")
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	telemetry.Info("launcher.spawned", map[string]any{
		"command": h.command,
		"pid":     cmd.Process.Pid,
	})
	// Reap the child when it exits so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
