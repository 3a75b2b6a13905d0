package audits

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"seo-backend/internal/llm"
	"seo-backend/internal/shared/telemetry"
)

const llmRetryDelay = 300 * time.Millisecond

// retryingLLM retries a generation once after a fixed delay when the failure
// looks transient. Schema or auth failures are returned as-is.
type retryingLLM struct {
	base    llm.Client
	auditID string
}

func newRetryingLLM(base llm.Client, auditID string) llm.Client {
	if base == nil {
		return nil
	}
	return retryingLLM{base: base, auditID: auditID}
}

func (r retryingLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	out, err := r.base.GenerateText(ctx, prompt)
	if err == nil || !shouldRetryLLM(err) {
		return out, err
	}

	telemetry.Info("audits.llm_retry", map[string]any{
		"audit_id": r.auditID,
		"error":    err.Error(),
	})
	select {
	case <-time.After(llmRetryDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.base.GenerateText(ctx, prompt)
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
