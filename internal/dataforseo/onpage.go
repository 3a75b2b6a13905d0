package dataforseo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seo-backend/internal/shared/metrics"
	"seo-backend/internal/shared/telemetry"
)

// ErrPollTimeout is returned when the on-page task does not report ready
// within the fixed attempt budget.
var ErrPollTimeout = errors.New("timed out waiting for on-page analysis to complete")

const onPageStatusReady = "ready"

// SubmitOnPageTask posts an on-page crawl task for the target URL and returns
// the opaque task handle used for polling.
func (c *Client) SubmitOnPageTask(ctx context.Context, target string) (string, error) {
	resp, err := c.post(ctx, "on_page/task_post", map[string]any{
		"target":            target,
		"max_crawl_pages":   10,
		"load_resources":    true,
		"enable_javascript": true,
		"custom_js":         "meta = {}; meta.title = document.title; meta;",
	})
	if err != nil {
		return "", err
	}
	if len(resp.Tasks) == 0 || resp.Tasks[0].ID == "" {
		return "", fmt.Errorf("on_page/task_post: no task id in response")
	}
	return resp.Tasks[0].ID, nil
}

// OnPageTaskStatus queries the status endpoint for the task handle.
func (c *Client) OnPageTaskStatus(ctx context.Context, taskID string) (*Response, error) {
	return c.get(ctx, "on_page/tasks/"+taskID)
}

// OnPagePages fetches the crawled page results for a ready task.
func (c *Client) OnPagePages(ctx context.Context, taskID string) (*Response, error) {
	return c.get(ctx, "on_page/pages/"+taskID)
}

// RunOnPageAnalysis submits a crawl task for the target URL, polls its status
// with a fixed attempt budget and fixed interval (no backoff, no jitter), and
// fetches the results once the task reports ready. Each attempt consumes one
// unit of the budget whether the task was still pending or the poll itself
// failed in transit; transport failures are logged distinctly and the last one
// is attached to the timeout error so callers can tell the two apart.
func (c *Client) RunOnPageAnalysis(ctx context.Context, target string) (*Response, error) {
	taskID, err := c.SubmitOnPageTask(ctx, target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.pollMaxAttempts; attempt++ {
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		metrics.IncPollAttempt()
		status, err := c.OnPageTaskStatus(ctx, taskID)
		if err != nil {
			lastErr = err
			telemetry.Error("onpage.poll_failed", map[string]any{
				"task_id": taskID,
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}
		if len(status.Tasks) == 0 {
			continue
		}
		if status.Tasks[0].Status == onPageStatusReady {
			metrics.ObservePollDuration(time.Since(start))
			return c.OnPagePages(ctx, taskID)
		}
	}

	metrics.ObservePollDuration(time.Since(start))
	if lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts (last poll error: %v)", ErrPollTimeout, c.pollMaxAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrPollTimeout, c.pollMaxAttempts)
}
