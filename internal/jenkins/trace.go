package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetExecutionTrace fetches the stage-level execution record of one build from
// the workflow introspection API (wfapi/describe). The API exposes stage names
// and timings, not the literal step commands that ran.
func (c *Client) GetExecutionTrace(ctx context.Context, jobName string, buildNumber int) (*ExecutionTrace, error) {
	apiPath := fmt.Sprintf("%s/%d/wfapi/describe", JobPath(jobName), buildNumber)
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, apiPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no execution data for '%s' build #%d", jobName, buildNumber)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	var trace ExecutionTrace
	if err := json.NewDecoder(resp.Body).Decode(&trace); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if trace.TotalDurationMS < 0 {
		trace.TotalDurationMS = 0
	}
	for i := range trace.Stages {
		if trace.Stages[i].DurationMS < 0 {
			trace.Stages[i].DurationMS = 0
		}
	}
	return &trace, nil
}
