package jenkins

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ExecuteScript runs a Groovy script on the controller via the /scriptText
// endpoint and returns the raw text output. Callers that need structured
// results should print delimiter markers from the script and extract the
// payload with ExtractMarkedPayload.
func (c *Client) ExecuteScript(ctx context.Context, script string) (string, error) {
	form := url.Values{}
	form.Set("script", script)

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "text/plain",
	}
	if f, cr, ok, _ := c.getCrumb(ctx); ok {
		headers[f] = cr
	}

	resp, err := c.call(ctx, c.HTTPClient, http.MethodPost, "/scriptText", strings.NewReader(form.Encode()), headers)
	if err != nil {
		return "", fmt.Errorf("failed to execute script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read script output: %w", err)
	}
	return string(body), nil
}

// ExtractMarkedPayload extracts the text between a start and end marker line
// in a script's output. Script output is a plain text channel that may carry
// incidental log noise before and after the payload, so the markers are the
// only reliable framing. Returns false if either marker is missing or they
// are out of order.
func ExtractMarkedPayload(output, startMarker, endMarker string) (string, bool) {
	start := strings.Index(output, startMarker)
	if start < 0 {
		return "", false
	}
	start += len(startMarker)
	end := strings.Index(output[start:], endMarker)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(output[start : start+end]), true
}
