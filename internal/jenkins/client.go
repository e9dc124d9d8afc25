// Package jenkins implements the REST client for a Jenkins controller. It is
// stateless per call and safe for concurrent use; callers share one Client
// for the lifetime of the process.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client issues authenticated calls against one Jenkins controller.
type Client struct {
	URL   string
	User  string
	Token string

	HTTPClient *http.Client
	LogsClient *http.Client

	Log zerolog.Logger
}

// New builds a Client with sensible default HTTP clients.
func New(baseURL, user, token string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		URL:        strings.TrimRight(baseURL, "/"),
		User:       user,
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
		LogsClient: &http.Client{Timeout: 2 * timeout},
		Log:        log,
	}
}

// JobPath builds a Jenkins job path supporting nested folders.
// Example: "folder1/folder2/jobName" -> "/job/folder1/job/folder2/job/jobName"
func JobPath(jobName string) string {
	segs := strings.Split(jobName, "/")
	var b strings.Builder
	for _, s := range segs {
		if s == "" {
			continue
		}
		b.WriteString("/job/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// call builds the URL (absolute or relative to base), attaches auth and headers,
// and executes the request. If apiPath starts with http:// or https://, it is
// treated as an absolute URL; otherwise it is appended to c.URL. Default Accept
// header is application/json unless overridden via headers.
func (c *Client) call(
	ctx context.Context,
	client *http.Client,
	method string,
	apiPath string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	if client == nil {
		client = c.HTTPClient
	}
	base := strings.TrimRight(c.URL, "/")
	var fullURL string
	switch {
	case strings.HasPrefix(apiPath, "http://") || strings.HasPrefix(apiPath, "https://"):
		fullURL = apiPath
	case strings.HasPrefix(apiPath, "/"):
		fullURL = base + apiPath
	case apiPath == "":
		fullURL = base
	default:
		fullURL = base + "/" + apiPath
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.User, c.Token)
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["Accept"]; !ok {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return client.Do(req)
}

// getCrumb fetches Jenkins CSRF crumb and header field name.
func (c *Client) getCrumb(ctx context.Context) (field, crumb string, ok bool, err error) {
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, "/crumbIssuer/api/json", nil, nil)
	if err != nil {
		return "", "", false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		// Crumbs disabled
		return "", "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		// Don't fail the POST if the crumb endpoint errors; treat as no crumb
		return "", "", false, nil
	}
	var data struct {
		Field string `json:"crumbRequestField"`
		Crumb string `json:"crumb"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", "", false, nil
	}
	if data.Field == "" || data.Crumb == "" {
		return "", "", false, nil
	}
	return data.Field, data.Crumb, true, nil
}

// ListPipelines fetches all jobs from the Jenkins root API.
func (c *Client) ListPipelines(ctx context.Context) ([]Pipeline, error) {
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, "/api/json?tree="+
		"jobs["+
		"name,url,color,buildable,description,"+
		"lastBuild[number,url,building,result,timestamp,duration,estimatedDuration,displayName]"+
		"]", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Jobs []struct {
			Pipeline
			Class string `json:"_class"`
		} `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	pipelines := make([]Pipeline, 0, len(apiResp.Jobs))
	for _, j := range apiResp.Jobs {
		p := j.Pipeline
		p.Class = j.Class
		pipelines = append(pipelines, p)
	}
	return pipelines, nil
}

// GetPipeline fetches a specific job by name, including parameter definitions
// and the ten most recent builds.
func (c *Client) GetPipeline(ctx context.Context, jobName string) (*Pipeline, error) {
	jobPath := JobPath(jobName)

	apiPath := jobPath + "/api/json?tree=" +
		"name,url,color,buildable,description," +
		"lastBuild[" +
		"number,url,building,result,timestamp,duration,estimatedDuration,displayName" +
		"]," +
		"builds[" +
		"number,url,building,result,timestamp,duration,estimatedDuration,displayName" +
		"]{0,10}," +
		"property[parameterDefinitions[name,type,description,defaultParameterValue[value],choices]]"
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, apiPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("pipeline '%s' not found", jobName)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	var jobData struct {
		Name        string  `json:"name"`
		URL         string  `json:"url"`
		Color       string  `json:"color"`
		Buildable   bool    `json:"buildable"`
		Description string  `json:"description"`
		LastBuild   *Build  `json:"lastBuild"`
		Builds      []Build `json:"builds"`
		Property    []struct {
			ParameterDefinitions []struct {
				Name                  string `json:"name"`
				Type                  string `json:"type"`
				Description           string `json:"description"`
				DefaultParameterValue *struct {
					Value any `json:"value"`
				} `json:"defaultParameterValue"`
				Choices []string `json:"choices"`
			} `json:"parameterDefinitions"`
		} `json:"property"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&jobData); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	recentBuilds := make([]Build, len(jobData.Builds))
	copy(recentBuilds, jobData.Builds)
	// Most recent first
	sort.Slice(recentBuilds, func(i, j int) bool {
		return recentBuilds[i].Number > recentBuilds[j].Number
	})

	pipeline := &Pipeline{
		Name:         jobData.Name,
		URL:          jobData.URL,
		Color:        jobData.Color,
		Buildable:    jobData.Buildable,
		Description:  jobData.Description,
		LastBuild:    jobData.LastBuild,
		RecentBuilds: recentBuilds,
		Parameters:   []BuildParameter{},
	}

	for _, property := range jobData.Property {
		for _, paramDef := range property.ParameterDefinitions {
			param := BuildParameter{
				Name:        paramDef.Name,
				Type:        paramDef.Type,
				Description: paramDef.Description,
				Choices:     paramDef.Choices,
			}
			if paramDef.DefaultParameterValue != nil {
				param.DefaultValue = paramDef.DefaultParameterValue.Value
			}
			pipeline.Parameters = append(pipeline.Parameters, param)
		}
	}

	return pipeline, nil
}

// GetBuilds fetches up to limit builds of a job, most recent first.
func (c *Client) GetBuilds(ctx context.Context, jobName string, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = 20
	}
	jobPath := JobPath(jobName)
	apiPath := fmt.Sprintf("%s/api/json?tree=builds[number,url,building,result,timestamp,duration,estimatedDuration,displayName]{0,%d}", jobPath, limit)
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, apiPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("pipeline '%s' not found", jobName)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	var data struct {
		Builds []Build `json:"builds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return data.Builds, nil
}

// GetBuildInfo fetches detailed information about a specific build.
func (c *Client) GetBuildInfo(ctx context.Context, jobName string, buildNumber int) (*Build, error) {
	jobPath := JobPath(jobName)
	apiPath := fmt.Sprintf("%s/%d/api/json", jobPath, buildNumber)
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, apiPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("pipeline '%s' build #%d not found", jobName, buildNumber)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	var build Build
	if err := json.NewDecoder(resp.Body).Decode(&build); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &build, nil
}

// GetJobConfig fetches the raw configuration document (config.xml) of a job.
func (c *Client) GetJobConfig(ctx context.Context, jobName string) (string, error) {
	apiPath := JobPath(jobName) + "/config.xml"
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, apiPath, nil, map[string]string{"Accept": "application/xml"})
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("pipeline '%s' not found", jobName)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// TriggerBuild triggers a job, optionally with parameters. It always uses the
// buildWithParameters endpoint since that works for both parameterized and
// non-parameterized jobs, and polls the queue item for the assigned build.
func (c *Client) TriggerBuild(ctx context.Context, jobName string, params map[string]any) (*TriggerResult, error) {
	apiPath := JobPath(jobName) + "/buildWithParameters"

	form := url.Values{}
	for k, v := range params {
		form.Set(k, fmt.Sprint(v))
	}
	body := strings.NewReader(form.Encode())

	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	if f, cr, ok, _ := c.getCrumb(ctx); ok {
		headers[f] = cr
	}
	resp, err := c.call(ctx, c.HTTPClient, http.MethodPost, apiPath, body, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to start build: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Jenkins typically returns a queue item URL in Location, but it may point
	// directly to the build URL if it started immediately.
	loc := resp.Header.Get("Location")
	result := &TriggerResult{JobName: jobName}
	if loc != "" {
		if strings.Contains(loc, "/queue/item/") {
			result.QueueURL = loc
			if queueID := extractQueueID(loc); queueID != "" {
				if buildNumber, buildURL := c.getQueueItemDetails(ctx, queueID); buildNumber > 0 {
					result.BuildNumber = buildNumber
					result.BuildURL = buildURL
				}
			}
		} else if bn := parseBuildNumberFromURL(loc); bn > 0 {
			result.BuildNumber = bn
			result.BuildURL = loc
		}
	}

	c.Log.Info().Str("pipeline", jobName).Int("build", result.BuildNumber).Msg("build triggered")
	return result, nil
}

// extractQueueID extracts the queue item ID from a queue URL like
// "https://jenkins.example.com/queue/item/19069/".
func extractQueueID(queueURL string) string {
	parts := strings.Split(strings.TrimSuffix(queueURL, "/"), "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

// getQueueItemDetails polls a queue item for its build number and URL, up to
// 60s with arithmetic backoff 1s, 2s, ...
func (c *Client) getQueueItemDetails(ctx context.Context, queueID string) (int, string) {
	apiPath := "/queue/item/" + queueID + "/api/json"

	start := time.Now()
	attempt := 0
	for {
		if time.Since(start) >= 60*time.Second {
			break
		}

		resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, apiPath, nil, nil)
		if err == nil {
			if resp.StatusCode == http.StatusOK {
				var queueItem struct {
					ID         int `json:"id"`
					Executable struct {
						Number int    `json:"number"`
						URL    string `json:"url"`
					} `json:"executable"`
				}
				if err := json.NewDecoder(resp.Body).Decode(&queueItem); err == nil {
					resp.Body.Close()
					if queueItem.Executable.Number > 0 {
						return queueItem.Executable.Number, queueItem.Executable.URL
					}
				} else {
					resp.Body.Close()
				}
			} else {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}

		attempt++
		next := time.Duration(attempt) * time.Second
		remaining := 60*time.Second - time.Since(start)
		if remaining <= 0 {
			break
		}
		if next > remaining {
			next = remaining
		}
		select {
		case <-ctx.Done():
			return 0, ""
		case <-time.After(next):
		}
	}

	return 0, ""
}

// StopBuild aborts a running build.
func (c *Client) StopBuild(ctx context.Context, jobName string, buildNumber int) error {
	apiPath := fmt.Sprintf("%s/%d/stop", JobPath(jobName), buildNumber)
	headers := map[string]string{}
	if f, cr, ok, _ := c.getCrumb(ctx); ok {
		headers[f] = cr
	}
	resp, err := c.call(ctx, c.HTTPClient, http.MethodPost, apiPath, nil, headers)
	if err != nil {
		return fmt.Errorf("failed to stop build: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// SetEnabled enables or disables a job.
func (c *Client) SetEnabled(ctx context.Context, jobName string, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}
	apiPath := JobPath(jobName) + "/" + action
	headers := map[string]string{}
	if f, cr, ok, _ := c.getCrumb(ctx); ok {
		headers[f] = cr
	}
	resp, err := c.call(ctx, c.HTTPClient, http.MethodPost, apiPath, nil, headers)
	if err != nil {
		return fmt.Errorf("failed to %s pipeline: %w", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// GetQueue fetches queued builds from the Jenkins queue API.
func (c *Client) GetQueue(ctx context.Context) ([]QueuedBuild, error) {
	resp, err := c.call(ctx, c.HTTPClient, http.MethodGet, "/queue/api/json?tree=items[id,task[name,url],why,inQueueSince,stuck,buildable,params]", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	var queueResp struct {
		Items []struct {
			ID   int `json:"id"`
			Task struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"task"`
			Why          string `json:"why"`
			InQueueSince int64  `json:"inQueueSince"`
			Stuck        bool   `json:"stuck"`
			Buildable    bool   `json:"buildable"`
			Params       string `json:"params"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queueResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	queued := make([]QueuedBuild, 0, len(queueResp.Items))
	for _, it := range queueResp.Items {
		queued = append(queued, QueuedBuild{
			JobName:     it.Task.Name,
			URL:         it.Task.URL,
			QueueID:     it.ID,
			Why:         it.Why,
			QueuedSince: TimeMS(time.Unix(0, it.InQueueSince*int64(time.Millisecond))),
			Stuck:       it.Stuck,
			Buildable:   it.Buildable,
			Parameters:  strings.TrimSpace(it.Params),
		})
	}
	return queued, nil
}

// GetBuildLogs fetches build logs with pagination via the progressiveText API.
func (c *Client) GetBuildLogs(ctx context.Context, jobName string, buildNumber, offset, length int) (*BuildLogs, error) {
	jobPath := JobPath(jobName)

	apiPath := fmt.Sprintf("%s/%d/logText/progressiveText?start=%d", jobPath, buildNumber, offset)
	resp, err := c.call(ctx, c.LogsClient, http.MethodGet, apiPath, nil, map[string]string{"Accept": "text/plain"})
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("pipeline '%s' build #%d not found", jobName, buildNumber)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	logData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logs := string(logData)
	logs = logs[:min(len(logs), length)]

	hasMore := false
	totalSize := offset + len(logData)

	// The progressive text API reports total log size in X-Text-Size.
	if textSizeHeader := resp.Header.Get("X-Text-Size"); textSizeHeader != "" {
		if size, err := strconv.Atoi(textSizeHeader); err == nil {
			totalSize = size
			hasMore = offset+len(logs) < totalSize
		}
	} else {
		// No header: assume there might be more if we got exactly what we asked for
		hasMore = len(logData) > 0 && len(logs) == length
	}

	// X-More-Data indicates the build is still running.
	if resp.Header.Get("X-More-Data") == "true" {
		hasMore = true
	}

	return &BuildLogs{
		JobName:     jobName,
		BuildNumber: buildNumber,
		Offset:      offset,
		Length:      len(logs),
		TotalSize:   totalSize,
		HasMore:     hasMore,
		Logs:        logs,
	}, nil
}

// GetBuildLogTail fetches the last maxLength bytes of a build's log.
func (c *Client) GetBuildLogTail(ctx context.Context, jobName string, buildNumber, maxLength int) (*BuildLogs, error) {
	jobPath := JobPath(jobName)

	// First request learns the total size from X-Text-Size.
	sizePath := fmt.Sprintf("%s/%d/logText/progressiveText?start=0", jobPath, buildNumber)
	resp, err := c.call(ctx, c.LogsClient, http.MethodGet, sizePath, nil, map[string]string{"Accept": "text/plain"})
	if err != nil {
		return nil, fmt.Errorf("failed to make size request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("pipeline '%s' build #%d not found", jobName, buildNumber)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", resp.StatusCode, string(body))
	}

	totalSize := 0
	if textSizeHeader := resp.Header.Get("X-Text-Size"); textSizeHeader != "" {
		if size, err := strconv.Atoi(textSizeHeader); err == nil {
			totalSize = size
		}
	}

	if totalSize == 0 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		totalSize = len(body)

		if totalSize <= maxLength {
			return &BuildLogs{
				JobName:     jobName,
				BuildNumber: buildNumber,
				Offset:      0,
				Length:      totalSize,
				TotalSize:   totalSize,
				HasMore:     false,
				Logs:        string(body),
			}, nil
		}
	}

	offset := max(0, totalSize-maxLength)
	maxLength = min(maxLength, totalSize)

	tailPath := fmt.Sprintf("%s/%d/logText/progressiveText?start=%d", jobPath, buildNumber, offset)
	tailResp, err := c.call(ctx, c.LogsClient, http.MethodGet, tailPath, nil, map[string]string{"Accept": "text/plain"})
	if err != nil {
		return nil, fmt.Errorf("failed to make tail request: %w", err)
	}
	defer tailResp.Body.Close()

	if tailResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(tailResp.Body)
		return nil, fmt.Errorf("jenkins api returned status %d: %s", tailResp.StatusCode, string(body))
	}

	logData, err := io.ReadAll(tailResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tail response body: %w", err)
	}

	logs := string(logData)
	keep := min(len(logs), maxLength)
	logs = logs[len(logs)-keep:]
	offset = totalSize - len(logs)

	hasMore := tailResp.Header.Get("X-More-Data") == "true"

	return &BuildLogs{
		JobName:     jobName,
		BuildNumber: buildNumber,
		Offset:      offset,
		Length:      len(logs),
		TotalSize:   totalSize,
		HasMore:     hasMore,
		Logs:        logs,
	}, nil
}

// WaitForBuild polls a build until it completes or the timeout elapses.
func (c *Client) WaitForBuild(ctx context.Context, jobName string, buildNumber, timeoutSeconds int) (*WaitResult, error) {
	startTime := time.Now()
	timeout := time.Duration(timeoutSeconds) * time.Second
	pollInterval := 5 * time.Second

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeoutCtx.Done():
			waitTime := time.Since(startTime)
			return &WaitResult{
				JobName:     jobName,
				BuildNumber: buildNumber,
				Status:      "timeout",
				Result:      "",
				Duration:    DurationMS(0),
				WaitTime:    DurationMS(waitTime),
				TimedOut:    true,
			}, nil

		case <-ticker.C:
			build, err := c.GetBuildInfo(ctx, jobName, buildNumber)
			if err != nil {
				// The build may not have started yet; keep polling.
				continue
			}

			if !build.Building {
				waitTime := time.Since(startTime)

				var status string
				switch build.Result {
				case "SUCCESS":
					status = "success"
				case "FAILURE":
					status = "failure"
				case "UNSTABLE":
					status = "unstable"
				case "ABORTED":
					status = "aborted"
				default:
					status = "unknown"
				}

				return &WaitResult{
					JobName:     jobName,
					BuildNumber: buildNumber,
					Status:      status,
					Result:      build.Result,
					Duration:    build.Duration,
					WaitTime:    DurationMS(waitTime),
					TimedOut:    false,
				}, nil
			}
		}
	}
}

// parseBuildNumberFromURL extracts the trailing numeric segment from a Jenkins build URL.
func parseBuildNumberFromURL(u string) int {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	parts := strings.Split(strings.TrimSuffix(u, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	last := parts[len(parts)-1]
	n, err := strconv.Atoi(last)
	if err != nil {
		return 0
	}
	return n
}
