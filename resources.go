package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/redact"
)

const pipelineSummaryTemplate = "jenkins://pipelines/{name}/summary"

func (app *application) addResources(s *mcp.Server) {
	s.AddResource(&mcp.Resource{
		Name:        "jenkins_status",
		URI:         "jenkins://status",
		Description: "Overall Jenkins instance status and pipeline counts",
		MIMEType:    "application/json",
	}, app.handleStatusResource)

	s.AddResource(&mcp.Resource{
		Name:        "jenkins_dashboard",
		URI:         "jenkins://dashboard",
		Description: "Dashboard snapshot of all pipelines with their last build status",
		MIMEType:    "application/json",
	}, app.handleDashboardResource)

	s.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "pipeline_summary",
		URITemplate: pipelineSummaryTemplate,
		Description: "Comprehensive summary of one pipeline: details, recent builds, and a redacted log tail",
		MIMEType:    "application/json",
	}, app.handlePipelineSummaryResource)
}

func (app *application) handleStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	pipelines, err := app.client.ListPipelines(ctx)
	if err != nil {
		return nil, err
	}

	var buildable, failing int
	for _, p := range pipelines {
		if p.Buildable {
			buildable++
		}
		if strings.HasPrefix(p.Color, "red") {
			failing++
		}
	}

	queueLength := 0
	if queue, err := app.client.GetQueue(ctx); err == nil {
		queueLength = len(queue)
	}

	status := map[string]any{
		"jenkins_url":     app.cfg.JenkinsURL,
		"total_pipelines": len(pipelines),
		"buildable":       buildable,
		"failing":         failing,
		"queue_length":    queueLength,
		"last_updated":    time.Now().Format(time.RFC3339),
	}
	return jsonResource(req.Params.URI, status)
}

func (app *application) handleDashboardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	pipelines, err := app.client.ListPipelines(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(pipelines))
	for _, p := range pipelines {
		entry := map[string]any{
			"name":      p.Name,
			"url":       p.URL,
			"color":     p.Color,
			"buildable": p.Buildable,
		}
		if p.LastBuild != nil {
			entry["last_build_number"] = p.LastBuild.Number
			entry["last_build_status"] = p.LastBuild.Result
		}
		entries = append(entries, entry)
	}

	dashboard := map[string]any{
		"total_pipelines":     len(pipelines),
		"pipelines":           entries,
		"dashboard_generated": time.Now().Format(time.RFC3339),
	}
	return jsonResource(req.Params.URI, dashboard)
}

func (app *application) handlePipelineSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	name, err := pipelineNameFromSummaryURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	pipeline, err := app.client.GetPipeline(ctx, name)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"pipeline":          pipeline,
		"summary_generated": time.Now().Format(time.RFC3339),
	}

	// Attach a scrubbed tail of the last completed build's log. Log text may
	// carry credentials, so it never leaves the server unredacted.
	if pipeline.LastBuild != nil && pipeline.LastBuild.Number > 0 {
		if logs, err := app.client.GetBuildLogTail(ctx, name, pipeline.LastBuild.Number, 4096); err == nil {
			summary["last_build_log_tail"] = redact.Scrub(logs.Logs)
		}
	}

	return jsonResource(req.Params.URI, summary)
}

// pipelineNameFromSummaryURI extracts the pipeline name from a
// jenkins://pipelines/{name}/summary URI. Folder paths arrive URL-escaped.
func pipelineNameFromSummaryURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "jenkins://pipelines/")
	if !ok {
		return "", fmt.Errorf("unexpected resource URI: %s", uri)
	}
	rest, ok = strings.CutSuffix(rest, "/summary")
	if !ok || rest == "" {
		return "", fmt.Errorf("unexpected resource URI: %s", uri)
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("invalid pipeline name in URI %s: %w", uri, err)
	}
	return name, nil
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		}},
	}, nil
}
