package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/health"
	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
	"github.com/heniv96/mcp-jenkins-intelligence/internal/recon"
)

// ListPipelinesToolArgs are the tool arguments for jenkins_list_pipelines.
type ListPipelinesToolArgs struct {
	Search string `json:"search,omitempty" jsonschema:"Case-insensitive substring filter on pipeline name or description"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of pipelines to return (default: 50)" default:"50"`
}

// ListPipelinesToolResponse is the result payload for jenkins_list_pipelines.
type ListPipelinesToolResponse struct {
	Pipelines []jenkins.Pipeline `json:"pipelines"`
}

// GetPipelineToolArgs are the tool arguments for jenkins_get_pipeline.
type GetPipelineToolArgs struct {
	Name string `json:"name" jsonschema:"Name of the Jenkins pipeline to retrieve"`
}

// GetPipelineBuildsToolArgs are the tool arguments for jenkins_get_pipeline_builds.
type GetPipelineBuildsToolArgs struct {
	Name   string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of builds to return (default: 10)" default:"10"`
	Status string `json:"status,omitempty" jsonschema:"Only return builds with this status (e.g. SUCCESS, FAILURE, RUNNING)"`
}

// GetPipelineBuildsToolResponse is the result payload for jenkins_get_pipeline_builds.
type GetPipelineBuildsToolResponse struct {
	Name   string          `json:"name"`
	Builds []jenkins.Build `json:"builds"`
}

// GetBuildLogsToolArgs are the tool arguments for jenkins_get_build_logs.
type GetBuildLogsToolArgs struct {
	Name        string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	BuildNumber int    `json:"build_number" jsonschema:"Build number"`
	Offset      int    `json:"offset,omitempty" jsonschema:"Starting byte offset in the log file (default: 0)" default:"0"`
	Length      int    `json:"length,omitempty" jsonschema:"Maximum number of bytes to retrieve (default: 8192)" default:"8192"`
}

// GetBuildLogTailToolArgs are the tool arguments for jenkins_get_build_log_tail.
type GetBuildLogTailToolArgs struct {
	Name        string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	BuildNumber int    `json:"build_number" jsonschema:"Build number"`
	MaxLength   int    `json:"max_length,omitempty" jsonschema:"Maximum bytes from end of log to retrieve (default: 8192)" default:"8192"`
}

// TriggerBuildToolArgs are the tool arguments for jenkins_trigger_build.
type TriggerBuildToolArgs struct {
	Name       string         `json:"name" jsonschema:"Name/path of the Jenkins pipeline (supports folders)"`
	Parameters map[string]any `json:"parameters,omitempty" jsonschema:"Optional key/value map of build parameters"`
}

// StopBuildToolArgs are the tool arguments for jenkins_stop_build.
type StopBuildToolArgs struct {
	Name        string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	BuildNumber int    `json:"build_number" jsonschema:"Build number to stop"`
}

// StopBuildToolResponse is the result payload for jenkins_stop_build.
type StopBuildToolResponse struct {
	Name        string `json:"name"`
	BuildNumber int    `json:"buildNumber"`
	Stopped     bool   `json:"stopped"`
}

// SetPipelineEnabledToolArgs are the tool arguments for jenkins_set_pipeline_enabled.
type SetPipelineEnabledToolArgs struct {
	Name    string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	Enabled bool   `json:"enabled" jsonschema:"true to enable the pipeline, false to disable it"`
}

// SetPipelineEnabledToolResponse is the result payload for jenkins_set_pipeline_enabled.
type SetPipelineEnabledToolResponse struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// WaitForBuildToolArgs are the tool arguments for jenkins_wait_for_build.
type WaitForBuildToolArgs struct {
	Name           string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	BuildNumber    int    `json:"build_number" jsonschema:"Build number"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"Maximum time to wait in seconds (default: 600)" default:"600"`
}

// GetPipelineConfigToolArgs are the tool arguments for jenkins_get_pipeline_config.
type GetPipelineConfigToolArgs struct {
	Name string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
}

// GetQueueToolArgs are the tool arguments for jenkins_get_queue.
type GetQueueToolArgs struct {
	// No arguments
}

// GetQueueToolResponse is the result payload for jenkins_get_queue.
type GetQueueToolResponse struct {
	Items []jenkins.QueuedBuild `json:"items"`
}

// AnalyzeHealthToolArgs are the tool arguments for jenkins_analyze_pipeline_health.
type AnalyzeHealthToolArgs struct {
	Name   string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
	Period string `json:"period,omitempty" jsonschema:"Analysis period: last_24h, last_7d, or last_30d (default: last_7d)" default:"last_7d"`
}

// ReconstructJenkinsfileToolArgs are the tool arguments for jenkins_reconstruct_jenkinsfile.
type ReconstructJenkinsfileToolArgs struct {
	Name string `json:"name" jsonschema:"Name of the Jenkins pipeline to reconstruct"`
}

// SuggestImprovementsToolArgs are the tool arguments for jenkins_suggest_improvements.
type SuggestImprovementsToolArgs struct {
	Name string `json:"name" jsonschema:"Name of the Jenkins pipeline to analyze"`
}

// GetJenkinsfileToolArgs are the tool arguments for jenkins_get_jenkinsfile.
type GetJenkinsfileToolArgs struct {
	Name string `json:"name" jsonschema:"Name of the Jenkins pipeline"`
}

func (app *application) addTools(s *mcp.Server) {
	addTool(s, &mcp.Tool{
		Name:        "jenkins_list_pipelines",
		Description: "Get list of Jenkins pipelines with their current status"},
		func(ctx context.Context, req *mcp.CallToolRequest, args ListPipelinesToolArgs) (*mcp.CallToolResult, ListPipelinesToolResponse, error) {
			if args.Limit <= 0 {
				args.Limit = 50
			}
			pipelines, err := app.client.ListPipelines(ctx)
			if err != nil {
				return nil, ListPipelinesToolResponse{}, err
			}
			pipelines = filterPipelines(pipelines, args.Search, args.Limit)
			return structuredResult(ListPipelinesToolResponse{Pipelines: pipelines})
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_pipeline",
		Description: "Get detailed information about a specific Jenkins pipeline by name"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetPipelineToolArgs) (*mcp.CallToolResult, jenkins.Pipeline, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, jenkins.Pipeline{}, fmt.Errorf("missing required argument: name")
			}
			pipeline, err := app.client.GetPipeline(ctx, args.Name)
			if err != nil {
				return nil, jenkins.Pipeline{}, err
			}
			return structuredResult(*pipeline)
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_pipeline_builds",
		Description: "Get recent builds of a Jenkins pipeline"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetPipelineBuildsToolArgs) (*mcp.CallToolResult, GetPipelineBuildsToolResponse, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, GetPipelineBuildsToolResponse{}, fmt.Errorf("missing required argument: name")
			}
			if args.Limit <= 0 {
				args.Limit = 10
			}
			builds, err := app.client.GetBuilds(ctx, args.Name, args.Limit)
			if err != nil {
				return nil, GetPipelineBuildsToolResponse{}, err
			}
			builds = filterBuildsByStatus(builds, args.Status)
			return structuredResult(GetPipelineBuildsToolResponse{Name: args.Name, Builds: builds})
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_build_logs",
		Description: "Get build logs for a specific pipeline and build number starting at given offset"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetBuildLogsToolArgs) (*mcp.CallToolResult, any, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, nil, fmt.Errorf("missing required argument: name")
			}
			if args.BuildNumber <= 0 {
				return nil, nil, fmt.Errorf("missing or invalid required argument: build_number (must be > 0)")
			}
			if args.Length <= 0 {
				args.Length = 8192
			}
			args.Offset = max(0, args.Offset)
			logs, err := app.client.GetBuildLogs(ctx, args.Name, args.BuildNumber, args.Offset, args.Length)
			if err != nil {
				return nil, nil, err
			}
			var res mcp.CallToolResult
			res.Content = []mcp.Content{&mcp.TextContent{Text: logs.Logs}}
			return &res, nil, nil
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_build_log_tail",
		Description: "Get the tail of build logs for a specific pipeline and build number"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetBuildLogTailToolArgs) (*mcp.CallToolResult, any, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, nil, fmt.Errorf("missing required argument: name")
			}
			if args.BuildNumber <= 0 {
				return nil, nil, fmt.Errorf("missing or invalid required argument: build_number (must be > 0)")
			}
			if args.MaxLength <= 0 {
				args.MaxLength = 8192
			}
			logs, err := app.client.GetBuildLogTail(ctx, args.Name, args.BuildNumber, args.MaxLength)
			if err != nil {
				return nil, nil, err
			}
			var res mcp.CallToolResult
			res.Content = []mcp.Content{&mcp.TextContent{Text: logs.Logs}}
			return &res, nil, nil
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_trigger_build",
		Description: "Trigger a Jenkins pipeline build with optional parameters"},
		func(ctx context.Context, req *mcp.CallToolRequest, args TriggerBuildToolArgs) (*mcp.CallToolResult, jenkins.TriggerResult, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, jenkins.TriggerResult{}, fmt.Errorf("missing required argument: name")
			}
			result, err := app.client.TriggerBuild(ctx, args.Name, args.Parameters)
			if err != nil {
				return nil, jenkins.TriggerResult{}, err
			}
			return structuredResult(*result)
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_stop_build",
		Description: "Stop a running Jenkins build"},
		func(ctx context.Context, req *mcp.CallToolRequest, args StopBuildToolArgs) (*mcp.CallToolResult, StopBuildToolResponse, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, StopBuildToolResponse{}, fmt.Errorf("missing required argument: name")
			}
			if args.BuildNumber <= 0 {
				return nil, StopBuildToolResponse{}, fmt.Errorf("missing or invalid required argument: build_number")
			}
			if err := app.client.StopBuild(ctx, args.Name, args.BuildNumber); err != nil {
				return nil, StopBuildToolResponse{}, err
			}
			return structuredResult(StopBuildToolResponse{Name: args.Name, BuildNumber: args.BuildNumber, Stopped: true})
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_set_pipeline_enabled",
		Description: "Enable or disable a Jenkins pipeline"},
		func(ctx context.Context, req *mcp.CallToolRequest, args SetPipelineEnabledToolArgs) (*mcp.CallToolResult, SetPipelineEnabledToolResponse, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, SetPipelineEnabledToolResponse{}, fmt.Errorf("missing required argument: name")
			}
			if err := app.client.SetEnabled(ctx, args.Name, args.Enabled); err != nil {
				return nil, SetPipelineEnabledToolResponse{}, err
			}
			return structuredResult(SetPipelineEnabledToolResponse{Name: args.Name, Enabled: args.Enabled})
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_wait_for_build",
		Description: "Wait for a running Jenkins build to complete or timeout"},
		func(ctx context.Context, req *mcp.CallToolRequest, args WaitForBuildToolArgs) (*mcp.CallToolResult, jenkins.WaitResult, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, jenkins.WaitResult{}, fmt.Errorf("missing required argument: name")
			}
			if args.BuildNumber <= 0 {
				return nil, jenkins.WaitResult{}, fmt.Errorf("missing or invalid required argument: build_number")
			}
			if args.TimeoutSeconds <= 0 {
				args.TimeoutSeconds = 600
			}
			result, err := app.client.WaitForBuild(ctx, args.Name, args.BuildNumber, args.TimeoutSeconds)
			if err != nil {
				return nil, jenkins.WaitResult{}, err
			}
			return structuredResult(*result)
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_pipeline_config",
		Description: "Get the raw config.xml of a Jenkins pipeline"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetPipelineConfigToolArgs) (*mcp.CallToolResult, any, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, nil, fmt.Errorf("missing required argument: name")
			}
			configXML, err := app.client.GetJobConfig(ctx, args.Name)
			if err != nil {
				return nil, nil, err
			}
			var res mcp.CallToolResult
			res.Content = []mcp.Content{&mcp.TextContent{Text: configXML}}
			return &res, nil, nil
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_queue",
		Description: "Get the Jenkins build queue"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetQueueToolArgs) (*mcp.CallToolResult, GetQueueToolResponse, error) {
			items, err := app.client.GetQueue(ctx)
			if err != nil {
				return nil, GetQueueToolResponse{}, err
			}
			return structuredResult(GetQueueToolResponse{Items: items})
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_analyze_pipeline_health",
		Description: "Analyze the health and performance of a pipeline over a recent period"},
		func(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeHealthToolArgs) (*mcp.CallToolResult, health.Report, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, health.Report{}, fmt.Errorf("missing required argument: name")
			}
			if args.Period == "" {
				args.Period = "last_7d"
			}
			report, err := app.analyzeHealth(ctx, args.Name, args.Period)
			if err != nil {
				return nil, health.Report{}, err
			}
			return structuredResult(report)
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_reconstruct_jenkinsfile",
		Description: "Reconstruct Jenkinsfile content from pipeline execution history and job configuration"},
		func(ctx context.Context, req *mcp.CallToolRequest, args ReconstructJenkinsfileToolArgs) (*mcp.CallToolResult, recon.ReconstructionResult, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, recon.ReconstructionResult{}, fmt.Errorf("missing required argument: name")
			}
			result, err := app.service.ReconstructJenkinsfile(ctx, args.Name)
			if err != nil {
				return nil, recon.ReconstructionResult{}, err
			}
			return structuredResult(*result)
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_suggest_improvements",
		Description: "Suggest improvements for a pipeline based on its reconstructed definition and execution analysis"},
		func(ctx context.Context, req *mcp.CallToolRequest, args SuggestImprovementsToolArgs) (*mcp.CallToolResult, recon.ImprovementResult, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, recon.ImprovementResult{}, fmt.Errorf("missing required argument: name")
			}
			result, err := app.service.SuggestImprovements(ctx, args.Name)
			if err != nil {
				return nil, recon.ImprovementResult{}, err
			}
			return structuredResult(*result)
		})

	addTool(s, &mcp.Tool{
		Name:        "jenkins_get_jenkinsfile",
		Description: "Retrieve the actual Jenkinsfile of a pipeline from its SCM or inline job configuration"},
		func(ctx context.Context, req *mcp.CallToolRequest, args GetJenkinsfileToolArgs) (*mcp.CallToolResult, recon.JenkinsfileResult, error) {
			if strings.TrimSpace(args.Name) == "" {
				return nil, recon.JenkinsfileResult{}, fmt.Errorf("missing required argument: name")
			}
			result, err := app.service.GetJenkinsfile(ctx, args.Name)
			if err != nil {
				return nil, recon.JenkinsfileResult{}, err
			}
			return structuredResult(*result)
		})
}

// analyzeHealth fetches up to 100 recent builds and computes the health
// report for the requested period.
func (app *application) analyzeHealth(ctx context.Context, name, period string) (health.Report, error) {
	builds, err := app.client.GetBuilds(ctx, name, 100)
	if err != nil {
		return health.Report{}, err
	}
	cutoff := time.Now().AddDate(0, 0, -health.PeriodDays(period))
	return health.Analyze(name, period, builds, cutoff), nil
}

// filterPipelines keeps pipelines whose name or description contains the
// search string (case-insensitive) and truncates the result to limit.
func filterPipelines(pipelines []jenkins.Pipeline, search string, limit int) []jenkins.Pipeline {
	if search != "" {
		needle := strings.ToLower(search)
		kept := pipelines[:0:0]
		for _, p := range pipelines {
			if strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle) {
				kept = append(kept, p)
			}
		}
		pipelines = kept
	}
	if limit > 0 && len(pipelines) > limit {
		pipelines = pipelines[:limit]
	}
	return pipelines
}

// filterBuildsByStatus keeps builds whose status matches (case-insensitive).
// A build still running reports RUNNING; a missing result reports UNKNOWN.
func filterBuildsByStatus(builds []jenkins.Build, status string) []jenkins.Build {
	if status == "" {
		return builds
	}
	kept := builds[:0:0]
	for _, b := range builds {
		if strings.EqualFold(buildStatus(b), status) {
			kept = append(kept, b)
		}
	}
	return kept
}

func buildStatus(b jenkins.Build) string {
	switch {
	case b.Building:
		return "RUNNING"
	case b.Result == "":
		return "UNKNOWN"
	default:
		return b.Result
	}
}

func addTool[In, Out any](s *mcp.Server, t *mcp.Tool, h mcp.ToolHandlerFor[In, Out]) {
	t.InputSchema = jsonschemaForExt[In]()
	mcp.AddTool(s, t, h)
}

func structuredResult[Out any](out Out) (*mcp.CallToolResult, Out, error) {
	b, err := json.Marshal(out)
	if err != nil {
		var zero Out
		return nil, zero, err
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(b)}},
		StructuredContent: out,
	}, out, nil
}
