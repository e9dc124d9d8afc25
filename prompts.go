package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/redact"
)

func (app *application) addPrompts(s *mcp.Server) {
	s.AddPrompt(&mcp.Prompt{
		Name:        "analyze_pipeline",
		Description: "Build an analysis prompt for a pipeline from its details and recent builds",
		Arguments: []*mcp.PromptArgument{
			{Name: "pipeline_name", Description: "Name of the Jenkins pipeline", Required: true},
		},
	}, app.handleAnalyzePrompt)

	s.AddPrompt(&mcp.Prompt{
		Name:        "failure_analysis",
		Description: "Build a failure-analysis prompt for one build from its metadata and log tail",
		Arguments: []*mcp.PromptArgument{
			{Name: "pipeline_name", Description: "Name of the Jenkins pipeline", Required: true},
			{Name: "build_number", Description: "Build number to analyze (defaults to the last build)", Required: false},
		},
	}, app.handleFailureAnalysisPrompt)
}

func (app *application) handleAnalyzePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := strings.TrimSpace(req.Params.Arguments["pipeline_name"])
	if name == "" {
		return nil, fmt.Errorf("missing required argument: pipeline_name")
	}

	pipeline, err := app.client.GetPipeline(ctx, name)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the Jenkins pipeline '%s' comprehensively:\n\n", name)
	fmt.Fprintf(&b, "Pipeline Details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", pipeline.Name)
	fmt.Fprintf(&b, "- URL: %s\n", pipeline.URL)
	fmt.Fprintf(&b, "- Description: %s\n", pipeline.Description)
	fmt.Fprintf(&b, "- Buildable: %t\n", pipeline.Buildable)
	fmt.Fprintf(&b, "- Status color: %s\n\n", pipeline.Color)

	fmt.Fprintf(&b, "Recent Builds (%d builds):\n", len(pipeline.RecentBuilds))
	for _, build := range pipeline.RecentBuilds {
		ts := "Unknown time"
		if t := time.Time(build.Timestamp); !t.IsZero() {
			ts = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "- Build #%d: %s (%s)\n", build.Number, build.Result, ts)
	}

	b.WriteString(`
Please provide:
1. Overall health assessment
2. Performance analysis
3. Failure patterns
4. Recommendations for improvement
5. Security considerations
6. Best practices compliance
`)

	return promptResult(fmt.Sprintf("Analysis prompt for pipeline %s", name), b.String()), nil
}

func (app *application) handleFailureAnalysisPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := strings.TrimSpace(req.Params.Arguments["pipeline_name"])
	if name == "" {
		return nil, fmt.Errorf("missing required argument: pipeline_name")
	}

	buildNumber := 0
	if raw := strings.TrimSpace(req.Params.Arguments["build_number"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid build_number: %q", raw)
		}
		buildNumber = n
	}
	if buildNumber == 0 {
		pipeline, err := app.client.GetPipeline(ctx, name)
		if err != nil {
			return nil, err
		}
		if pipeline.LastBuild == nil {
			return nil, fmt.Errorf("pipeline %s has no builds", name)
		}
		buildNumber = pipeline.LastBuild.Number
	}

	build, err := app.client.GetBuildInfo(ctx, name, buildNumber)
	if err != nil {
		return nil, err
	}

	logTail := "No console output available"
	if logs, err := app.client.GetBuildLogTail(ctx, name, buildNumber, 8192); err == nil && logs.Logs != "" {
		logTail = redact.Scrub(logs.Logs)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the failure of Jenkins pipeline '%s' build #%d:\n\n", name, buildNumber)
	fmt.Fprintf(&b, "Build Information:\n")
	fmt.Fprintf(&b, "- Status: %s\n", build.Result)
	fmt.Fprintf(&b, "- Duration: %dms\n", build.Duration.Milliseconds())
	if t := time.Time(build.Timestamp); !t.IsZero() {
		fmt.Fprintf(&b, "- Timestamp: %s\n", t.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- URL: %s\n\n", build.URL)

	fmt.Fprintf(&b, "Console Output (tail):\n%s\n", logTail)

	b.WriteString(`
Please provide:
1. Root cause analysis
2. Error classification
3. Immediate fixes
4. Long-term improvements
5. Prevention strategies
`)

	return promptResult(fmt.Sprintf("Failure analysis prompt for %s #%d", name, buildNumber), b.String()), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}
