package recon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

type fakeSource struct {
	builds     []jenkins.Build
	buildsErr  error
	infoErr    map[int]error
	config     string
	configErr  error
	trace      *jenkins.ExecutionTrace
	traceErr   error
	scriptOut  string
	scriptErr  error
	traceCalls int
}

func (f *fakeSource) GetBuilds(ctx context.Context, jobName string, limit int) ([]jenkins.Build, error) {
	if f.buildsErr != nil {
		return nil, f.buildsErr
	}
	if len(f.builds) > limit {
		return f.builds[:limit], nil
	}
	return f.builds, nil
}

func (f *fakeSource) GetBuildInfo(ctx context.Context, jobName string, buildNumber int) (*jenkins.Build, error) {
	if err, ok := f.infoErr[buildNumber]; ok {
		return nil, err
	}
	for _, b := range f.builds {
		if b.Number == buildNumber {
			return &b, nil
		}
	}
	return nil, errors.New("build not found")
}

func (f *fakeSource) GetJobConfig(ctx context.Context, jobName string) (string, error) {
	if f.configErr != nil {
		return "", f.configErr
	}
	return f.config, nil
}

func (f *fakeSource) GetExecutionTrace(ctx context.Context, jobName string, buildNumber int) (*jenkins.ExecutionTrace, error) {
	f.traceCalls++
	if f.traceErr != nil {
		return nil, f.traceErr
	}
	return f.trace, nil
}

func (f *fakeSource) ExecuteScript(ctx context.Context, script string) (string, error) {
	if f.scriptErr != nil {
		return "", f.scriptErr
	}
	return f.scriptOut, nil
}

func newTestService(src BuildSource) *Service {
	return NewService(src, 10, 5*time.Minute, zerolog.Nop())
}

func TestReconstructJenkinsfileNoSuccessfulBuilds(t *testing.T) {
	src := &fakeSource{
		builds: []jenkins.Build{
			{Number: 3, Result: "FAILURE"},
			{Number: 2, Result: "ABORTED"},
			{Number: 1, Result: "FAILURE"},
		},
	}

	result, err := newTestService(src).ReconstructJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err, "missing data is an outcome, not an error")
	assert.Equal(t, "No successful builds found for analysis", result.Error)
	assert.Empty(t, result.Jenkinsfile)
}

func TestReconstructJenkinsfileUsesLatestSuccess(t *testing.T) {
	src := &fakeSource{
		builds: []jenkins.Build{
			{Number: 5, Result: "FAILURE"},
			{Number: 4, Result: "SUCCESS"},
			{Number: 3, Result: "SUCCESS"},
		},
		trace: &jenkins.ExecutionTrace{
			Stages:          []jenkins.StageRecord{{Name: "Build", DurationMS: 5000}},
			TotalDurationMS: 5000,
		},
	}

	result, err := newTestService(src).ReconstructJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.Empty(t, result.Error)
	assert.Equal(t, "deploy-app", result.PipelineName)
	assert.Equal(t, 4, result.BuildAnalyzed)
	assert.Equal(t, "execution_flow_analysis", result.Method)
	assert.Contains(t, result.Jenkinsfile, "pipeline {")
	require.NotNil(t, result.Analysis)
	assert.Equal(t, 1, result.Analysis.TotalStages)
}

func TestReconstructJenkinsfileSkipsFailedInfoFetch(t *testing.T) {
	src := &fakeSource{
		builds: []jenkins.Build{
			{Number: 5, Result: "SUCCESS"},
			{Number: 4, Result: "SUCCESS"},
		},
		infoErr: map[int]error{5: errors.New("boom")},
		trace:   &jenkins.ExecutionTrace{Stages: []jenkins.StageRecord{{Name: "Build", DurationMS: 1}}},
	}

	result, err := newTestService(src).ReconstructJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.Equal(t, 4, result.BuildAnalyzed)
}

func TestReconstructJenkinsfileBuildListFailure(t *testing.T) {
	src := &fakeSource{buildsErr: errors.New("connection refused")}

	_, err := newTestService(src).ReconstructJenkinsfile(context.Background(), "deploy-app")

	assert.Error(t, err)
}

func TestReconstructJenkinsfileConfigFailureDegrades(t *testing.T) {
	src := &fakeSource{
		builds:    []jenkins.Build{{Number: 1, Result: "SUCCESS"}},
		configErr: errors.New("403"),
		trace:     &jenkins.ExecutionTrace{Stages: []jenkins.StageRecord{{Name: "Build", DurationMS: 1}}},
	}

	result, err := newTestService(src).ReconstructJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.Contains(t, result.Jenkinsfile, "agent any")
}

func TestReconstructJenkinsfileCachesPerBuild(t *testing.T) {
	src := &fakeSource{
		builds: []jenkins.Build{{Number: 7, Result: "SUCCESS"}},
		trace:  &jenkins.ExecutionTrace{Stages: []jenkins.StageRecord{{Name: "Build", DurationMS: 1}}},
	}
	svc := newTestService(src)

	first, err := svc.ReconstructJenkinsfile(context.Background(), "deploy-app")
	require.NoError(t, err)
	second, err := svc.ReconstructJenkinsfile(context.Background(), "deploy-app")
	require.NoError(t, err)

	assert.Equal(t, first.Jenkinsfile, second.Jenkinsfile)
	assert.Equal(t, 1, src.traceCalls, "second request must hit the cache")
}

func TestSuggestImprovementsPayload(t *testing.T) {
	src := &fakeSource{
		builds: []jenkins.Build{{Number: 2, Result: "SUCCESS"}},
		trace: &jenkins.ExecutionTrace{
			Stages: []jenkins.StageRecord{
				{Name: "Docker Build", DurationMS: 90000},
				{Name: "Test", DurationMS: 10000},
			},
			TotalDurationMS: 100000,
		},
	}

	result, err := newTestService(src).SuggestImprovements(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.Equal(t, "deploy-app", result.PipelineName)
	assert.Equal(t, len(result.Suggestions), result.TotalSuggestions)
	assert.NotEmpty(t, result.Suggestions)
	assert.Equal(t, 2, result.AnalysisSummary.StageCount)
	assert.Equal(t, "100.0 seconds", result.AnalysisSummary.TotalDuration)
	assert.Contains(t, result.AnalysisSummary.Technologies, "Docker")
}

func TestSuggestImprovementsNoBuilds(t *testing.T) {
	src := &fakeSource{}

	result, err := newTestService(src).SuggestImprovements(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.Equal(t, "No successful builds found for analysis", result.Error)
	assert.Empty(t, result.Suggestions)
}

func TestGetJenkinsfileViaSCM(t *testing.T) {
	src := &fakeSource{
		scriptOut: "noise before\n=== JENKINSFILE_CONTENT_START ===\npipeline { agent any }\n=== JENKINSFILE_CONTENT_END ===\nnoise after",
	}

	result, err := newTestService(src).GetJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "SCMFileSystem", result.Method)
	assert.Equal(t, "pipeline { agent any }", result.Content)
}

func TestGetJenkinsfileFallsBackToInlineConfig(t *testing.T) {
	src := &fakeSource{
		scriptOut: "=== ERROR: No SCMs found ===",
		config:    "<flow-definition><definition><script>pipeline { agent none }</script></definition></flow-definition>",
	}

	result, err := newTestService(src).GetJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "config.xml", result.Method)
	assert.Equal(t, "Inline Pipeline Script", result.Source)
	assert.Equal(t, "pipeline { agent none }", result.Content)
}

func TestGetJenkinsfileScriptPathPointer(t *testing.T) {
	src := &fakeSource{
		scriptErr: errors.New("script console disabled"),
		config:    "<flow-definition><definition><scriptPath>ci/Jenkinsfile</scriptPath></definition></flow-definition>",
	}

	result, err := newTestService(src).GetJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Git Repository (ci/Jenkinsfile)", result.Source)
	assert.Contains(t, result.Content, "ci/Jenkinsfile")
}

func TestGetJenkinsfileAllStrategiesFail(t *testing.T) {
	src := &fakeSource{
		scriptErr: errors.New("script console disabled"),
		configErr: errors.New("404"),
	}

	result, err := newTestService(src).GetJenkinsfile(context.Background(), "deploy-app")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "None", result.Method)
	assert.Contains(t, result.Content, "Error: Could not retrieve Jenkinsfile")
}
