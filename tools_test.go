package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

func samplePipelines() []jenkins.Pipeline {
	return []jenkins.Pipeline{
		{Name: "deploy-app", Description: "Production deployment"},
		{Name: "build-lib", Description: "Library build"},
		{Name: "nightly-tests", Description: "Runs the Deploy smoke suite"},
		{Name: "legacy-job", Description: ""},
	}
}

func pipelineNames(pipelines []jenkins.Pipeline) []string {
	names := make([]string, len(pipelines))
	for i, p := range pipelines {
		names[i] = p.Name
	}
	return names
}

func TestFilterPipelinesBySearch(t *testing.T) {
	got := filterPipelines(samplePipelines(), "deploy", 50)

	assert.Equal(t, []string{"deploy-app", "nightly-tests"}, pipelineNames(got),
		"search matches name or description, case-insensitive")
}

func TestFilterPipelinesSearchIsCaseInsensitive(t *testing.T) {
	got := filterPipelines(samplePipelines(), "LEGACY", 50)

	require.Len(t, got, 1)
	assert.Equal(t, "legacy-job", got[0].Name)
}

func TestFilterPipelinesLimitTruncates(t *testing.T) {
	got := filterPipelines(samplePipelines(), "", 2)

	assert.Equal(t, []string{"deploy-app", "build-lib"}, pipelineNames(got))
}

func TestFilterPipelinesNoMatch(t *testing.T) {
	got := filterPipelines(samplePipelines(), "does-not-exist", 50)

	assert.Empty(t, got)
}

func TestFilterPipelinesEmptySearchKeepsAll(t *testing.T) {
	got := filterPipelines(samplePipelines(), "", 50)

	assert.Len(t, got, 4)
}

func TestFilterBuildsByStatus(t *testing.T) {
	builds := []jenkins.Build{
		{Number: 5, Result: "SUCCESS"},
		{Number: 4, Result: "FAILURE"},
		{Number: 3, Result: "SUCCESS"},
		{Number: 2, Result: "ABORTED"},
	}

	got := filterBuildsByStatus(builds, "SUCCESS")

	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Number)
	assert.Equal(t, 3, got[1].Number)
}

func TestFilterBuildsByStatusCaseInsensitive(t *testing.T) {
	builds := []jenkins.Build{{Number: 1, Result: "FAILURE"}}

	got := filterBuildsByStatus(builds, "failure")

	assert.Len(t, got, 1)
}

func TestFilterBuildsByStatusRunning(t *testing.T) {
	builds := []jenkins.Build{
		{Number: 3, Building: true},
		{Number: 2, Result: "SUCCESS"},
	}

	got := filterBuildsByStatus(builds, "RUNNING")

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Number)
}

func TestFilterBuildsByStatusUnknownForMissingResult(t *testing.T) {
	builds := []jenkins.Build{
		{Number: 2, Result: ""},
		{Number: 1, Result: "SUCCESS"},
	}

	got := filterBuildsByStatus(builds, "UNKNOWN")

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Number)
}

func TestFilterBuildsEmptyStatusKeepsAll(t *testing.T) {
	builds := []jenkins.Build{
		{Number: 2, Result: "SUCCESS"},
		{Number: 1, Result: "FAILURE"},
	}

	assert.Len(t, filterBuildsByStatus(builds, ""), 2)
}
