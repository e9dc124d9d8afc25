package recon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

func simpleTrace() *jenkins.ExecutionTrace {
	return &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{
			{Name: "Checkout", DurationMS: 10000},
			{Name: "Build", DurationMS: 60000},
			{Name: "Test", DurationMS: 30000},
		},
		TotalDurationMS: 100000,
	}
}

func TestReconstructDeterministic(t *testing.T) {
	config := ParseConfig(paramConfig)
	trace := simpleTrace()

	first := Reconstruct(config, trace)
	second := Reconstruct(config, trace)

	assert.Equal(t, first, second, "identical inputs must produce byte-identical output")
}

func TestReconstructBasicPipeline(t *testing.T) {
	out := Reconstruct(ParseConfig(""), simpleTrace())

	assert.Contains(t, out, "pipeline {")
	assert.Contains(t, out, "agent any")
	assert.Contains(t, out, "stage('Checkout')")
	assert.Contains(t, out, "checkout scm")
	assert.Contains(t, out, "stage('Build')")
	assert.Contains(t, out, "echo 'Building application'")
	assert.Contains(t, out, "stage('Test')")
	assert.Contains(t, out, "echo 'Running tests'")

	// Stage blocks appear in trace order.
	checkout := strings.Index(out, "stage('Checkout')")
	build := strings.Index(out, "stage('Build')")
	test := strings.Index(out, "stage('Test')")
	assert.Less(t, checkout, build)
	assert.Less(t, build, test)
}

func TestReconstructParallelStage(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages:          []jenkins.StageRecord{{Name: "Deploy to Production (parallel)", DurationMS: 20000}},
		TotalDurationMS: 20000,
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "parallel {")
	assert.Contains(t, out, "echo 'Branch 1 execution'")
	assert.Contains(t, out, "echo 'Branch 2 execution'")
	assert.NotContains(t, out, "echo 'Deploying application'")
}

func TestReconstructMatrixStage(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages:          []jenkins.StageRecord{{Name: "Matrix Build", DurationMS: 40000}},
		TotalDurationMS: 40000,
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "matrix {")
	assert.Contains(t, out, "name 'PLATFORM'")
	assert.Contains(t, out, "values 'linux', 'windows', 'mac'")
	assert.Contains(t, out, "name 'BROWSER'")
	assert.Contains(t, out, "excludes {")
	assert.Contains(t, out, `echo "Do Build for ${PLATFORM} - ${BROWSER}"`)
}

func TestReconstructInputStage(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{{Name: "Approval Input", DurationMS: 1000}},
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "input {")
	assert.Contains(t, out, "message 'Deploy to production?'")
	assert.Contains(t, out, "submitter 'admin,deployer'")
}

func TestReconstructScriptStage(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{{Name: "Run Script", DurationMS: 1000}},
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "def browsers = ['chrome', 'firefox']")
	assert.Contains(t, out, `echo "Testing the ${browsers[i]} browser"`)
}

func TestReconstructWhenCondition(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{{Name: "Deploy main branch", DurationMS: 1000}},
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "when {")
	assert.Contains(t, out, "branch 'main'")
	assert.Contains(t, out, "echo 'Deploying application'")
}

func TestReconstructUnknownStageFallback(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{{Name: "Mystery Phase", DurationMS: 1000}},
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "echo 'Executing Mystery Phase'")
}

func TestReconstructPostBlock(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{
			{Name: "Build", DurationMS: 1000},
			{Name: "Cleanup Workspace", DurationMS: 500},
		},
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "post {")
	assert.Contains(t, out, "always {")
	assert.Contains(t, out, "echo 'Cleaning up build artifacts'")
}

func TestReconstructNoPostBlockWithoutSignal(t *testing.T) {
	out := Reconstruct(ParseConfig(""), simpleTrace())

	assert.NotContains(t, out, "post {")
}

func TestReconstructEnvFromStageName(t *testing.T) {
	trace := &jenkins.ExecutionTrace{
		Stages: []jenkins.StageRecord{{Name: "Set env.REGION = us-east-1", DurationMS: 1000}},
	}

	out := Reconstruct(ParseConfig(""), trace)

	assert.Contains(t, out, "environment {")
	assert.Contains(t, out, "REGION = 'us-east-1'")
}

func TestReconstructConfigOnlyEmptyTrace(t *testing.T) {
	config := ParseConfig(`<flow>
		<agent><label>deploy-node-pool</label></agent>
		<parameters>
			<hudson.model.StringParameterDefinition><name>VERSION</name><defaultValue>1.0.0</defaultValue><description>Version</description></hudson.model.StringParameterDefinition>
		</parameters>
		<triggers><com.cloudbees.jenkins.GitHubPushTrigger/></triggers>
		<options><hudson.plugins.timestamper.TimestamperBuildWrapper/></options>
		<tools><hudson.model.JDK><name>temurin-21</name></hudson.model.JDK></tools>
		<envVars><hudson.model.StringParameterValue><name>REGION</name><value>eu-west-1</value></hudson.model.StringParameterValue></envVars>
	</flow>`)

	out := Reconstruct(config, &jenkins.ExecutionTrace{})

	assert.Contains(t, out, "parameters {")
	assert.Contains(t, out, "string(name: 'VERSION', defaultValue: '1.0.0', description: 'Version')")
	assert.Contains(t, out, "triggers {")
	assert.Contains(t, out, "githubPush()")
	assert.Contains(t, out, "options {")
	assert.Contains(t, out, "timestamps()")
	assert.Contains(t, out, "tools {")
	assert.Contains(t, out, "jdk 'temurin-21'")
	assert.Contains(t, out, "environment {")
	assert.Contains(t, out, "REGION = 'eu-west-1'")
	assert.Contains(t, out, "stages {\n    }", "stages block renders empty for an empty trace")

	// Fixed block ordering.
	positions := []int{
		strings.Index(out, "parameters {"),
		strings.Index(out, "triggers {"),
		strings.Index(out, "options {"),
		strings.Index(out, "tools {"),
		strings.Index(out, "environment {"),
		strings.Index(out, "stages {"),
	}
	for i := 1; i < len(positions); i++ {
		require.Greater(t, positions[i], positions[i-1], "block %d out of order", i)
	}
}

func TestReconstructRendersConfigVariants(t *testing.T) {
	config := ConfigRecord{
		Agent: AgentDescriptor{Kind: AgentDocker, Image: "golang:1.24"},
		Parameters: []ParameterDef{
			{Kind: ParamChoice, Name: "ENV", Choices: []string{"dev", "prod"}, Description: "Target"},
			{Kind: ParamBoolean, Name: "DRY_RUN", Default: "true", Description: "Skip side effects"},
			{Kind: ParamPassword, Name: "KEY", Description: "Secret"},
			{Kind: ParamText, Name: "NOTES", Default: "none", Description: "Notes"},
		},
		Triggers: []TriggerDef{
			{Kind: TriggerPollSCM, Spec: "H/15 * * * *"},
			{Kind: TriggerUpstream, Projects: "base-image"},
		},
		Options: []OptionDef{
			{Kind: OptionTimeout, Minutes: "45"},
			{Kind: OptionRetry, Count: "3"},
			{Kind: OptionAnsiColor, Palette: "xterm"},
			{Kind: OptionBuildDiscarder, KeepCount: "20"},
			{Kind: OptionDisableConcurrentBuilds},
		},
		Tools: []ToolRef{{Kind: "maven", Name: "maven-3.9"}},
		Environment: []EnvBinding{
			{Name: "REGION", Value: "us-east-1"},
			{Name: "API_KEY", CredentialID: "svc-key"},
		},
	}

	out := Reconstruct(config, &jenkins.ExecutionTrace{})

	assert.Contains(t, out, "agent docker('golang:1.24')")
	assert.Contains(t, out, "choice(name: 'ENV', choices: ['dev', 'prod'], description: 'Target')")
	assert.Contains(t, out, "booleanParam(name: 'DRY_RUN', defaultValue: true, description: 'Skip side effects')")
	assert.Contains(t, out, "password(name: 'KEY', description: 'Secret')")
	assert.Contains(t, out, "text(name: 'NOTES', defaultValue: '''none''', description: 'Notes')")
	assert.Contains(t, out, "pollSCM('H/15 * * * *')")
	assert.Contains(t, out, "upstream(upstreamProjects: 'base-image')")
	assert.Contains(t, out, "timeout(time: 45, unit: 'MINUTES')")
	assert.Contains(t, out, "retry(3)")
	assert.Contains(t, out, "ansiColor('xterm')")
	assert.Contains(t, out, "buildDiscarder(logRotator(numToKeepStr: '20'))")
	assert.Contains(t, out, "disableConcurrentBuilds()")
	assert.Contains(t, out, "maven 'maven-3.9'")
	assert.Contains(t, out, "REGION = 'us-east-1'")
	assert.Contains(t, out, "API_KEY = credentials('svc-key')")
}

func TestReconstructAgentVariants(t *testing.T) {
	cases := []struct {
		agent AgentDescriptor
		want  string
	}{
		{AgentDescriptor{Kind: AgentAny}, "agent any"},
		{AgentDescriptor{Kind: AgentNone}, "agent none"},
		{AgentDescriptor{Kind: AgentLabel, Label: "linux"}, "agent label('linux')"},
		{AgentDescriptor{Kind: AgentDockerfile}, "agent dockerfile true"},
		{AgentDescriptor{Kind: AgentKubernetes}, "agent kubernetes { /* Kubernetes agent config */ }"},
		{AgentDescriptor{Kind: AgentNode}, "agent node { /* Node agent config */ }"},
	}

	for _, tc := range cases {
		out := Reconstruct(ConfigRecord{Agent: tc.agent}, &jenkins.ExecutionTrace{})
		assert.Contains(t, out, tc.want, "agent kind %s", tc.agent.Kind)
	}
}
