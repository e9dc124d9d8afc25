package recon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

// Reconstruct synthesizes a declarative pipeline definition from a job's
// normalized configuration and one build's execution trace. The result is
// deterministic for identical inputs and deliberately a labeled skeleton:
// step bodies are representative placeholders chosen by stage-name
// classification, since the trace carries no literal commands.
func Reconstruct(config ConfigRecord, trace *jenkins.ExecutionTrace) string {
	w := &blockWriter{}

	w.open("pipeline")
	w.line("agent " + renderAgent(config.Agent))
	w.blank()

	if len(config.Parameters) > 0 {
		w.open("parameters")
		for _, p := range config.Parameters {
			w.line(renderParameter(p))
		}
		w.close()
		w.blank()
	}

	if len(config.Triggers) > 0 {
		w.open("triggers")
		for _, t := range config.Triggers {
			w.line(renderTrigger(t))
		}
		w.close()
		w.blank()
	}

	if len(config.Options) > 0 {
		w.open("options")
		for _, o := range config.Options {
			w.line(renderOption(o))
		}
		w.close()
		w.blank()
	}

	if len(config.Tools) > 0 {
		w.open("tools")
		for _, t := range config.Tools {
			w.line(t.Kind + " '" + t.Name + "'")
		}
		w.close()
		w.blank()
	}

	env := append([]EnvBinding{}, config.Environment...)
	env = append(env, envFromStageNames(trace)...)
	if len(env) > 0 {
		w.open("environment")
		for _, e := range env {
			if e.CredentialID != "" {
				w.line(e.Name + " = credentials('" + e.CredentialID + "')")
			} else {
				w.line(e.Name + " = '" + e.Value + "'")
			}
		}
		w.close()
		w.blank()
	}

	w.open("stages")
	for _, stage := range trace.Stages {
		reconstructStage(w, stage)
		w.blank()
	}
	w.close()

	if hasPostStage(trace) {
		w.blank()
		w.open("post")
		w.open("always")
		w.open("script")
		w.line("echo 'Cleaning up build artifacts'")
		w.close()
		w.close()
		w.close()
	}

	w.close()
	return w.String()
}

func renderAgent(a AgentDescriptor) string {
	switch a.Kind {
	case AgentNone:
		return "none"
	case AgentLabel:
		return fmt.Sprintf("label('%s')", a.Label)
	case AgentDocker:
		return fmt.Sprintf("docker('%s')", a.Image)
	case AgentDockerfile:
		if len(a.Options) == 0 {
			return "dockerfile true"
		}
		return "dockerfile {\n        " + strings.Join(a.Options, ",\n        ") + "\n    }"
	case AgentNode:
		if len(a.Options) == 0 {
			return "node { /* Node agent config */ }"
		}
		return "node {\n        " + strings.Join(a.Options, ",\n        ") + "\n    }"
	case AgentKubernetes:
		return "kubernetes { /* Kubernetes agent config */ }"
	default:
		return "any"
	}
}

func renderParameter(p ParameterDef) string {
	switch p.Kind {
	case ParamChoice:
		return fmt.Sprintf("choice(name: '%s', choices: ['%s'], description: '%s')",
			p.Name, strings.Join(p.Choices, "', '"), p.Description)
	case ParamBoolean:
		return fmt.Sprintf("booleanParam(name: '%s', defaultValue: %s, description: '%s')",
			p.Name, p.Default, p.Description)
	case ParamPassword:
		return fmt.Sprintf("password(name: '%s', description: '%s')", p.Name, p.Description)
	case ParamText:
		return fmt.Sprintf("text(name: '%s', defaultValue: '''%s''', description: '%s')",
			p.Name, p.Default, p.Description)
	default:
		return fmt.Sprintf("string(name: '%s', defaultValue: '%s', description: '%s')",
			p.Name, p.Default, p.Description)
	}
}

func renderTrigger(t TriggerDef) string {
	switch t.Kind {
	case TriggerPollSCM:
		return fmt.Sprintf("pollSCM('%s')", t.Spec)
	case TriggerCron:
		return fmt.Sprintf("cron('%s')", t.Spec)
	case TriggerUpstream:
		return fmt.Sprintf("upstream(upstreamProjects: '%s')", t.Projects)
	default:
		return "githubPush()"
	}
}

func renderOption(o OptionDef) string {
	switch o.Kind {
	case OptionTimeout:
		return fmt.Sprintf("timeout(time: %s, unit: 'MINUTES')", o.Minutes)
	case OptionRetry:
		return fmt.Sprintf("retry(%s)", o.Count)
	case OptionAnsiColor:
		return fmt.Sprintf("ansiColor('%s')", o.Palette)
	case OptionSkipDefaultCheckout:
		return "skipDefaultCheckout()"
	case OptionBuildDiscarder:
		return fmt.Sprintf("buildDiscarder(logRotator(numToKeepStr: '%s'))", o.KeepCount)
	case OptionDisableConcurrentBuilds:
		return "disableConcurrentBuilds()"
	default:
		return "timestamps()"
	}
}

var envTokenRE = regexp.MustCompile(`env\.(\w+)\s*=\s*(\S+)`)

// envFromStageNames pulls env.NAME=VALUE tokens out of stage names. Teams
// occasionally encode environment bindings directly in a stage label; that is
// the only place the trace can surface them.
func envFromStageNames(trace *jenkins.ExecutionTrace) []EnvBinding {
	var env []EnvBinding
	for _, stage := range trace.Stages {
		lower := strings.ToLower(stage.Name)
		if !strings.Contains(stage.Name, "env.") && !strings.Contains(lower, "environment") {
			continue
		}
		for _, m := range envTokenRE.FindAllStringSubmatch(stage.Name, -1) {
			env = append(env, EnvBinding{Name: m[1], Value: m[2]})
		}
	}
	return env
}

// hasPostStage reports whether any stage name suggests a post-actions block;
// scanning stops at the first match.
func hasPostStage(trace *jenkins.ExecutionTrace) bool {
	for _, stage := range trace.Stages {
		lower := strings.ToLower(stage.Name)
		if strings.Contains(lower, "cleanup") || strings.Contains(lower, "notify") {
			return true
		}
	}
	return false
}

// stepRule pairs a stage-name predicate with a steps-body renderer. Rules are
// evaluated top to bottom; the first match wins.
type stepRule struct {
	match  func(lower string) bool
	render func(w *blockWriter, name string)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var stepRules = []stepRule{
	{
		match:  func(l string) bool { return containsAny(l, "input", "prompt") },
		render: renderInputSteps,
	},
	{
		match:  func(l string) bool { return containsAny(l, "script", "groovy") },
		render: renderScriptSteps,
	},
	{
		match:  func(l string) bool { return containsAny(l, "checkout", "scm") },
		render: func(w *blockWriter, _ string) { w.steps(func() { w.line("checkout scm") }) },
	},
	{
		match:  func(l string) bool { return strings.Contains(l, "parallel") },
		render: renderParallelSteps,
	},
	{
		match:  func(l string) bool { return containsAny(l, "init", "setup") },
		render: echoSteps("Initializing build environment"),
	},
	{
		match:  func(l string) bool { return containsAny(l, "build", "compile") },
		render: echoSteps("Building application"),
	},
	{
		match:  func(l string) bool { return strings.Contains(l, "test") },
		render: echoSteps("Running tests"),
	},
	{
		match:  func(l string) bool { return strings.Contains(l, "deploy") },
		render: echoSteps("Deploying application"),
	},
}

// reconstructStage renders one stage block. The when sub-block is appended
// independently of which steps-body rule fires; matrix stages bypass the rule
// table entirely.
func reconstructStage(w *blockWriter, stage jenkins.StageRecord) {
	lower := strings.ToLower(stage.Name)

	w.open(fmt.Sprintf("stage('%s')", stage.Name))

	if strings.Contains(lower, "matrix") {
		renderMatrix(w)
		w.close()
		return
	}

	if cond := whenCondition(lower); cond != "" {
		w.open("when")
		w.line(cond)
		w.close()
	}

	rendered := false
	for _, rule := range stepRules {
		if rule.match(lower) {
			rule.render(w, stage.Name)
			rendered = true
			break
		}
	}
	if !rendered {
		w.steps(func() {
			w.open("script")
			w.line(fmt.Sprintf("echo 'Executing %s'", stage.Name))
			w.close()
		})
	}

	w.close()
}

// whenCondition maps stage-name keywords to a representative when clause.
func whenCondition(lower string) string {
	switch {
	case strings.Contains(lower, "branch"):
		return "branch 'main'"
	case strings.Contains(lower, "environment"):
		return "environment name: 'DEPLOY_TO', value: 'production'"
	case strings.Contains(lower, "not"):
		return "not { branch 'develop' }"
	}
	return ""
}

func echoSteps(message string) func(*blockWriter, string) {
	return func(w *blockWriter, _ string) {
		w.steps(func() {
			w.open("script")
			w.line("echo '" + message + "'")
			w.close()
		})
	}
}

func renderInputSteps(w *blockWriter, _ string) {
	w.steps(func() {
		w.open("input")
		w.line("message 'Deploy to production?'")
		w.line("ok 'Deploy'")
		w.line("submitter 'admin,deployer'")
		w.open("parameters")
		w.line("string(name: 'VERSION', defaultValue: '1.0.0', description: 'Version to deploy')")
		w.close()
		w.close()
	})
}

func renderScriptSteps(w *blockWriter, _ string) {
	w.steps(func() {
		w.open("script")
		w.line("def browsers = ['chrome', 'firefox']")
		w.open("for (int i = 0; i < browsers.size(); ++i)")
		w.line(`echo "Testing the ${browsers[i]} browser"`)
		w.close()
		w.close()
	})
}

func renderParallelSteps(w *blockWriter, _ string) {
	w.open("parallel")
	w.open("branch1")
	w.line("echo 'Branch 1 execution'")
	w.close()
	w.open("branch2")
	w.line("echo 'Branch 2 execution'")
	w.close()
	w.close()
}

// renderMatrix emits an illustrative matrix block. The workflow API does not
// expose matrix cell definitions, so the axes, exclude, and inner stages are
// representative structure rather than recovered data.
func renderMatrix(w *blockWriter) {
	w.open("matrix")

	w.open("axes")
	w.open("axis")
	w.line("name 'PLATFORM'")
	w.line("values 'linux', 'windows', 'mac'")
	w.close()
	w.open("axis")
	w.line("name 'BROWSER'")
	w.line("values 'firefox', 'chrome', 'safari', 'edge'")
	w.close()
	w.close()

	w.open("excludes")
	w.open("exclude")
	w.open("axis")
	w.line("name 'PLATFORM'")
	w.line("values 'linux'")
	w.close()
	w.open("axis")
	w.line("name 'BROWSER'")
	w.line("values 'safari'")
	w.close()
	w.close()
	w.close()

	w.open("stages")
	w.open("stage('Build')")
	w.steps(func() {
		w.line(`echo "Do Build for ${PLATFORM} - ${BROWSER}"`)
	})
	w.close()
	w.open("stage('Test')")
	w.steps(func() {
		w.line(`echo "Do Test for ${PLATFORM} - ${BROWSER}"`)
	})
	w.close()
	w.close()

	w.close()
}

// blockWriter accumulates indented block text, four spaces per level.
type blockWriter struct {
	b      strings.Builder
	indent int
}

func (w *blockWriter) line(s string) {
	for i := 0; i < w.indent; i++ {
		w.b.WriteString("    ")
	}
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *blockWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *blockWriter) open(s string) {
	w.line(s + " {")
	w.indent++
}

func (w *blockWriter) close() {
	w.indent--
	w.line("}")
}

func (w *blockWriter) steps(body func()) {
	w.open("steps")
	body()
	w.close()
}

func (w *blockWriter) String() string {
	return w.b.String()
}
