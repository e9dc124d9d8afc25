// Package recon reconstructs Jenkinsfile content from a pipeline's execution
// history and job configuration. The output is a heuristic, labeled skeleton
// of the pipeline definition, not a verified recovery of the original source:
// the workflow API exposes stage names and timings, never the literal step
// commands that ran.
package recon

// AgentKind enumerates the recognized agent variants.
type AgentKind string

const (
	AgentAny        AgentKind = "any"
	AgentNone       AgentKind = "none"
	AgentLabel      AgentKind = "label"
	AgentDocker     AgentKind = "docker"
	AgentDockerfile AgentKind = "dockerfile"
	AgentNode       AgentKind = "node"
	AgentKubernetes AgentKind = "kubernetes"
)

// AgentDescriptor is the normalized agent configuration of a job.
type AgentDescriptor struct {
	Kind  AgentKind `json:"kind"`
	Label string    `json:"label,omitempty"` // Label variant
	Image string    `json:"image,omitempty"` // Docker variant
	// Rendered sub-options in source order, e.g. "dir 'src'" or
	// "customWorkspace '/ws'". Used by the Dockerfile and Node variants.
	Options []string `json:"options,omitempty"`
}

// ParameterKind enumerates the recognized parameter definition kinds.
type ParameterKind string

const (
	ParamString   ParameterKind = "string"
	ParamChoice   ParameterKind = "choice"
	ParamBoolean  ParameterKind = "booleanParam"
	ParamPassword ParameterKind = "password"
	ParamText     ParameterKind = "text"
)

// ParameterDef is one build parameter definition.
type ParameterDef struct {
	Kind        ParameterKind `json:"kind"`
	Name        string        `json:"name"`
	Default     string        `json:"default,omitempty"`
	Choices     []string      `json:"choices,omitempty"`
	Description string        `json:"description,omitempty"`
}

// TriggerKind enumerates the recognized trigger kinds.
type TriggerKind string

const (
	TriggerGithubPush TriggerKind = "githubPush"
	TriggerPollSCM    TriggerKind = "pollSCM"
	TriggerCron       TriggerKind = "cron"
	TriggerUpstream   TriggerKind = "upstream"
)

// TriggerDef is one build trigger.
type TriggerDef struct {
	Kind     TriggerKind `json:"kind"`
	Spec     string      `json:"spec,omitempty"`     // PollSCM / Cron schedule
	Projects string      `json:"projects,omitempty"` // Upstream project list
}

// OptionKind enumerates the recognized pipeline options.
type OptionKind string

const (
	OptionTimeout                 OptionKind = "timeout"
	OptionRetry                   OptionKind = "retry"
	OptionTimestamps              OptionKind = "timestamps"
	OptionAnsiColor               OptionKind = "ansiColor"
	OptionSkipDefaultCheckout     OptionKind = "skipDefaultCheckout"
	OptionBuildDiscarder          OptionKind = "buildDiscarder"
	OptionDisableConcurrentBuilds OptionKind = "disableConcurrentBuilds"
)

// OptionDef is one pipeline option.
type OptionDef struct {
	Kind      OptionKind `json:"kind"`
	Minutes   string     `json:"minutes,omitempty"`   // Timeout
	Count     string     `json:"count,omitempty"`     // Retry
	Palette   string     `json:"palette,omitempty"`   // AnsiColor
	KeepCount string     `json:"keepCount,omitempty"` // BuildDiscarder
}

// ToolRef is one tool installation reference.
type ToolRef struct {
	Kind string `json:"kind"` // maven, jdk, gradle, nodejs
	Name string `json:"name"`
}

// EnvBinding is one environment variable binding: either a literal value or a
// credential reference, never both.
type EnvBinding struct {
	Name         string `json:"name"`
	Value        string `json:"value,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
}

// ConfigRecord is the normalized view of one job's configuration. Each list
// preserves the order entries appear in the source document within their kind;
// duplicates are preserved as-is.
type ConfigRecord struct {
	Agent       AgentDescriptor `json:"agent"`
	Parameters  []ParameterDef  `json:"parameters"`
	Triggers    []TriggerDef    `json:"triggers"`
	Options     []OptionDef     `json:"options"`
	Tools       []ToolRef       `json:"tools"`
	Environment []EnvBinding    `json:"environment"`
}

// StageBreakdown is the per-stage share of one build's execution time.
type StageBreakdown struct {
	Name              string  `json:"name"`
	DurationMS        int64   `json:"duration_ms"`
	DurationFormatted string  `json:"duration_formatted"`
	Percentage        float64 `json:"percentage"`
}

// StructuralAnalysis is the derived, read-only structural view of one build.
type StructuralAnalysis struct {
	TotalStages            int              `json:"total_stages"`
	TotalDurationMS        int64            `json:"total_duration_ms"`
	TotalDurationFormatted string           `json:"total_duration_formatted"`
	StageBreakdown         []StageBreakdown `json:"stage_breakdown"`
	TechnologiesUsed       []string         `json:"technologies_used"`
	AWSIntegration         bool             `json:"aws_integration"`
	KubernetesIntegration  bool             `json:"kubernetes_integration"`
	DockerUsage            bool             `json:"docker_usage"`
	HelmUsage              bool             `json:"helm_usage"`
	SharedLibraryUsage     bool             `json:"jenkins_library_usage"`
}

// Suggestion is one improvement suggestion for a reconstructed definition.
type Suggestion struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"` // low, medium, high
	Title       string `json:"title"`
	Description string `json:"description"`
	Example     string `json:"example"`
}
