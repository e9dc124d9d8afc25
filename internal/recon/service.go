package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

// BuildSource is the slice of the Jenkins client the reconstruction flows
// depend on.
type BuildSource interface {
	GetBuilds(ctx context.Context, jobName string, limit int) ([]jenkins.Build, error)
	GetBuildInfo(ctx context.Context, jobName string, buildNumber int) (*jenkins.Build, error)
	GetJobConfig(ctx context.Context, jobName string) (string, error)
	GetExecutionTrace(ctx context.Context, jobName string, buildNumber int) (*jenkins.ExecutionTrace, error)
	ExecuteScript(ctx context.Context, script string) (string, error)
}

// ReconstructionResult is the payload returned for a reconstruction request.
// When no build qualifies for analysis, only Error is set.
type ReconstructionResult struct {
	PipelineName  string              `json:"pipeline_name,omitempty"`
	BuildAnalyzed int                 `json:"build_analyzed,omitempty"`
	Jenkinsfile   string              `json:"reconstructed_jenkinsfile,omitempty"`
	Analysis      *StructuralAnalysis `json:"analysis,omitempty"`
	Method        string              `json:"reconstruction_method,omitempty"`
	Timestamp     string              `json:"timestamp,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// ImprovementResult is the payload returned for a suggestion request.
type ImprovementResult struct {
	PipelineName     string          `json:"pipeline_name,omitempty"`
	TotalSuggestions int             `json:"total_suggestions"`
	Suggestions      []Suggestion    `json:"suggestions"`
	AnalysisSummary  analysisSummary `json:"analysis_summary"`
	Error            string          `json:"error,omitempty"`
}

type analysisSummary struct {
	Technologies  []string `json:"technologies"`
	TotalDuration string   `json:"total_duration"`
	StageCount    int      `json:"stage_count"`
}

type cachedReconstruction struct {
	definition string
	analysis   StructuralAnalysis
}

// Service drives Jenkinsfile reconstruction, retrieval, and improvement
// suggestions against one Jenkins controller.
type Service struct {
	source    BuildSource
	log       zerolog.Logger
	maxBuilds int
	cache     *expirable.LRU[string, cachedReconstruction]
	now       func() time.Time
}

// NewService builds a Service. maxBuilds bounds the recent-build scan and
// cacheTTL bounds how long a build's reconstruction is reused; repeated
// requests for the same pipeline hit the cache because a finished build's
// trace never changes.
func NewService(source BuildSource, maxBuilds int, cacheTTL time.Duration, log zerolog.Logger) *Service {
	if maxBuilds <= 0 {
		maxBuilds = 10
	}
	return &Service{
		source:    source,
		log:       log,
		maxBuilds: maxBuilds,
		cache:     expirable.NewLRU[string, cachedReconstruction](128, nil, cacheTTL),
		now:       time.Now,
	}
}

// ReconstructJenkinsfile rebuilds a pipeline definition from the most recent
// successful build of the named pipeline. The absence of a usable build is a
// data outcome, not an error: the result carries an Error field and the
// returned error stays nil.
func (s *Service) ReconstructJenkinsfile(ctx context.Context, pipelineName string) (*ReconstructionResult, error) {
	s.log.Info().Str("pipeline", pipelineName).Msg("reconstructing pipeline definition")

	build, err := s.latestSuccessfulBuild(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return &ReconstructionResult{Error: "No successful builds found for analysis"}, nil
	}

	definition, analysis, err := s.reconstructBuild(ctx, pipelineName, build.Number)
	if err != nil {
		return nil, err
	}

	return &ReconstructionResult{
		PipelineName:  pipelineName,
		BuildAnalyzed: build.Number,
		Jenkinsfile:   definition,
		Analysis:      &analysis,
		Method:        "execution_flow_analysis",
		Timestamp:     s.now().Format(time.RFC3339),
	}, nil
}

// SuggestImprovements reconstructs the pipeline definition and evaluates the
// suggestion rules against it.
func (s *Service) SuggestImprovements(ctx context.Context, pipelineName string) (*ImprovementResult, error) {
	build, err := s.latestSuccessfulBuild(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return &ImprovementResult{
			Error:       "No successful builds found for analysis",
			Suggestions: []Suggestion{},
		}, nil
	}

	definition, analysis, err := s.reconstructBuild(ctx, pipelineName, build.Number)
	if err != nil {
		return nil, err
	}

	suggestions := Suggest(definition, analysis)
	return &ImprovementResult{
		PipelineName:     pipelineName,
		TotalSuggestions: len(suggestions),
		Suggestions:      suggestions,
		AnalysisSummary: analysisSummary{
			Technologies:  analysis.TechnologiesUsed,
			TotalDuration: analysis.TotalDurationFormatted,
			StageCount:    analysis.TotalStages,
		},
	}, nil
}

// latestSuccessfulBuild scans the recent builds newest-first and returns the
// first one that finished with SUCCESS. Per-build fetch failures are skipped;
// the scan only fails if the build list itself cannot be fetched. A nil build
// with a nil error means no build qualified.
func (s *Service) latestSuccessfulBuild(ctx context.Context, pipelineName string) (*jenkins.Build, error) {
	builds, err := s.source.GetBuilds(ctx, pipelineName, s.maxBuilds)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds for %s: %w", pipelineName, err)
	}

	for _, b := range builds {
		info, err := s.source.GetBuildInfo(ctx, pipelineName, b.Number)
		if err != nil {
			s.log.Debug().Err(err).Int("build", b.Number).Msg("skipping build, info fetch failed")
			continue
		}
		if info.Result == "SUCCESS" {
			return info, nil
		}
	}
	return nil, nil
}

// reconstructBuild produces the definition and analysis for one specific
// build, consulting the cache first.
func (s *Service) reconstructBuild(ctx context.Context, pipelineName string, buildNumber int) (string, StructuralAnalysis, error) {
	key := fmt.Sprintf("%s#%d", pipelineName, buildNumber)
	if cached, ok := s.cache.Get(key); ok {
		return cached.definition, cached.analysis, nil
	}

	trace, err := s.source.GetExecutionTrace(ctx, pipelineName, buildNumber)
	if err != nil {
		return "", StructuralAnalysis{}, fmt.Errorf("failed to fetch execution trace for %s #%d: %w", pipelineName, buildNumber, err)
	}

	// Config fetch failures degrade to defaults rather than failing the
	// reconstruction; the trace alone still yields a usable skeleton.
	var config ConfigRecord
	if configXML, err := s.source.GetJobConfig(ctx, pipelineName); err != nil {
		s.log.Warn().Err(err).Str("pipeline", pipelineName).Msg("could not retrieve job config, using defaults")
		config = ParseConfig("")
	} else {
		config = ParseConfig(configXML)
	}

	definition := Reconstruct(config, trace)
	analysis := Analyze(trace)

	s.cache.Add(key, cachedReconstruction{definition: definition, analysis: analysis})
	return definition, analysis, nil
}
