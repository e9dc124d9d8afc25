package recon

import (
	"fmt"
	"strings"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

// technology keyword table: a case-insensitive substring match against any
// stage name sets the flag. Flags only accumulate, never clear.
var technologyKeywords = []struct {
	keywords []string
	set      func(*StructuralAnalysis)
}{
	{[]string{"aws", "ec2"}, func(a *StructuralAnalysis) { a.AWSIntegration = true }},
	{[]string{"k8s", "kubernetes"}, func(a *StructuralAnalysis) { a.KubernetesIntegration = true }},
	{[]string{"docker"}, func(a *StructuralAnalysis) { a.DockerUsage = true }},
	{[]string{"helm"}, func(a *StructuralAnalysis) { a.HelmUsage = true }},
	{[]string{"library"}, func(a *StructuralAnalysis) { a.SharedLibraryUsage = true }},
}

// Analyze derives the structural view of one build's execution trace: stage
// count, duration shares, and technology-usage flags inferred from stage
// names.
func Analyze(trace *jenkins.ExecutionTrace) StructuralAnalysis {
	analysis := StructuralAnalysis{
		TotalStages:            len(trace.Stages),
		TotalDurationMS:        trace.TotalDurationMS,
		TotalDurationFormatted: formatDuration(trace.TotalDurationMS),
		StageBreakdown:         []StageBreakdown{},
		TechnologiesUsed:       []string{},
	}

	for _, stage := range trace.Stages {
		pct := 0.0
		if trace.TotalDurationMS > 0 {
			pct = float64(stage.DurationMS) / float64(trace.TotalDurationMS) * 100
		}
		analysis.StageBreakdown = append(analysis.StageBreakdown, StageBreakdown{
			Name:              stage.Name,
			DurationMS:        stage.DurationMS,
			DurationFormatted: formatDuration(stage.DurationMS),
			Percentage:        pct,
		})

		lower := strings.ToLower(stage.Name)
		for _, tech := range technologyKeywords {
			for _, kw := range tech.keywords {
				if strings.Contains(lower, kw) {
					tech.set(&analysis)
					break
				}
			}
		}
	}

	if analysis.AWSIntegration {
		analysis.TechnologiesUsed = append(analysis.TechnologiesUsed, "AWS")
	}
	if analysis.KubernetesIntegration {
		analysis.TechnologiesUsed = append(analysis.TechnologiesUsed, "Kubernetes")
	}
	if analysis.DockerUsage {
		analysis.TechnologiesUsed = append(analysis.TechnologiesUsed, "Docker")
	}
	if analysis.HelmUsage {
		analysis.TechnologiesUsed = append(analysis.TechnologiesUsed, "Helm")
	}
	if analysis.SharedLibraryUsage {
		analysis.TechnologiesUsed = append(analysis.TechnologiesUsed, "Jenkins Shared Libraries")
	}

	return analysis
}

func formatDuration(ms int64) string {
	return fmt.Sprintf("%.1f seconds", float64(ms)/1000)
}
