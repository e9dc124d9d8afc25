// Package health computes pipeline health metrics from recent build history:
// success and failure rates, duration averages, a trend signal, and derived
// issues and recommendations.
package health

import (
	"fmt"
	"time"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

// Report summarizes a pipeline's recent health over one analysis window.
type Report struct {
	PipelineName       string   `json:"pipeline_name"`
	Period             string   `json:"period"`
	SuccessRate        float64  `json:"success_rate"`
	FailureRate        float64  `json:"failure_rate"`
	AverageDurationSec float64  `json:"average_duration"`
	TotalBuilds        int      `json:"total_builds"`
	SuccessfulBuilds   int      `json:"successful_builds"`
	FailedBuilds       int      `json:"failed_builds"`
	Trend              string   `json:"trend"`
	Issues             []string `json:"issues"`
	Recommendations    []string `json:"recommendations"`
}

// PeriodDays maps an analysis-period name to a day count. Unknown names fall
// back to 7 days.
func PeriodDays(period string) int {
	switch period {
	case "last_24h":
		return 1
	case "last_30d":
		return 30
	default:
		return 7
	}
}

// Analyze computes the health report for builds that started at or after the
// cutoff. Builds are expected newest-first, as the Jenkins API returns them.
func Analyze(pipelineName, period string, builds []jenkins.Build, cutoff time.Time) Report {
	recent := make([]jenkins.Build, 0, len(builds))
	for _, b := range builds {
		ts := time.Time(b.Timestamp)
		if !ts.IsZero() && !ts.Before(cutoff) {
			recent = append(recent, b)
		}
	}

	report := Report{
		PipelineName:    pipelineName,
		Period:          period,
		Issues:          []string{},
		Recommendations: []string{},
	}

	if len(recent) == 0 {
		report.Trend = "no_data"
		return report
	}

	var successful, failed int
	var durationSum int64
	var durationCount int
	for _, b := range recent {
		switch b.Result {
		case "SUCCESS":
			successful++
		case "FAILURE":
			failed++
		}
		if ms := b.Duration.Milliseconds(); ms > 0 {
			durationSum += ms
			durationCount++
		}
	}

	report.TotalBuilds = len(recent)
	report.SuccessfulBuilds = successful
	report.FailedBuilds = failed
	report.SuccessRate = float64(successful) / float64(len(recent)) * 100
	report.FailureRate = float64(failed) / float64(len(recent)) * 100
	if durationCount > 0 {
		report.AverageDurationSec = float64(durationSum) / float64(durationCount) / 1000
	}
	report.Trend = determineTrend(recent)
	report.Issues, report.Recommendations = analyzeIssues(report.SuccessRate, report.FailureRate, recent)

	return report
}

// determineTrend compares the success rate of the newer half of builds
// against the older half. Fewer than 10 builds is not enough signal.
func determineTrend(builds []jenkins.Build) string {
	if len(builds) < 10 {
		return "insufficient_data"
	}

	mid := len(builds) / 2
	newerRate := successRate(builds[:mid])
	olderRate := successRate(builds[mid:])

	switch {
	case newerRate > olderRate+0.1:
		return "improving"
	case newerRate < olderRate-0.1:
		return "declining"
	default:
		return "stable"
	}
}

func successRate(builds []jenkins.Build) float64 {
	if len(builds) == 0 {
		return 0
	}
	var successful int
	for _, b := range builds {
		if b.Result == "SUCCESS" {
			successful++
		}
	}
	return float64(successful) / float64(len(builds))
}

// analyzeIssues flags rate thresholds and consecutive-failure streaks. The
// streak scan looks at the five most recent builds and stops at the first
// non-failure.
func analyzeIssues(successRate, failureRate float64, builds []jenkins.Build) (issues, recommendations []string) {
	issues = []string{}
	recommendations = []string{}

	if successRate < 80 {
		issues = append(issues, fmt.Sprintf("Low success rate: %.1f%%", successRate))
		recommendations = append(recommendations, "Investigate and fix common failure causes")
	}

	if failureRate > 20 {
		issues = append(issues, fmt.Sprintf("High failure rate: %.1f%%", failureRate))
		recommendations = append(recommendations, "Implement better error handling and retry mechanisms")
	}

	consecutive := 0
	for i, b := range builds {
		if i >= 5 || b.Result != "FAILURE" {
			break
		}
		consecutive++
	}
	if consecutive >= 3 {
		issues = append(issues, fmt.Sprintf("%d consecutive failures", consecutive))
		recommendations = append(recommendations, "Immediate investigation required - check recent changes")
	}

	return issues, recommendations
}
