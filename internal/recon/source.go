package recon

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
)

// Markers framing the Jenkinsfile payload inside raw script output. The
// script console is a plain text channel, so these lines are the only
// reliable payload boundary.
const (
	jenkinsfileStartMarker = "=== JENKINSFILE_CONTENT_START ==="
	jenkinsfileEndMarker   = "=== JENKINSFILE_CONTENT_END ==="
)

// JenkinsfileResult reports one retrieved Jenkinsfile and how it was found.
type JenkinsfileResult struct {
	JobName   string `json:"job_name"`
	Content   string `json:"content"`
	Method    string `json:"method"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Success   bool   `json:"success"`
}

var (
	scriptPathRE   = regexp.MustCompile(`<scriptPath>(.*?)</scriptPath>`)
	inlineScriptRE = regexp.MustCompile(`(?s)<script>(.*?)</script>`)
)

// GetJenkinsfile fetches the actual pipeline definition for a job, as opposed
// to reconstructing one. It reads the Jenkinsfile out of the job's SCM via a
// controller-side script first and falls back to the inline script embedded
// in the job configuration. Failures of individual strategies are recorded in
// the result, not returned as errors.
func (s *Service) GetJenkinsfile(ctx context.Context, jobName string) (*JenkinsfileResult, error) {
	s.log.Info().Str("pipeline", jobName).Msg("retrieving Jenkinsfile")

	content, err := s.jenkinsfileViaSCM(ctx, jobName)
	if err == nil {
		return &JenkinsfileResult{
			JobName:   jobName,
			Content:   content,
			Method:    "SCMFileSystem",
			Source:    "Git Repository",
			Timestamp: s.now().Format(time.RFC3339),
			Success:   true,
		}, nil
	}
	s.log.Debug().Err(err).Str("pipeline", jobName).Msg("SCM retrieval failed, trying job config")

	content, source, err := s.jenkinsfileFromConfig(ctx, jobName)
	if err == nil {
		return &JenkinsfileResult{
			JobName:   jobName,
			Content:   content,
			Method:    "config.xml",
			Source:    source,
			Timestamp: s.now().Format(time.RFC3339),
			Success:   true,
		}, nil
	}

	return &JenkinsfileResult{
		JobName:   jobName,
		Content:   fmt.Sprintf("Error: Could not retrieve Jenkinsfile for %s", jobName),
		Method:    "None",
		Source:    "Unknown",
		Timestamp: s.now().Format(time.RFC3339),
		Success:   false,
	}, nil
}

// jenkinsfileViaSCM reads the Jenkinsfile through the controller's
// SCMFileSystem, which resolves the job's SCM without checking out a
// workspace. The script prints the file between known markers.
func (s *Service) jenkinsfileViaSCM(ctx context.Context, jobName string) (string, error) {
	script := fmt.Sprintf(`import jenkins.model.*
import org.jenkinsci.plugins.workflow.job.WorkflowJob
import jenkins.scm.api.SCMFileSystem

def job = Jenkins.instance.getItemByFullName('%s') as WorkflowJob
def scriptPath = job.getDefinition().getScriptPath() ?: "Jenkinsfile"
def scms = job.getDefinition().getSCMs()
if (scms && scms.size() > 0) {
    def scm = scms[0]
    def fs = SCMFileSystem.of(job, scm)
    if (fs != null && fs.getRoot().child(scriptPath).exists()) {
        println "%s"
        println fs.getRoot().child(scriptPath).contentAsString()
        println "%s"
    } else {
        println "=== ERROR: SCMFileSystem null or file not found ==="
    }
} else {
    println "=== ERROR: No SCMs found ==="
}
`, groovyEscape(jobName), jenkinsfileStartMarker, jenkinsfileEndMarker)

	output, err := s.source.ExecuteScript(ctx, script)
	if err != nil {
		return "", err
	}

	content, ok := jenkins.ExtractMarkedPayload(output, jenkinsfileStartMarker, jenkinsfileEndMarker)
	if !ok {
		return "", fmt.Errorf("failed to retrieve Jenkinsfile - %s", strings.TrimSpace(output))
	}
	return content, nil
}

// jenkinsfileFromConfig extracts the pipeline definition from the job's
// config.xml: the inline <script> body for inline pipelines, or an annotated
// pointer for SCM-backed jobs whose definition only names a scriptPath.
func (s *Service) jenkinsfileFromConfig(ctx context.Context, jobName string) (content, source string, err error) {
	configXML, err := s.source.GetJobConfig(ctx, jobName)
	if err != nil {
		return "", "", err
	}

	if m := inlineScriptRE.FindStringSubmatch(configXML); m != nil {
		return strings.TrimSpace(m[1]), "Inline Pipeline Script", nil
	}

	if m := scriptPathRE.FindStringSubmatch(configXML); m != nil {
		scriptPath := m[1]
		content := fmt.Sprintf("# External Jenkinsfile: %s\n# This Jenkinsfile is stored in the Git repository", scriptPath)
		return content, fmt.Sprintf("Git Repository (%s)", scriptPath), nil
	}

	return "", "", fmt.Errorf("no pipeline script found in config.xml for %s", jobName)
}

// groovyEscape makes a job name safe inside a single-quoted Groovy string.
func groovyEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
