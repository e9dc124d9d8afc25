package recon

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// ParseConfig parses a job configuration document into a ConfigRecord. It is
// total: any input, including empty or non-XML garbage, yields a usable
// record. Plugin schemas vary wildly across Jenkins versions, so the outer
// document is walked with a lenient tokenizer and every leaf section is
// extracted defensively, defaulting to empty on failure.
func ParseConfig(configXML string) ConfigRecord {
	rec := ConfigRecord{
		Agent:       AgentDescriptor{Kind: AgentAny},
		Parameters:  []ParameterDef{},
		Triggers:    []TriggerDef{},
		Options:     []OptionDef{},
		Tools:       []ToolRef{},
		Environment: []EnvBinding{},
	}

	if region, ok := extractRegion(configXML, "agent"); ok {
		rec.Agent = parseAgent(region)
	}
	if region, ok := extractRegion(configXML, "parameters"); ok {
		rec.Parameters = parseParameters(region)
	}
	if region, ok := extractRegion(configXML, "triggers"); ok {
		rec.Triggers = parseTriggers(region)
	}
	if region, ok := extractRegion(configXML, "options"); ok {
		rec.Options = parseOptions(region)
	}
	if region, ok := extractRegion(configXML, "tools"); ok {
		rec.Tools = parseTools(region)
	}
	if region, ok := extractRegion(configXML, "envVars"); ok {
		rec.Environment = parseEnvironment(region)
	}

	return rec
}

// extractRegion returns the raw inner text of the first element with the
// given local name, at any depth. It walks the document with a non-strict XML
// tokenizer and falls back to plain substring framing when the tokenizer
// cannot make sense of the input.
func extractRegion(doc, tag string) (string, bool) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	depth := 0
	var start int64 = -1
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if start < 0 && t.Name.Local == tag {
				start = dec.InputOffset()
				depth = 0
			} else if start >= 0 {
				depth++
			}
		case xml.EndElement:
			if start >= 0 {
				if depth == 0 && t.Name.Local == tag {
					end := dec.InputOffset()
					inner := doc[start:end]
					// InputOffset after an EndElement includes the closing
					// tag itself; strip it.
					if i := strings.LastIndex(inner, "</"); i >= 0 {
						inner = inner[:i]
					}
					return inner, true
				}
				depth--
			}
		}
	}

	return extractRegionRaw(doc, tag)
}

// extractRegionRaw is the substring fallback for documents the tokenizer
// rejects outright.
func extractRegionRaw(doc, tag string) (string, bool) {
	open := strings.Index(doc, "<"+tag+">")
	if open < 0 {
		open = strings.Index(doc, "<"+tag+" ")
	}
	if open < 0 {
		return "", false
	}
	rest := doc[open:]
	gt := strings.IndexByte(rest, '>')
	if gt < 0 {
		return "", false
	}
	rest = rest[gt+1:]
	close := strings.Index(rest, "</"+tag+">")
	if close < 0 {
		return "", false
	}
	return rest[:close], true
}

var (
	labelRE     = regexp.MustCompile(`<label>(.*?)</label>`)
	imageRE     = regexp.MustCompile(`<image>(.*?)</image>`)
	dirRE       = regexp.MustCompile(`<dir>(.*?)</dir>`)
	filenameRE  = regexp.MustCompile(`<filename>(.*?)</filename>`)
	buildArgsRE = regexp.MustCompile(`<additionalBuildArgs>(.*?)</additionalBuildArgs>`)
	argsRE      = regexp.MustCompile(`<args>(.*?)</args>`)
	workspaceRE = regexp.MustCompile(`<customWorkspace>(.*?)</customWorkspace>`)
)

// parseAgent classifies the agent region. Variants are checked in priority
// order label, docker, dockerfile, kubernetes, node, none; the docker branch
// requires an <image> tag so that dockerfile agents (whose marker contains
// the substring "docker") fall through to the dockerfile branch.
func parseAgent(content string) AgentDescriptor {
	switch {
	case strings.Contains(content, "label") && !strings.Contains(content, "dockerfile") && !strings.Contains(content, "node"):
		if m := labelRE.FindStringSubmatch(content); m != nil {
			return AgentDescriptor{Kind: AgentLabel, Label: m[1]}
		}
	case strings.Contains(content, "docker") && imageRE.MatchString(content):
		m := imageRE.FindStringSubmatch(content)
		return AgentDescriptor{Kind: AgentDocker, Image: m[1]}
	case strings.Contains(content, "dockerfile"):
		return parseDockerfileAgent(content)
	case strings.Contains(content, "kubernetes"):
		return AgentDescriptor{Kind: AgentKubernetes}
	case strings.Contains(content, "node"):
		return parseNodeAgent(content)
	case strings.Contains(content, "none"):
		return AgentDescriptor{Kind: AgentNone}
	}
	return AgentDescriptor{Kind: AgentAny}
}

func parseDockerfileAgent(content string) AgentDescriptor {
	var opts []string
	if m := dirRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "dir '"+m[1]+"'")
	}
	if m := filenameRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "filename '"+m[1]+"'")
	}
	if m := buildArgsRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "additionalBuildArgs '"+m[1]+"'")
	}
	if m := argsRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "args '"+m[1]+"'")
	}
	if m := labelRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "label '"+m[1]+"'")
	}
	return AgentDescriptor{Kind: AgentDockerfile, Options: opts}
}

func parseNodeAgent(content string) AgentDescriptor {
	var opts []string
	if m := labelRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "label '"+m[1]+"'")
	}
	if m := workspaceRE.FindStringSubmatch(content); m != nil {
		opts = append(opts, "customWorkspace '"+m[1]+"'")
	}
	return AgentDescriptor{Kind: AgentNode, Options: opts}
}

var (
	stringParamRE = regexp.MustCompile(`(?s)<hudson\.model\.StringParameterDefinition>.*?<name>(.*?)</name>.*?<defaultValue>(.*?)</defaultValue>.*?<description>(.*?)</description>`)
	choiceParamRE = regexp.MustCompile(`(?s)<hudson\.model\.ChoiceParameterDefinition>.*?<name>(.*?)</name>.*?<choices class="java\.util\.Arrays\$ArrayList">.*?<a class="string-array">(.*?)</a>.*?<description>(.*?)</description>`)
	choiceValueRE = regexp.MustCompile(`<string>(.*?)</string>`)
	boolParamRE   = regexp.MustCompile(`(?s)<hudson\.model\.BooleanParameterDefinition>.*?<name>(.*?)</name>.*?<defaultValue>(.*?)</defaultValue>.*?<description>(.*?)</description>`)
	passwdParamRE = regexp.MustCompile(`(?s)<hudson\.model\.PasswordParameterDefinition>.*?<name>(.*?)</name>.*?<description>(.*?)</description>`)
	textParamRE   = regexp.MustCompile(`(?s)<hudson\.model\.TextParameterDefinition>.*?<name>(.*?)</name>.*?<defaultValue>(.*?)</defaultValue>.*?<description>(.*?)</description>`)
)

// parseParameters extracts parameter definitions. The five kinds are
// extracted independently and concatenated in kind order
// (string, choice, boolean, password, text); cross-kind document order is not
// preserved, which downstream consumers depend on.
func parseParameters(region string) []ParameterDef {
	params := []ParameterDef{}

	for _, m := range stringParamRE.FindAllStringSubmatch(region, -1) {
		params = append(params, ParameterDef{
			Kind:        ParamString,
			Name:        m[1],
			Default:     m[2],
			Description: strings.TrimSpace(m[3]),
		})
	}
	for _, m := range choiceParamRE.FindAllStringSubmatch(region, -1) {
		var choices []string
		for _, cm := range choiceValueRE.FindAllStringSubmatch(m[2], -1) {
			choices = append(choices, cm[1])
		}
		params = append(params, ParameterDef{
			Kind:        ParamChoice,
			Name:        m[1],
			Choices:     choices,
			Description: strings.TrimSpace(m[3]),
		})
	}
	for _, m := range boolParamRE.FindAllStringSubmatch(region, -1) {
		def := "false"
		if strings.EqualFold(m[2], "true") {
			def = "true"
		}
		params = append(params, ParameterDef{
			Kind:        ParamBoolean,
			Name:        m[1],
			Default:     def,
			Description: strings.TrimSpace(m[3]),
		})
	}
	for _, m := range passwdParamRE.FindAllStringSubmatch(region, -1) {
		params = append(params, ParameterDef{
			Kind:        ParamPassword,
			Name:        m[1],
			Description: strings.TrimSpace(m[2]),
		})
	}
	for _, m := range textParamRE.FindAllStringSubmatch(region, -1) {
		params = append(params, ParameterDef{
			Kind:        ParamText,
			Name:        m[1],
			Default:     m[2],
			Description: strings.TrimSpace(m[3]),
		})
	}

	return params
}

var (
	specRE     = regexp.MustCompile(`<spec>(.*?)</spec>`)
	upstreamRE = regexp.MustCompile(`(?s)<upstreamProjects>(.*?)</upstreamProjects>`)
)

// parseTriggers extracts triggers via presence-based plugin-class markers.
func parseTriggers(region string) []TriggerDef {
	triggers := []TriggerDef{}

	if strings.Contains(region, "GitHubPushTrigger") {
		triggers = append(triggers, TriggerDef{Kind: TriggerGithubPush})
	}
	if strings.Contains(region, "hudson.triggers.SCMTrigger") {
		if m := specRE.FindStringSubmatch(region); m != nil {
			triggers = append(triggers, TriggerDef{Kind: TriggerPollSCM, Spec: m[1]})
		}
	}
	if strings.Contains(region, "hudson.triggers.TimerTrigger") {
		if m := specRE.FindStringSubmatch(region); m != nil {
			triggers = append(triggers, TriggerDef{Kind: TriggerCron, Spec: m[1]})
		}
	}
	if strings.Contains(region, "hudson.triggers.UpstreamTrigger") {
		if m := upstreamRE.FindStringSubmatch(region); m != nil {
			triggers = append(triggers, TriggerDef{Kind: TriggerUpstream, Projects: strings.TrimSpace(m[1])})
		}
	}

	return triggers
}

var (
	timeoutMinutesRE = regexp.MustCompile(`<timeoutMinutes>(.*?)</timeoutMinutes>`)
	retryCountRE     = regexp.MustCompile(`<retryCount>(.*?)</retryCount>`)
	colorMapRE       = regexp.MustCompile(`<colorMapName>(.*?)</colorMapName>`)
	numToKeepRE      = regexp.MustCompile(`<numToKeep>(.*?)</numToKeep>`)
)

// parseOptions extracts pipeline options via presence-based plugin-class
// markers; first match wins for value-carrying fields.
func parseOptions(region string) []OptionDef {
	options := []OptionDef{}

	if strings.Contains(region, "hudson.plugins.build__timeout.BuildTimeoutWrapper") {
		if m := timeoutMinutesRE.FindStringSubmatch(region); m != nil {
			options = append(options, OptionDef{Kind: OptionTimeout, Minutes: m[1]})
		}
	}
	if strings.Contains(region, "hudson.plugins.retry.RetryBuildStep") {
		if m := retryCountRE.FindStringSubmatch(region); m != nil {
			options = append(options, OptionDef{Kind: OptionRetry, Count: m[1]})
		}
	}
	if strings.Contains(region, "hudson.plugins.timestamper.TimestamperBuildWrapper") {
		options = append(options, OptionDef{Kind: OptionTimestamps})
	}
	if strings.Contains(region, "hudson.plugins.ansicolor.AnsiColorBuildWrapper") {
		palette := "xterm"
		if m := colorMapRE.FindStringSubmatch(region); m != nil {
			palette = m[1]
		}
		options = append(options, OptionDef{Kind: OptionAnsiColor, Palette: palette})
	}
	if strings.Contains(region, "hudson.plugins.workspacecleaner.WorkspaceCleaner") {
		options = append(options, OptionDef{Kind: OptionSkipDefaultCheckout})
	}
	if strings.Contains(region, "hudson.tasks.LogRotator") {
		if m := numToKeepRE.FindStringSubmatch(region); m != nil {
			options = append(options, OptionDef{Kind: OptionBuildDiscarder, KeepCount: m[1]})
		}
	}
	if strings.Contains(region, "hudson.model.BuildDiscarderProperty") {
		options = append(options, OptionDef{Kind: OptionDisableConcurrentBuilds})
	}

	return options
}

var toolREs = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"maven", regexp.MustCompile(`(?s)<hudson\.plugins\.maven\.MavenInstallation>.*?<name>(.*?)</name>`)},
	{"jdk", regexp.MustCompile(`(?s)<hudson\.model\.JDK>.*?<name>(.*?)</name>`)},
	{"gradle", regexp.MustCompile(`(?s)<hudson\.plugins\.gradle\.GradleInstallation>.*?<name>(.*?)</name>`)},
	{"nodejs", regexp.MustCompile(`(?s)<hudson\.plugins\.nodejs\.tools\.NodeJSInstallation>.*?<name>(.*?)</name>`)},
}

// parseTools extracts tool installations; one entry per recognized kind,
// first match wins.
func parseTools(region string) []ToolRef {
	tools := []ToolRef{}
	for _, t := range toolREs {
		if m := t.re.FindStringSubmatch(region); m != nil {
			tools = append(tools, ToolRef{Kind: t.kind, Name: m[1]})
		}
	}
	return tools
}

var (
	stringEnvRE = regexp.MustCompile(`(?s)<hudson\.model\.StringParameterValue>.*?<name>(.*?)</name>.*?<value>(.*?)</value>`)
	credEnvRE   = regexp.MustCompile(`(?s)<hudson\.plugins\.credentialsbinding\.impl\.StringBinding>.*?<variable>(.*?)</variable>.*?<credentialId>(.*?)</credentialId>`)
)

// parseEnvironment extracts environment bindings: literal values first, then
// credential references.
func parseEnvironment(region string) []EnvBinding {
	env := []EnvBinding{}
	for _, m := range stringEnvRE.FindAllStringSubmatch(region, -1) {
		env = append(env, EnvBinding{Name: m[1], Value: m[2]})
	}
	for _, m := range credEnvRE.FindAllStringSubmatch(region, -1) {
		env = append(env, EnvBinding{Name: m[1], CredentialID: m[2]})
	}
	return env
}
