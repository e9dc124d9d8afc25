// Package redact scrubs secret-looking values from text before it leaves the
// server. Values are replaced with a short hash so repeated occurrences of
// the same secret remain correlatable without being recoverable.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// secretAssignRE matches key=value or key: value lines where the key suggests
// a credential. The value capture stops at whitespace so surrounding log text
// survives.
var secretAssignRE = regexp.MustCompile(`(?i)\b([\w.-]*(?:token|password|passwd|secret|credential|api[_-]?key|access[_-]?key)[\w.-]*)\s*[:=]\s*("?)([^\s"',;]+)`)

// bearerRE matches Authorization-style bearer and basic tokens.
var bearerRE = regexp.MustCompile(`(?i)\b(bearer|basic)\s+([A-Za-z0-9+/_\-.=]{8,})`)

// Scrub replaces secret-looking values in text with [REDACTED:hash] markers.
// The input is returned unchanged when nothing matches.
func Scrub(text string) string {
	out := secretAssignRE.ReplaceAllStringFunc(text, func(m string) string {
		parts := secretAssignRE.FindStringSubmatch(m)
		return fmt.Sprintf("%s=%s%s", parts[1], parts[2], placeholder(parts[3]))
	})
	out = bearerRE.ReplaceAllStringFunc(out, func(m string) string {
		parts := bearerRE.FindStringSubmatch(m)
		return fmt.Sprintf("%s %s", parts[1], placeholder(parts[2]))
	})
	return out
}

func placeholder(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "[REDACTED:" + hex.EncodeToString(sum[:4]) + "]"
}
