package jenkins

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Pipeline represents a Jenkins job with its current status.
type Pipeline struct {
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	Color        string           `json:"color"` // Jenkins color coding (blue, red, yellow, etc.)
	Class        string           `json:"class,omitempty"`
	Buildable    bool             `json:"buildable"`
	Description  string           `json:"description"`
	LastBuild    *Build           `json:"lastBuild,omitempty"`
	RecentBuilds []Build          `json:"recentBuilds,omitempty"`
	Parameters   []BuildParameter `json:"parameters,omitempty"`
}

// BuildParameter represents a Jenkins build parameter definition.
type BuildParameter struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	DefaultValue any      `json:"defaultValue"`
	Choices      []string `json:"choices,omitempty"`
}

// Build represents one execution of a pipeline.
type Build struct {
	Number            int        `json:"number"`
	URL               string     `json:"url"`
	Building          bool       `json:"building"`
	Result            string     `json:"result"` // SUCCESS, FAILURE, UNSTABLE, ABORTED, empty if building
	Timestamp         TimeMS     `json:"timestamp"`
	Duration          DurationMS `json:"duration"`
	EstimatedDuration DurationMS `json:"estimatedDuration"`
	DisplayName       string     `json:"displayName"`
}

// QueuedBuild represents a queued Jenkins build item.
type QueuedBuild struct {
	JobName     string `json:"jobName"`
	URL         string `json:"url"`
	QueueID     int    `json:"queueId"`
	Why         string `json:"why"`
	QueuedSince TimeMS `json:"queuedSince"`
	Stuck       bool   `json:"stuck"`
	Buildable   bool   `json:"buildable"`
	Parameters  string `json:"parameters,omitempty"`
}

// BuildLogs describes a slice of a Jenkins build log and related metadata.
type BuildLogs struct {
	JobName     string `json:"jobName"`
	BuildNumber int    `json:"buildNumber"`
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
	TotalSize   int    `json:"totalSize"`
	HasMore     bool   `json:"hasMore"`
	Logs        string `json:"logs"`
}

// TriggerResult is the outcome of triggering a build.
type TriggerResult struct {
	JobName     string `json:"jobName"`
	QueueURL    string `json:"queueUrl,omitempty"`
	BuildURL    string `json:"buildUrl,omitempty"`
	BuildNumber int    `json:"buildNumber,omitempty"`
}

// WaitResult is the outcome of waiting for a running build.
type WaitResult struct {
	JobName     string     `json:"jobName"`
	BuildNumber int        `json:"buildNumber"`
	Status      string     `json:"status"` // "success", "failure", "unstable", "aborted", "timeout"
	Result      string     `json:"result"` // raw Jenkins result string
	Duration    DurationMS `json:"duration"`
	WaitTime    DurationMS `json:"waitTime"`
	TimedOut    bool       `json:"timedOut"`
}

// StageRecord is one stage of a build's execution trace as reported by the
// workflow API: a name and how long it ran.
type StageRecord struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"durationMillis"`
}

// ExecutionTrace is the stage-level execution record of one build.
type ExecutionTrace struct {
	Stages          []StageRecord `json:"stages"`
	TotalDurationMS int64         `json:"durationMillis"`
}

// DurationMS is a JSON-friendly duration that unmarshals from milliseconds (number)
// and marshals to a human-readable string (e.g., "5m10s").
type DurationMS time.Duration

// UnmarshalJSON parses a duration from milliseconds or string into DurationMS.
func (d *DurationMS) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = 0
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		*d = DurationMS(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if dur, err := time.ParseDuration(s); err == nil {
			*d = DurationMS(dur)
			return nil
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			*d = DurationMS(time.Duration(v) * time.Millisecond)
			return nil
		}
	}
	return fmt.Errorf("invalid duration value: %s", string(b))
}

// MarshalJSON encodes DurationMS as a human-readable string (e.g., "5m10s").
func (d DurationMS) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Milliseconds reports the duration in whole milliseconds.
func (d DurationMS) Milliseconds() int64 {
	return time.Duration(d).Milliseconds()
}

// TimeMS is a JSON-friendly time that unmarshals from milliseconds-since-epoch (number)
// and marshals to an RFC3339 timestamp string (UTC).
type TimeMS time.Time

// UnmarshalJSON parses a timestamp from milliseconds or RFC3339 string into TimeMS.
func (t *TimeMS) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = TimeMS(time.Time{})
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		sec := ms / 1000
		nsec := (ms % 1000) * int64(time.Millisecond)
		*t = TimeMS(time.Unix(sec, nsec))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			*t = TimeMS(time.Time{})
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			*t = TimeMS(parsed)
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			*t = TimeMS(parsed)
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			sec := ms / 1000
			nsec := (ms % 1000) * int64(time.Millisecond)
			*t = TimeMS(time.Unix(sec, nsec))
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp value: %s", string(b))
}

// MarshalJSON encodes TimeMS as an RFC3339 UTC timestamp string.
func (t TimeMS) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(tt.UTC().Format(time.RFC3339))
}
