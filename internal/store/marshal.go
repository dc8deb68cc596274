package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/cicverify/internal/sweep"
)

// timeLayout keeps timestamps sortable as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// marshalText converts v to JSON TEXT for storage. HTML escaping is
// disabled so failure messages read back exactly as written.
func marshalText(what string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// marshalStrings stores nil and empty lists alike as "[]".
func marshalStrings(what string, list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	return marshalText(what, list)
}

func unmarshalStrings(what, text string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", what, err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

func unmarshalJob(text string) (sweep.Job, error) {
	var job sweep.Job
	if err := json.Unmarshal([]byte(text), &job); err != nil {
		return sweep.Job{}, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(text string) (time.Time, error) {
	t, err := time.Parse(timeLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return t, nil
}
