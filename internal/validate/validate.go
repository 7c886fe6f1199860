// Package validate checks raw honeypot log text against the expected
// line-delimited JSON shape and reports field coverage over a sample of
// lines. It diagnoses format drift without requiring the full file to be
// well formed.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// DefaultSampleSize is the number of leading lines inspected when the
// caller does not specify one.
const DefaultSampleSize = 10

const maxSampleEntries = 3

var requiredFields = []string{"timestamp", "eventid"}

var commonFields = []string{"src_ip", "session", "dst_ip", "dst_port", "protocol"}

// Check validates the first sampleSize non-blank lines of content. A
// non-positive sampleSize falls back to DefaultSampleSize. Validation
// never fails: malformed lines are reported inside the result.
func Check(content string, sampleSize int) model.ValidationReport {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	sampled := sampleSize
	if len(lines) < sampled {
		sampled = len(lines)
	}

	report := model.ValidationReport{
		TotalLines:    len(lines),
		SampledLines:  sampled,
		Errors:        []string{},
		Warnings:      []string{},
		Sample:        []map[string]any{},
		EventTypes:    map[string]int{},
		FieldCoverage: map[string]model.FieldCoverage{},
	}

	coverage := make(map[string]int)
	for i := 0; i < sampled; i++ {
		lineNumber := i + 1

		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil || entry == nil {
			report.InvalidLines++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: invalid JSON", lineNumber))
			continue
		}
		report.ValidLines++

		var missing []string
		for _, field := range requiredFields {
			if !present(entry, field) {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("line %d: missing required fields: %s", lineNumber, strings.Join(missing, ", ")))
		}

		if id, ok := entry["eventid"].(string); ok && id != "" {
			report.EventTypes[id]++
		}

		for _, field := range append(append([]string{}, requiredFields...), commonFields...) {
			if present(entry, field) {
				coverage[field]++
			}
		}

		if len(report.Sample) < maxSampleEntries {
			report.Sample = append(report.Sample, entry)
		}
	}

	for field, count := range coverage {
		report.FieldCoverage[field] = model.FieldCoverage{
			Count:      count,
			Percentage: fmt.Sprintf("%.1f", float64(count)/float64(sampled)*100),
		}
	}
	return report
}

// present applies the same emptiness rules to every field: absent, null,
// empty string, zero number, and false all count as missing.
func present(entry map[string]any, field string) bool {
	v, ok := entry[field]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	}
	return true
}
