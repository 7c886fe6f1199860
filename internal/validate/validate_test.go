package validate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodLine = `{"timestamp":"2026-08-30T12:00:00Z","eventid":"cowrie.session.connect","src_ip":"203.0.113.7","session":"abc123"}`

func TestCheckEmptyContent(t *testing.T) {
	report := Check("", 10)
	assert.Equal(t, 0, report.TotalLines)
	assert.Equal(t, 0, report.SampledLines)
	assert.Equal(t, 0, report.ValidLines)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Sample)
	assert.Empty(t, report.FieldCoverage)
}

func TestCheckValidLines(t *testing.T) {
	content := strings.Repeat(goodLine+"\n", 4)
	report := Check(content, 10)

	assert.Equal(t, 4, report.TotalLines)
	assert.Equal(t, 4, report.SampledLines)
	assert.Equal(t, 4, report.ValidLines)
	assert.Equal(t, 0, report.InvalidLines)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, map[string]int{"cowrie.session.connect": 4}, report.EventTypes)

	cov, ok := report.FieldCoverage["src_ip"]
	require.True(t, ok)
	assert.Equal(t, 4, cov.Count)
	assert.Equal(t, "100.0", cov.Percentage)

	_, ok = report.FieldCoverage["dst_ip"]
	assert.False(t, ok, "uncovered fields must not appear in coverage")
}

func TestCheckInvalidJSON(t *testing.T) {
	content := goodLine + "\n{broken\nnull\n[1,2]\n"
	report := Check(content, 10)

	assert.Equal(t, 1, report.ValidLines)
	assert.Equal(t, 3, report.InvalidLines)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, "line 2: invalid JSON", report.Errors[0])
}

func TestCheckMissingRequiredFields(t *testing.T) {
	content := `{"src_ip":"203.0.113.7"}` + "\n" +
		`{"timestamp":"","eventid":"cowrie.session.connect"}` + "\n"
	report := Check(content, 10)

	assert.Equal(t, 2, report.ValidLines)
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, "line 1: missing required fields: timestamp, eventid", report.Warnings[0])
	// Empty strings count as missing.
	assert.Equal(t, "line 2: missing required fields: timestamp", report.Warnings[1])
}

func TestCheckSampleSizeLimitsScope(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(goodLine + "\n")
	}
	sb.WriteString("{broken\n")
	report := Check(sb.String(), 5)

	assert.Equal(t, 51, report.TotalLines)
	assert.Equal(t, 5, report.SampledLines)
	assert.Equal(t, 5, report.ValidLines)
	// The broken line is past the sample window.
	assert.Equal(t, 0, report.InvalidLines)
	assert.Equal(t, "100.0", report.FieldCoverage["timestamp"].Percentage)
}

func TestCheckSampleCappedAtThree(t *testing.T) {
	report := Check(strings.Repeat(goodLine+"\n", 8), 10)
	assert.Len(t, report.Sample, 3)
	assert.Equal(t, "cowrie.session.connect", report.Sample[0]["eventid"])
}

func TestCheckCoveragePercentage(t *testing.T) {
	content := goodLine + "\n" +
		`{"timestamp":"2026-08-30T12:01:00Z","eventid":"cowrie.login.failed"}` + "\n" +
		`{"timestamp":"2026-08-30T12:02:00Z","eventid":"cowrie.login.failed"}` + "\n"
	report := Check(content, 10)

	cov := report.FieldCoverage["src_ip"]
	assert.Equal(t, 1, cov.Count)
	assert.Equal(t, "33.3", cov.Percentage)
	assert.Equal(t, 2, report.EventTypes["cowrie.login.failed"])
}

func TestCheckNumericAndBooleanPresence(t *testing.T) {
	content := `{"timestamp":"2026-08-30T12:00:00Z","eventid":"cowrie.session.connect","dst_port":2222}` + "\n" +
		`{"timestamp":"2026-08-30T12:00:01Z","eventid":"cowrie.session.connect","dst_port":0}` + "\n"
	report := Check(content, 10)

	cov := report.FieldCoverage["dst_port"]
	assert.Equal(t, 1, cov.Count, "zero-valued numbers count as missing")
	assert.Equal(t, "50.0", cov.Percentage)
}

func TestCheckDefaultSampleSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "%s\n", goodLine)
	}
	report := Check(sb.String(), 0)
	assert.Equal(t, DefaultSampleSize, report.SampledLines)
}
