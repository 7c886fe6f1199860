package analyze

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, 10, rules.BruteForce.Threshold)
	assert.Equal(t, time.Hour, rules.BruteForce.Window)
	assert.Equal(t, 20, rules.TopN)
	assert.Equal(t, "Failed Login", rules.label("cowrie.login.failed"))
	assert.Contains(t, rules.MalwareExtensions, ".exe")
}

func TestLabelFallsBackToRawTag(t *testing.T) {
	assert.Equal(t, "cowrie.client.version", DefaultRules().label("cowrie.client.version"))
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `
labels:
  cowrie.login.failed: "Login Failure"
malwareExtensions: [".bin"]
bruteForce:
  threshold: 5
topN: 3
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	// Overridden keys.
	assert.Equal(t, "Login Failure", rules.label("cowrie.login.failed"))
	assert.Equal(t, []string{".bin"}, rules.MalwareExtensions)
	assert.Equal(t, 5, rules.BruteForce.Threshold)
	assert.Equal(t, 3, rules.TopN)

	// Untouched keys keep their defaults.
	assert.Equal(t, "Successful Login", rules.label("cowrie.login.success"))
	assert.Equal(t, time.Hour, rules.BruteForce.Window)
	assert.Equal(t, DefaultRules().ReconCommands, rules.ReconCommands)
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	// The defaults still come back usable.
	assert.Equal(t, 10, rules.BruteForce.Threshold)
}

func TestLoadRulesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels: [not, a, map]"), 0o600))
	_, err := LoadRules(path)
	assert.Error(t, err)
}
