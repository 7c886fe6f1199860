package analyze

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rules parameterizes the analytics engine: event-type display labels,
// detector keyword lists, and the brute-force window. Defaults cover the
// stock Cowrie deployment; a YAML file can override any subset.
type Rules struct {
	Labels              map[string]string `yaml:"labels"`
	MalwareExtensions   []string          `yaml:"malwareExtensions"`
	PrivilegeEscalation []string          `yaml:"privilegeEscalation"`
	ReconCommands       []string          `yaml:"reconCommands"`
	BruteForce          BruteForceRule    `yaml:"bruteForce"`
	TopN                int               `yaml:"topN"`
	SessionInterval     time.Duration     `yaml:"sessionInterval"`
}

// BruteForceRule sets the failed-attempt threshold and the sliding window.
type BruteForceRule struct {
	Threshold int           `yaml:"threshold"`
	Window    time.Duration `yaml:"window"`
}

// DefaultRules returns the stock rule set.
func DefaultRules() Rules {
	return Rules{
		Labels: map[string]string{
			"cowrie.login.success":         "Successful Login",
			"cowrie.login.failed":          "Failed Login",
			"cowrie.session.connect":       "Session Connected",
			"cowrie.session.closed":        "Session Closed",
			"cowrie.command.input":         "Command Executed",
			"cowrie.session.file_download": "File Downloaded",
			"cowrie.session.file_upload":   "File Uploaded",
		},
		MalwareExtensions:   []string{".exe", ".sh", ".py"},
		PrivilegeEscalation: []string{"sudo", "su", "chmod +s", "passwd"},
		ReconCommands:       []string{"whoami", "uname", "ps", "netstat", "ifconfig", "ls /etc"},
		BruteForce:          BruteForceRule{Threshold: 10, Window: time.Hour},
		TopN:                20,
		SessionInterval:     time.Hour,
	}
}

// LoadRules reads a YAML override file and overlays it on the defaults.
// Absent keys keep their default values; an empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("analyze: read rules %q: %w", path, err)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return rules, fmt.Errorf("analyze: parse rules %q: %w", path, err)
	}

	for k, v := range override.Labels {
		rules.Labels[k] = v
	}
	if len(override.MalwareExtensions) > 0 {
		rules.MalwareExtensions = override.MalwareExtensions
	}
	if len(override.PrivilegeEscalation) > 0 {
		rules.PrivilegeEscalation = override.PrivilegeEscalation
	}
	if len(override.ReconCommands) > 0 {
		rules.ReconCommands = override.ReconCommands
	}
	if override.BruteForce.Threshold > 0 {
		rules.BruteForce.Threshold = override.BruteForce.Threshold
	}
	if override.BruteForce.Window > 0 {
		rules.BruteForce.Window = override.BruteForce.Window
	}
	if override.TopN > 0 {
		rules.TopN = override.TopN
	}
	if override.SessionInterval > 0 {
		rules.SessionInterval = override.SessionInterval
	}
	return rules, nil
}

// label returns the display name for an event tag, falling back to the raw
// tag for unknown event types.
func (r Rules) label(eventID string) string {
	if name, ok := r.Labels[eventID]; ok {
		return name
	}
	return eventID
}
