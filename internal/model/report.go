package model

import "time"

// Location is a resolved geo position for a source IP. A nil *Location
// means the IP could not be resolved; no field is ever defaulted.
type Location struct {
	Country   string  `json:"country"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// TimeRange is the min/max timestamp span of an event set.
type TimeRange struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// EventTypeCount is one histogram row: a human-readable label (or the raw
// eventid when no label is known) and its occurrence count.
type EventTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// IPStat is one top-source-IP ranking row. FirstSeen is the timestamp of the
// first occurrence in input order; LastSeen is the most recent occurrence
// seen so far in input order, not a global maximum.
type IPStat struct {
	IP        string    `json:"ip"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Location  *Location `json:"location"`
}

// CountryStat aggregates events per resolved country code.
type CountryStat struct {
	Country   string `json:"country"`
	Count     int    `json:"count"`
	UniqueIPs int    `json:"uniqueIPs"`
}

// CredentialStat aggregates login attempts per username:password pair.
type CredentialStat struct {
	Credential string `json:"credential"`
	Attempts   int    `json:"attempts"`
	Successful int    `json:"successful"`
	UniqueIPs  int    `json:"uniqueIPs"`
}

// LoginStats summarizes login-success/login-failure events.
// SuccessRate is a percentage rendered with two decimals ("33.33");
// it is "0.00" when there were no attempts.
type LoginStats struct {
	TotalAttempts    int              `json:"totalAttempts"`
	SuccessfulLogins int              `json:"successfulLogins"`
	FailedLogins     int              `json:"failedLogins"`
	SuccessRate      string           `json:"successRate"`
	TopCredentials   []CredentialStat `json:"topCredentials"`
}

// CommandCount is one entry in the top-commands ranking. Command is the
// first whitespace-delimited token of the input; arguments are discarded.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// CommandStats summarizes command-input events.
type CommandStats struct {
	TotalCommands  int            `json:"totalCommands"`
	UniqueCommands int            `json:"uniqueCommands"`
	TopCommands    []CommandCount `json:"topCommands"`
}

// SessionBucket is one fixed-width interval of the session time series,
// aligned to epoch boundaries.
type SessionBucket struct {
	Timestamp   time.Time `json:"timestamp"`
	Connects    int       `json:"connects"`
	Disconnects int       `json:"disconnects"`
}

// BruteForceFinding flags a source IP whose failed login attempts reached
// the threshold within a single sliding window. At most one finding per IP;
// the earliest qualifying window wins.
type BruteForceFinding struct {
	IP             string    `json:"ip"`
	FailedAttempts int       `json:"failedAttempts"`
	WindowStart    time.Time `json:"windowStart"`
	WindowEnd      time.Time `json:"windowEnd"`
	Location       *Location `json:"location"`
}

// MalwareFinding is a file-download event whose URL matched a suspicious
// extension.
type MalwareFinding struct {
	IP        string    `json:"ip"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location"`
}

// CommandFinding is a command-input event that matched a detector keyword
// list (privilege escalation or reconnaissance).
type CommandFinding struct {
	IP        string    `json:"ip"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location"`
}

// AttackPatterns bundles the four independent detector outputs.
type AttackPatterns struct {
	BruteForce          []BruteForceFinding `json:"bruteForce"`
	MalwareDownloads    []MalwareFinding    `json:"malwareDownloads"`
	PrivilegeEscalation []CommandFinding    `json:"privilegeEscalation"`
	ReconCommands       []CommandFinding    `json:"reconCommands"`
}

// AnalyticsReport is the aggregate computed over one batch of events.
// Computed fresh per request; never persisted.
type AnalyticsReport struct {
	TotalEvents            int              `json:"totalEvents"`
	TimeRange              *TimeRange       `json:"timeRange"`
	EventsByType           []EventTypeCount `json:"eventsByType"`
	TopSourceIPs           []IPStat         `json:"topSourceIPs"`
	GeographicDistribution []CountryStat    `json:"geographicDistribution"`
	LoginAttempts          LoginStats       `json:"loginAttempts"`
	Commands               CommandStats     `json:"commands"`
	SessionsOverTime       []SessionBucket  `json:"sessionsOverTime"`
	AttackPatterns         AttackPatterns   `json:"attackPatterns"`
}

// FieldCoverage reports how often a field appeared in the validated sample.
// Percentage is relative to the number of lines sampled, not the total line
// count of the input.
type FieldCoverage struct {
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// ValidationReport scores schema conformance over a bounded sample of lines.
type ValidationReport struct {
	TotalLines    int                      `json:"totalLines"`
	SampledLines  int                      `json:"sampledLines"`
	ValidLines    int                      `json:"validLines"`
	InvalidLines  int                      `json:"invalidLines"`
	Errors        []string                 `json:"errors"`
	Warnings      []string                 `json:"warnings"`
	Sample        []map[string]any         `json:"sample"`
	EventTypes    map[string]int           `json:"eventTypes"`
	FieldCoverage map[string]FieldCoverage `json:"fieldCoverage"`
}
