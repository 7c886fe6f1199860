// Package analyze derives aggregate security analytics from parsed honeypot
// events. Analyze is a pure function of its input: it never mutates the
// event slice and produces a fresh report per call.
package analyze

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/OskariKosonen/hunajapannu/internal/geo"
	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Analyzer computes analytics reports. Safe for concurrent use: it holds
// only the rule set and the (read-only) geo resolver.
type Analyzer struct {
	geo   geo.Resolver
	rules Rules
}

// New creates an Analyzer. A nil resolver disables geo enrichment.
func New(resolver geo.Resolver, rules Rules) *Analyzer {
	if resolver == nil {
		resolver = geo.None{}
	}
	return &Analyzer{geo: resolver, rules: rules}
}

// Analyze computes the full report over one batch of events. An empty batch
// yields an all-zero report with empty collections, never an error.
func (a *Analyzer) Analyze(events []model.Event) model.AnalyticsReport {
	return model.AnalyticsReport{
		TotalEvents:            len(events),
		TimeRange:              timeRange(events),
		EventsByType:           a.eventsByType(events),
		TopSourceIPs:           a.topSourceIPs(events),
		GeographicDistribution: a.geographicDistribution(events),
		LoginAttempts:          a.loginAttempts(events),
		Commands:               a.commands(events),
		SessionsOverTime:       a.sessionsOverTime(events),
		AttackPatterns: model.AttackPatterns{
			BruteForce:          a.detectBruteForce(events),
			MalwareDownloads:    a.detectMalwareDownloads(events),
			PrivilegeEscalation: a.detectCommandPattern(events, a.rules.PrivilegeEscalation),
			ReconCommands:       a.detectCommandPattern(events, a.rules.ReconCommands),
		},
	}
}

// timeRange returns the min/max timestamp span, ignoring events whose
// timestamp is unknown. Nil when no event carries a usable timestamp.
func timeRange(events []model.Event) *model.TimeRange {
	var start, end time.Time
	for _, ev := range events {
		if ev.Timestamp.IsZero() {
			continue
		}
		if start.IsZero() || ev.Timestamp.Before(start) {
			start = ev.Timestamp
		}
		if end.IsZero() || ev.Timestamp.After(end) {
			end = ev.Timestamp
		}
	}
	if start.IsZero() {
		return nil
	}
	return &model.TimeRange{Start: start, End: end, Duration: end.Sub(start)}
}

func (a *Analyzer) eventsByType(events []model.Event) []model.EventTypeCount {
	counts := make(map[string]int)
	for _, ev := range events {
		tag := ev.EventID
		if tag == "" {
			tag = "unknown"
		}
		counts[a.rules.label(tag)]++
	}

	result := make([]model.EventTypeCount, 0, len(counts))
	for label, n := range counts {
		result = append(result, model.EventTypeCount{Type: label, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Type < result[j].Type
	})
	return result
}

// ipAgg accumulates per-IP state in input order. lastSeen is overwritten on
// every occurrence, so with unordered input it is "most recently seen", not
// the maximum timestamp. That input-order semantic is deliberate.
type ipAgg struct {
	count     int
	firstSeen time.Time
	lastSeen  time.Time
	order     int
}

func (a *Analyzer) topSourceIPs(events []model.Event) []model.IPStat {
	aggs := make(map[string]*ipAgg)
	for _, ev := range events {
		if ev.SrcIP == "" {
			continue
		}
		agg, ok := aggs[ev.SrcIP]
		if !ok {
			agg = &ipAgg{firstSeen: ev.Timestamp, order: len(aggs)}
			aggs[ev.SrcIP] = agg
		}
		agg.count++
		agg.lastSeen = ev.Timestamp
	}

	ips := make([]string, 0, len(aggs))
	for ip := range aggs {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool {
		ai, aj := aggs[ips[i]], aggs[ips[j]]
		if ai.count != aj.count {
			return ai.count > aj.count
		}
		return ai.order < aj.order
	})
	if len(ips) > a.rules.TopN {
		ips = ips[:a.rules.TopN]
	}

	result := make([]model.IPStat, 0, len(ips))
	for _, ip := range ips {
		agg := aggs[ip]
		result = append(result, model.IPStat{
			IP:        ip,
			Count:     agg.count,
			FirstSeen: agg.firstSeen,
			LastSeen:  agg.lastSeen,
			Location:  a.geo.Lookup(ip),
		})
	}
	return result
}

func (a *Analyzer) geographicDistribution(events []model.Event) []model.CountryStat {
	type countryAgg struct {
		count int
		ips   map[string]struct{}
	}
	countries := make(map[string]*countryAgg)
	for _, ev := range events {
		if ev.SrcIP == "" {
			continue
		}
		loc := a.geo.Lookup(ev.SrcIP)
		if loc == nil || loc.Country == "" {
			// Unresolvable IPs are excluded entirely, not bucketed as unknown.
			continue
		}
		agg, ok := countries[loc.Country]
		if !ok {
			agg = &countryAgg{ips: make(map[string]struct{})}
			countries[loc.Country] = agg
		}
		agg.count++
		agg.ips[ev.SrcIP] = struct{}{}
	}

	result := make([]model.CountryStat, 0, len(countries))
	for country, agg := range countries {
		result = append(result, model.CountryStat{
			Country:   country,
			Count:     agg.count,
			UniqueIPs: len(agg.ips),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Country < result[j].Country
	})
	return result
}

func (a *Analyzer) loginAttempts(events []model.Event) model.LoginStats {
	type credAgg struct {
		attempts   int
		successful int
		ips        map[string]struct{}
		order      int
	}

	stats := model.LoginStats{
		SuccessRate:    "0.00",
		TopCredentials: []model.CredentialStat{},
	}
	creds := make(map[string]*credAgg)

	for _, ev := range events {
		if ev.EventID != model.EventLoginSuccess && ev.EventID != model.EventLoginFailed {
			continue
		}
		stats.TotalAttempts++
		if ev.EventID == model.EventLoginSuccess {
			stats.SuccessfulLogins++
		} else {
			stats.FailedLogins++
		}

		// Missing halves render as the literal token "unknown", never null.
		cred := orUnknown(ev.Username) + ":" + orUnknown(ev.Password)
		agg, ok := creds[cred]
		if !ok {
			agg = &credAgg{ips: make(map[string]struct{}), order: len(creds)}
			creds[cred] = agg
		}
		agg.attempts++
		if ev.EventID == model.EventLoginSuccess {
			agg.successful++
		}
		if ev.SrcIP != "" {
			agg.ips[ev.SrcIP] = struct{}{}
		}
	}

	if stats.TotalAttempts > 0 {
		rate := float64(stats.SuccessfulLogins) / float64(stats.TotalAttempts) * 100
		stats.SuccessRate = fmt.Sprintf("%.2f", rate)
	}

	pairs := make([]string, 0, len(creds))
	for cred := range creds {
		pairs = append(pairs, cred)
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := creds[pairs[i]], creds[pairs[j]]
		if ai.attempts != aj.attempts {
			return ai.attempts > aj.attempts
		}
		return ai.order < aj.order
	})
	if len(pairs) > a.rules.TopN {
		pairs = pairs[:a.rules.TopN]
	}
	for _, cred := range pairs {
		agg := creds[cred]
		stats.TopCredentials = append(stats.TopCredentials, model.CredentialStat{
			Credential: cred,
			Attempts:   agg.attempts,
			Successful: agg.successful,
			UniqueIPs:  len(agg.ips),
		})
	}
	return stats
}

func (a *Analyzer) commands(events []model.Event) model.CommandStats {
	type cmdAgg struct {
		count int
		order int
	}
	stats := model.CommandStats{TopCommands: []model.CommandCount{}}
	cmds := make(map[string]*cmdAgg)

	for _, ev := range events {
		if ev.EventID != model.EventCommandInput {
			continue
		}
		stats.TotalCommands++
		fields := strings.Fields(ev.Input)
		if len(fields) == 0 {
			continue
		}
		// The command is the first token; arguments are discarded.
		cmd := fields[0]
		agg, ok := cmds[cmd]
		if !ok {
			agg = &cmdAgg{order: len(cmds)}
			cmds[cmd] = agg
		}
		agg.count++
	}
	stats.UniqueCommands = len(cmds)

	names := make([]string, 0, len(cmds))
	for cmd := range cmds {
		names = append(names, cmd)
	}
	sort.Slice(names, func(i, j int) bool {
		ai, aj := cmds[names[i]], cmds[names[j]]
		if ai.count != aj.count {
			return ai.count > aj.count
		}
		return ai.order < aj.order
	})
	if len(names) > a.rules.TopN {
		names = names[:a.rules.TopN]
	}
	for _, cmd := range names {
		stats.TopCommands = append(stats.TopCommands, model.CommandCount{Command: cmd, Count: cmds[cmd].count})
	}
	return stats
}

// sessionsOverTime buckets session connect/close events into fixed-width
// intervals aligned to epoch boundaries.
func (a *Analyzer) sessionsOverTime(events []model.Event) []model.SessionBucket {
	intervalMs := a.rules.SessionInterval.Milliseconds()
	if intervalMs <= 0 {
		intervalMs = time.Hour.Milliseconds()
	}

	buckets := make(map[int64]*model.SessionBucket)
	for _, ev := range events {
		if ev.EventID != model.EventSessionConnect && ev.EventID != model.EventSessionClosed {
			continue
		}
		if ev.Timestamp.IsZero() {
			continue
		}
		key := ev.Timestamp.UnixMilli() / intervalMs * intervalMs
		bucket, ok := buckets[key]
		if !ok {
			bucket = &model.SessionBucket{Timestamp: time.UnixMilli(key).UTC()}
			buckets[key] = bucket
		}
		if ev.EventID == model.EventSessionConnect {
			bucket.Connects++
		} else {
			bucket.Disconnects++
		}
	}

	result := make([]model.SessionBucket, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
