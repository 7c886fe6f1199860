package analyze

import (
	"sort"
	"strings"
	"time"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// detectBruteForce flags source IPs whose failed login attempts reach the
// threshold within one sliding window. Every attempt (failed or successful)
// is a candidate window start; only failed attempts count toward the
// threshold. At most one finding per IP: the earliest qualifying window
// wins and scanning stops for that IP.
func (a *Analyzer) detectBruteForce(events []model.Event) []model.BruteForceFinding {
	type attempt struct {
		ts     int64 // unix millis
		failed bool
	}

	byIP := make(map[string][]attempt)
	var order []string
	for _, ev := range events {
		if ev.EventID != model.EventLoginSuccess && ev.EventID != model.EventLoginFailed {
			continue
		}
		if ev.SrcIP == "" || ev.Timestamp.IsZero() {
			continue
		}
		if _, ok := byIP[ev.SrcIP]; !ok {
			order = append(order, ev.SrcIP)
		}
		byIP[ev.SrcIP] = append(byIP[ev.SrcIP], attempt{
			ts:     ev.Timestamp.UnixMilli(),
			failed: ev.EventID == model.EventLoginFailed,
		})
	}

	windowMs := a.rules.BruteForce.Window.Milliseconds()
	findings := []model.BruteForceFinding{}
	for _, ip := range order {
		attempts := byIP[ip]
		sort.SliceStable(attempts, func(i, j int) bool { return attempts[i].ts < attempts[j].ts })

		for i := range attempts {
			start := attempts[i].ts
			end := start + windowMs

			failed := 0
			for _, att := range attempts {
				if att.failed && att.ts >= start && att.ts <= end {
					failed++
				}
			}
			if failed >= a.rules.BruteForce.Threshold {
				findings = append(findings, model.BruteForceFinding{
					IP:             ip,
					FailedAttempts: failed,
					WindowStart:    msToTime(start),
					WindowEnd:      msToTime(end),
					Location:       a.geo.Lookup(ip),
				})
				break
			}
		}
	}
	return findings
}

// detectMalwareDownloads reports file-download events whose URL contains a
// suspicious extension. The match is a case-sensitive substring, anywhere
// in the URL.
func (a *Analyzer) detectMalwareDownloads(events []model.Event) []model.MalwareFinding {
	findings := []model.MalwareFinding{}
	for _, ev := range events {
		if ev.EventID != model.EventFileDownload || ev.URL == "" {
			continue
		}
		for _, ext := range a.rules.MalwareExtensions {
			if strings.Contains(ev.URL, ext) {
				findings = append(findings, model.MalwareFinding{
					IP:        ev.SrcIP,
					URL:       ev.URL,
					Timestamp: ev.Timestamp,
					Location:  a.geo.Lookup(ev.SrcIP),
				})
				break
			}
		}
	}
	return findings
}

// detectCommandPattern reports command-input events whose input contains
// any of the given keywords, case-insensitively. Shared by the privilege
// escalation and reconnaissance detectors.
func (a *Analyzer) detectCommandPattern(events []model.Event, keywords []string) []model.CommandFinding {
	findings := []model.CommandFinding{}
	for _, ev := range events {
		if ev.EventID != model.EventCommandInput || ev.Input == "" {
			continue
		}
		lower := strings.ToLower(ev.Input)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				findings = append(findings, model.CommandFinding{
					IP:        ev.SrcIP,
					Command:   ev.Input,
					Timestamp: ev.Timestamp,
					Location:  a.geo.Lookup(ev.SrcIP),
				})
				break
			}
		}
	}
	return findings
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
