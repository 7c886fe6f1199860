package api

// windowPolicy fixes how far back and how many files a time-range keyword
// reaches. Analytics reads more files than the raw log view because the
// report amortizes the cost across many sub-computations.
type windowPolicy struct {
	hours    int
	maxFiles int
}

const defaultTimeRange = "24h"

var analyticsPolicy = map[string]windowPolicy{
	"1h":  {1, 3},
	"24h": {24, 5},
	"7d":  {24 * 7, 10},
	"30d": {24 * 30, 15},
	"all": {24 * 365, 20},
}

var logsPolicy = map[string]windowPolicy{
	"1h":  {1, 1},
	"24h": {24, 3},
	"7d":  {24 * 7, 5},
	"30d": {24 * 30, 8},
	"all": {24 * 365, 10},
}

// resolve maps a timeRange query value onto a policy table. Unknown values
// fall back to the 24h policy, mirroring the range the UI defaults to.
func resolve(table map[string]windowPolicy, timeRange string) (string, windowPolicy) {
	if p, ok := table[timeRange]; ok {
		return timeRange, p
	}
	return defaultTimeRange, table[defaultTimeRange]
}
