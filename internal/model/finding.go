package model

import "time"

// Detector names used in Finding.Detector and in metrics labels.
const (
	DetectorBruteForce          = "bruteForce"
	DetectorMalware             = "malwareDownload"
	DetectorPrivilegeEscalation = "privilegeEscalation"
	DetectorRecon               = "recon"
)

// Finding is the flattened alert shape delivered to external sinks. The
// analytics report keeps detector-specific structures; sinks get one
// uniform record per detection.
type Finding struct {
	Detector  string    `json:"detector"`
	IP        string    `json:"ip"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location,omitempty"`
}
