package model

import "time"

// Snapshot is a stored dashboard computation.
// Dashboard is nil in listings, which only carry metadata.
type Snapshot struct {
	ID            string     `json:"id"`
	GeneratedAt   time.Time  `json:"generatedAt"`
	CustomerCount int        `json:"customerCount"`
	PositionRows  int        `json:"positionRows"`
	AccrualRows   int        `json:"accrualRows"`
	Encrypted     bool       `json:"encrypted"`
	Dashboard     *Dashboard `json:"dashboard,omitempty"`
}

// SystemVersion describes the running application and its database schema.
type SystemVersion struct {
	AppVersion string `json:"appVersion"`
	DbVersion  string `json:"dbVersion"`
}

// SummaryView is the customer summary after the display threshold.
type SummaryView struct {
	SnapshotID  string            `json:"snapshotId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	MinNAV      float64           `json:"minNav"`
	Rows        []CustomerSummary `json:"rows"`
	Maxima      SummaryMaxima     `json:"maxima"`
}

// DashboardView is the latest dashboard as served, with its summary filtered by MinNAV.
type DashboardView struct {
	SnapshotID  string        `json:"snapshotId"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Summary     SummaryView   `json:"summary"`
	Purchases   PurchasePivot `json:"purchases"`
	Interest    InterestPivot `json:"interest"`
	DailyTotals []DailyTotal  `json:"dailyTotals"`
}
