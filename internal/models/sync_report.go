package models

// SyncReport is the aggregate result of a full sync run. Per-repository
// failures are collected in Errors rather than aborting the run; an early
// rate-limit stop is surfaced through RateLimited instead of silently
// truncating.
type SyncReport struct {
	Organizations int        `json:"organizations"`
	Repositories  RepoCounts `json:"repositories"`
	SyncedData    SyncedData `json:"syncedData"`
	Errors        []string   `json:"errors,omitempty"`
	RateLimited   bool       `json:"rateLimited,omitempty"`
}

type RepoCounts struct {
	Personal       int `json:"personal"`
	Organizational int `json:"organizational"`
}

type SyncedData struct {
	Totals  SyncTotals       `json:"totals"`
	Details []RepoSyncDetail `json:"details"`
}

type SyncTotals struct {
	Commits int `json:"commits"`
	Pulls   int `json:"pulls"`
	Issues  int `json:"issues"`
}

// RepoSyncDetail reports one repository's slice of a sync run.
type RepoSyncDetail struct {
	Org     string   `json:"org,omitempty"`
	Repo    string   `json:"repo"`
	Commits int      `json:"commits"`
	Pulls   int      `json:"pulls"`
	Issues  int      `json:"issues"`
	Errors  []string `json:"errors,omitempty"`
}
