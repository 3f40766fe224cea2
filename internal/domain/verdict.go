package domain

// Verdict is the output record of a proof run. Only score and metadata are
// consumed onchain; the remaining fields live offchain. Constructed once per
// run and immutable after construction.
type Verdict struct {
	DlpID        int64   `json:"dlp_id"`
	Valid        bool    `json:"valid"`
	Score        float64 `json:"score"`
	Authenticity float64 `json:"authenticity"`
	Ownership    float64 `json:"ownership"`
	Quality      float64 `json:"quality"`
	Uniqueness   float64 `json:"uniqueness"`

	// Message carries a diagnostic on degraded verdicts; empty on clean runs.
	Message string `json:"message,omitempty"`

	Attributes VerdictAttributes `json:"attributes"`
	Metadata   VerdictMetadata   `json:"metadata"`
}

// VerdictAttributes carries derived facts about the contribution.
type VerdictAttributes struct {
	AccountIDHash         string          `json:"account_id_hash"`
	TransactionCount      int             `json:"transaction_count"`
	TotalVolume           float64         `json:"total_volume"`
	DataValidated         bool            `json:"data_validated"`
	ActivityPeriodDays    int             `json:"activity_period_days"`
	UniqueAssets          int             `json:"unique_assets"`
	PreviouslyContributed bool            `json:"previously_contributed"`
	TimesRewarded         int             `json:"times_rewarded"`
	Points                int             `json:"points"`
	PointsBreakdown       PointsBreakdown `json:"points_breakdown"`
}

// PointsBreakdown splits the points total by tier category.
type PointsBreakdown struct {
	Volume    int `json:"volume"`
	Diversity int `json:"diversity"`
	History   int `json:"history"`
}

// VerdictMetadata echoes caller-supplied identifiers verbatim.
// None of these influence scoring.
type VerdictMetadata struct {
	DlpID        int64  `json:"dlp_id"`
	Version      string `json:"version"`
	FileID       int64  `json:"file_id"`
	JobID        string `json:"job_id"`
	OwnerAddress string `json:"owner_address"`
	RunID        string `json:"run_id"`
}
