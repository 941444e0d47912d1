package admin

// OverviewResponse is the GET /admin/api/v1/overview payload.
type OverviewResponse struct {
	PatternCount         int    `json:"pattern_count"`
	KeywordCategoryCount int    `json:"keyword_category_count"`
	Uptime               string `json:"uptime"`
	Version              string `json:"version"`
	GoVersion            string `json:"go_version"`
	StorageType          string `json:"storage_type"`
	AuditEnabled         bool   `json:"audit_enabled"`
	CacheBackend         string `json:"cache_backend"`
}

// PatternEntry describes one detection pattern.
type PatternEntry struct {
	Type string `json:"type"`
}

// PatternsResponse is the GET /admin/api/v1/patterns payload.
type PatternsResponse struct {
	Patterns []PatternEntry `json:"patterns"`
	Total    int            `json:"total"`
}

// KeywordCategoryEntry describes one keyword category. Individual keywords
// are not exposed; they are part of the detection surface.
type KeywordCategoryEntry struct {
	Name         string `json:"name"`
	Weight       int    `json:"weight"`
	KeywordCount int    `json:"keyword_count"`
}

// KeywordsResponse is the GET /admin/api/v1/keywords payload.
type KeywordsResponse struct {
	Categories []KeywordCategoryEntry `json:"categories"`
	Total      int                    `json:"total"`
}

// PolicyResponse is the GET /admin/api/v1/policy payload.
type PolicyResponse struct {
	AllowLocalFallback   bool `json:"allow_local_fallback"`
	RejectIfUnsafe       bool `json:"reject_if_unsafe"`
	DataRetentionDays    int  `json:"data_retention_days"`
	AllowTrainingDataUse bool `json:"allow_training_data_use"`
	AuditEnabled         bool `json:"audit_enabled"`
	AuditRetentionDays   int  `json:"audit_retention_days"`
	AlertOnSensitive     bool `json:"alert_on_sensitive"`
	Compliant            bool `json:"compliant"`
}
