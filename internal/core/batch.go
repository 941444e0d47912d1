package core

// BatchStatus is the lifecycle state of a screening batch.
type BatchStatus string

const (
	// BatchStatusProcessing means items are still being screened.
	BatchStatusProcessing BatchStatus = "processing"
	// BatchStatusCompleted means every item has been screened.
	BatchStatusCompleted BatchStatus = "completed"
)

// BatchItemResult is the screening outcome for one text in a batch. It
// carries the same redacted-only payload as a single screening; the
// submitted text itself is never stored.
type BatchItemResult struct {
	Index            int                `json:"index"`
	EventID          string             `json:"event_id,omitempty"`
	RedactedText     string             `json:"redacted_text"`
	Level            SensitivityLevel   `json:"level"`
	Strategy         ProcessingStrategy `json:"strategy"`
	Permitted        bool               `json:"permitted"`
	RejectionMessage string             `json:"rejection_message,omitempty"`
	DetectedTypes    []string           `json:"detected_types"`
	MatchCount       int                `json:"match_count"`
	Error            string             `json:"error,omitempty"`
}

// ScreeningBatch is a persisted batch of screenings submitted in one call.
type ScreeningBatch struct {
	ID        string      `json:"id" bson:"_id"`
	SessionID string      `json:"session_id" bson:"session_id"`
	Status    BatchStatus `json:"status" bson:"status"`

	// CreatedAt and CompletedAt are unix timestamps.
	CreatedAt   int64 `json:"created_at" bson:"created_at"`
	CompletedAt int64 `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	TotalItems     int `json:"total_items" bson:"total_items"`
	CompletedItems int `json:"completed_items" bson:"completed_items"`
	RejectedItems  int `json:"rejected_items" bson:"rejected_items"`

	Items []BatchItemResult `json:"items" bson:"items"`
}
