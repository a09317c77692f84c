package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int       // id > After
	Before int       // id < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	SessionID string // only events tagged with this session
	Purpose   string // only events with this purpose
}

// StateRecord is a persisted generation checkpoint. Data is the serialized
// state; the other fields are copies kept for listing.
type StateRecord struct {
	SessionID     string
	Core          string
	NextPlanIndex int
	PlanLength    int
	LastError     string
	Data          []byte
	UpdatedAt     time.Time
}

// StateRepo stores generation checkpoints keyed by session ID.
type StateRepo interface {
	// Save inserts or replaces the checkpoint for rec.SessionID.
	Save(ctx context.Context, rec StateRecord) error

	// Load returns the checkpoint for sessionID, or nil if none exists.
	Load(ctx context.Context, sessionID string) (*StateRecord, error)

	// Delete removes the checkpoint. Deleting a missing checkpoint is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns all checkpoints, most recently updated first.
	List(ctx context.Context) ([]StateRecord, error)
}

// SessionRecord is an assembled exam session. Data is the serialized
// question set.
type SessionRecord struct {
	SessionID     string
	Core          string
	Difficulty    string
	Mode          string
	QuestionCount int
	Data          []byte
	CreatedAt     time.Time
}

// ResultRecord is one scored submission for a session.
type ResultRecord struct {
	ID           int
	SessionID    string
	Percent      float64
	CorrectCount int
	Total        int
	Data         []byte
	CreatedAt    time.Time
}

// SessionRepo stores assembled sessions and their scored results.
type SessionRepo interface {
	// SaveSession inserts or replaces an assembled session.
	SaveSession(ctx context.Context, rec SessionRecord) error

	// GetSession returns a session by ID, or nil if not found.
	GetSession(ctx context.Context, sessionID string) (*SessionRecord, error)

	// ListSessions returns sessions newest first. limit 0 means unlimited.
	ListSessions(ctx context.Context, limit int) ([]SessionRecord, error)

	// DeleteSession removes a session and its results.
	DeleteSession(ctx context.Context, sessionID string) error

	// AppendResult records a scored submission and returns its ID.
	AppendResult(ctx context.Context, rec ResultRecord) (int, error)

	// Results returns every result for a session, oldest first.
	Results(ctx context.Context, sessionID string) ([]ResultRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string // empty when the call is not tied to a session
	BatchIndex   *int
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded LLM request.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates LLM usage for one purpose label.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
