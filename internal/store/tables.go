package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableStates   = "generation_states"
	tableSessions = "exam_sessions"
	tableResults  = "exam_results"
	tableLLM      = "llm_request_events"
)

var (
	// GenerationStatesColumns holds the columns for the "generation_states" table.
	GenerationStatesColumns = []*schema.Column{
		{Name: "session_id", Type: field.TypeString},
		{Name: "core", Type: field.TypeString},
		{Name: "next_plan_index", Type: field.TypeInt},
		{Name: "plan_length", Type: field.TypeInt},
		{Name: "last_error", Type: field.TypeString, Size: 2147483647},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// GenerationStatesTable holds the schema information for the "generation_states" table.
	GenerationStatesTable = &schema.Table{
		Name:       tableStates,
		Columns:    GenerationStatesColumns,
		PrimaryKey: []*schema.Column{GenerationStatesColumns[0]},
	}

	// ExamSessionsColumns holds the columns for the "exam_sessions" table.
	ExamSessionsColumns = []*schema.Column{
		{Name: "session_id", Type: field.TypeString},
		{Name: "core", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString},
		{Name: "question_count", Type: field.TypeInt},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ExamSessionsTable holds the schema information for the "exam_sessions" table.
	ExamSessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    ExamSessionsColumns,
		PrimaryKey: []*schema.Column{ExamSessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "examsession_created_at", Columns: []*schema.Column{ExamSessionsColumns[6]}},
		},
	}

	// ExamResultsColumns holds the columns for the "exam_results" table.
	ExamResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "percent", Type: field.TypeFloat64},
		{Name: "correct_count", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ExamResultsTable holds the schema information for the "exam_results" table.
	ExamResultsTable = &schema.Table{
		Name:       tableResults,
		Columns:    ExamResultsColumns,
		PrimaryKey: []*schema.Column{ExamResultsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "examresult_session_id", Columns: []*schema.Column{ExamResultsColumns[1]}},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "batch_index", Type: field.TypeInt, Nullable: true},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       tableLLM,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LlmRequestEventsColumns[4]}},
			{Name: "llmrequestevent_session_id", Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		GenerationStatesTable,
		ExamSessionsTable,
		ExamResultsTable,
		LlmRequestEventsTable,
	}
)
