package session

import (
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// Mode says how a session's items were produced.
type Mode string

const (
	ModeRemote  Mode = "remote"
	ModeOffline Mode = "offline"
)

// Request describes a session to assemble.
type Request struct {
	Core       string
	Length     int // zero means the core's default length
	PBQCount   int
	Difficulty exam.Difficulty
	BatchSize  int
	Offline    bool

	// PlanSeed makes the plan reproducible when non-zero.
	PlanSeed uint64
}

// ExamSession is an assembled, scoreable session.
type ExamSession struct {
	ID         string
	Core       string
	Difficulty exam.Difficulty
	Mode       Mode
	CreatedAt  time.Time
	Items      []exam.RawItem
	Questions  []question.Question
}

// Outcome reports the result of Start or Resume.
type Outcome struct {
	SessionID string

	// Session is set once assembly completed.
	Session *ExamSession

	// Paused is true when generation stopped at a checkpoint. Err says why
	// and is nil after cancellation.
	Paused bool
	Err    error

	Collected int
	Total     int
}

// Status of a listed session.
type Status string

const (
	StatusReady   Status = "ready"
	StatusPending Status = "pending"
)

// Summary is one row of List.
type Summary struct {
	SessionID  string
	Core       string
	Difficulty string
	Mode       Mode
	Status     Status
	Collected  int
	Total      int
	LastError  string
	UpdatedAt  time.Time
}
