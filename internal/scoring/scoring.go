package scoring

import (
	"math"
	"slices"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// Answer is a user's response to one question. Only the field matching the
// question's answer type is read.
type Answer struct {
	// OptionIDs are the selected option ids for single and multi.
	OptionIDs []string `json:"optionIds,omitempty"`

	// Order is the submitted step texts, first to last.
	Order []string `json:"order,omitempty"`

	// Pairs are submitted "<left>=><right>" strings.
	Pairs []string `json:"pairs,omitempty"`
}

// DomainScore holds per-domain counters.
type DomainScore struct {
	Domain  string  `json:"domain"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Scored records the outcome of one question.
type Scored struct {
	QuestionID string          `json:"questionId"`
	Domain     string          `json:"domain"`
	AnswerType exam.AnswerType `json:"answerType"`
	Answered   bool            `json:"answered"`
	Correct    bool            `json:"correct"`
}

// Result is the outcome of scoring a session.
type Result struct {
	Percent      float64       `json:"percent"`
	CorrectCount int           `json:"correctCount"`
	Total        int           `json:"total"`
	ByDomain     []DomainScore `json:"byDomain"`
	Scored       []Scored      `json:"scored"`
}

// Check reports whether a is a fully correct answer to q. There is no
// partial credit.
func Check(q question.Question, a Answer) bool {
	switch b := q.Body.(type) {
	case question.Choice:
		return len(b.Correct) > 0 && sameSet(b.Correct, a.OptionIDs)
	case question.Order:
		return len(b.Correct) > 0 && slices.Equal(b.Correct, a.Order)
	case question.Match:
		return len(b.Correct) > 0 && sameSet(b.Correct, a.Pairs)
	}
	return false
}

// Score evaluates answers keyed by question id. Unanswered questions count
// as incorrect. Domains are reported in order of first appearance.
func Score(questions []question.Question, answers map[string]Answer) Result {
	res := Result{Total: len(questions), ByDomain: []DomainScore{}, Scored: make([]Scored, 0, len(questions))}
	domainIdx := make(map[string]int)

	for _, q := range questions {
		a, answered := answers[q.ID]
		ok := answered && Check(q, a)

		i, seen := domainIdx[q.Domain]
		if !seen {
			i = len(res.ByDomain)
			domainIdx[q.Domain] = i
			res.ByDomain = append(res.ByDomain, DomainScore{Domain: q.Domain})
		}
		res.ByDomain[i].Total++
		if ok {
			res.ByDomain[i].Correct++
			res.CorrectCount++
		}

		res.Scored = append(res.Scored, Scored{
			QuestionID: q.ID,
			Domain:     q.Domain,
			AnswerType: q.AnswerType(),
			Answered:   answered,
			Correct:    ok,
		})
	}

	res.Percent = Percent(res.CorrectCount, res.Total)
	for i := range res.ByDomain {
		res.ByDomain[i].Percent = Percent(res.ByDomain[i].Correct, res.ByDomain[i].Total)
	}
	return res
}

// Percent returns correct/total as a percentage rounded to one decimal.
// Zero total yields 0.
func Percent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

// AllCorrect returns the answer key for questions.
func AllCorrect(questions []question.Question) map[string]Answer {
	out := make(map[string]Answer, len(questions))
	for _, q := range questions {
		switch b := q.Body.(type) {
		case question.Choice:
			out[q.ID] = Answer{OptionIDs: slices.Clone(b.Correct)}
		case question.Order:
			out[q.ID] = Answer{Order: slices.Clone(b.Correct)}
		case question.Match:
			out[q.ID] = Answer{Pairs: slices.Clone(b.Correct)}
		}
	}
	return out
}

func sameSet(want, got []string) bool {
	g := make(map[string]bool, len(got))
	for _, s := range got {
		g[s] = true
	}
	if len(g) != len(uniq(want)) {
		return false
	}
	for _, s := range want {
		if !g[s] {
			return false
		}
	}
	return true
}

func uniq(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
