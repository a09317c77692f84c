package itemgen

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
)

// Option caps for synthesized choice items.
const (
	offlineSingleOptions = 4
	offlineMultiOptions  = 5
	offlineMultiCorrect  = 2
	offlineDistractors   = 3
)

// fillerOptions pad a choice item when the distractor pool is too small.
var fillerOptions = []string{
	"None of the listed statements apply",
	"The behavior depends only on the operating system vendor",
	"This setting cannot be changed after installation",
}

// OfflineOptions controls the OfflineSynthesizer.
type OfflineOptions struct {
	// ShufflePlan emits items in a locally shuffled order instead of plan
	// order. The shuffle draws from the same seeded generator.
	ShufflePlan bool
}

// OfflineSynthesizer builds items from the catalogue without any external
// call. Output is a pure function of the request.
type OfflineSynthesizer struct {
	catalog *catalog.Catalog
	opts    OfflineOptions
}

// NewOffline creates an OfflineSynthesizer backed by cat.
func NewOffline(cat *catalog.Catalog, opts OfflineOptions) *OfflineSynthesizer {
	return &OfflineSynthesizer{catalog: cat, opts: opts}
}

// Seed derives the generator seed: 32-bit FNV-1a over
// "sessionID|core|difficulty", with "|batchIndex" appended after the first
// batch.
func Seed(sessionID, core string, difficulty exam.Difficulty, batchIndex int) uint32 {
	h := fnv.New32a()
	h.Write([]byte(sessionID + "|" + core + "|" + string(difficulty)))
	if batchIndex > 0 {
		h.Write([]byte("|" + strconv.Itoa(batchIndex)))
	}
	return h.Sum32()
}

// Synthesize returns one item per plan item. The batch size cap does not
// apply; a whole session can be synthesized in one call.
func (s *OfflineSynthesizer) Synthesize(ctx context.Context, req BatchRequest) ([]exam.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, exam.Cancelled(err)
	}
	core, err := s.catalog.Core(req.Core)
	if err != nil {
		return nil, err
	}

	seed := uint64(Seed(req.SessionID, req.Core, req.Difficulty, req.BatchIndex))
	g := &offlineGen{
		rng:        rand.New(rand.NewPCG(seed, seed)),
		core:       core,
		pool:       core.ContentPool(),
		difficulty: req.Difficulty,
	}

	order := make([]int, len(req.Items))
	for i := range order {
		order[i] = i
	}
	if s.opts.ShufflePlan {
		g.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	items := make([]exam.RawItem, len(order))
	for i, idx := range order {
		items[i] = g.item(req.Items[idx])
	}
	return items, nil
}

type offlineGen struct {
	rng        *rand.Rand
	core       *catalog.Core
	pool       []string
	difficulty exam.Difficulty
}

func (g *offlineGen) item(p exam.PlanItem) exam.RawItem {
	switch p.AnswerType {
	case exam.AnswerPBQOrder:
		if len(g.core.OrderTemplates) > 0 {
			return g.orderItem(p)
		}
	case exam.AnswerPBQMatch:
		if len(g.core.MatchTemplates) > 0 {
			return g.matchItem(p)
		}
	case exam.AnswerMulti:
		if len(g.snippets(p)) >= 2 {
			return g.choiceItem(p, true)
		}
	}
	return g.choiceItem(p, false)
}

// snippets returns the display-ready bullets of p, or its title when none fit.
func (g *offlineGen) snippets(p exam.PlanItem) []string {
	out := catalog.UsableBullets(catalog.Objective{Bullets: p.ObjectiveBullets})
	if len(out) == 0 && p.ObjectiveTitle != "" {
		out = []string{catalog.NormalizeSnippet(p.ObjectiveTitle)}
	}
	return out
}

func (g *offlineGen) choiceItem(p exam.PlanItem, multiple bool) exam.RawItem {
	snippets := g.snippets(p)

	correctCount, limit := 1, offlineSingleOptions
	if multiple {
		correctCount = offlineMultiCorrect
		limit = offlineMultiOptions
	}
	correct := g.pick(snippets, correctCount)

	distractors := g.distractors(snippets, min(offlineDistractors, limit-len(correct)))
	for _, f := range fillerOptions {
		if len(correct)+len(distractors) >= offlineSingleOptions {
			break
		}
		distractors = append(distractors, f)
	}

	options := append(slices.Clone(correct), distractors...)
	perm := g.rng.Perm(len(options))
	shuffled := make([]string, len(options))
	var correctIdx []int
	for dst, src := range perm {
		shuffled[dst] = options[src]
		if src < len(correct) {
			correctIdx = append(correctIdx, dst)
		}
	}
	slices.Sort(correctIdx)

	meta := exam.MetaFromPlan(p)
	meta.Prompt = g.choiceStem(p, len(correct), multiple)
	meta.Explanation = fmt.Sprintf("%s. These points belong to objective %s, %s.",
		strings.Join(correct, "; "), p.ObjectiveID, p.ObjectiveTitle)

	return exam.RawItem{Meta: meta, Body: exam.ChoiceBody{
		Options:        shuffled,
		CorrectIndices: correctIdx,
		Multiple:       multiple,
	}}
}

// pick draws n distinct entries from src in draw order.
func (g *offlineGen) pick(src []string, n int) []string {
	perm := g.rng.Perm(len(src))
	out := make([]string, 0, n)
	for _, i := range perm[:min(n, len(src))] {
		out = append(out, src[i])
	}
	return out
}

// distractors draws n pool entries that are not among the objective's own
// snippets.
func (g *offlineGen) distractors(own []string, n int) []string {
	if n <= 0 {
		return nil
	}
	exclude := make(map[string]bool, len(own))
	for _, s := range own {
		exclude[s] = true
	}
	candidates := make([]string, 0, len(g.pool))
	for _, s := range g.pool {
		if !exclude[s] {
			candidates = append(candidates, s)
		}
	}
	return g.pick(candidates, n)
}

var countWords = []string{"", "ONE", "TWO", "THREE"}

func (g *offlineGen) choiceStem(p exam.PlanItem, correct int, multiple bool) string {
	task := lowerFirst(strings.TrimPrefix(p.ObjectiveTitle, "Given a scenario, "))
	var stem string
	switch g.difficulty {
	case exam.DifficultyEasy:
		stem = fmt.Sprintf("Regarding the objective %q, which of the following", p.ObjectiveTitle)
		if multiple {
			stem += " statements are correct?"
		} else {
			stem += " statements is correct?"
		}
	case exam.DifficultyHard:
		stem = fmt.Sprintf("While handling a user escalation, a technician must %s.", task)
		if multiple {
			stem += " Which statements are accurate?"
		} else {
			stem += " Which statement is the most accurate?"
		}
	default:
		stem = fmt.Sprintf("A technician needs to %s.", task)
		if multiple {
			stem += " Which of the following apply?"
		} else {
			stem += " Which of the following statements is accurate?"
		}
	}
	if multiple {
		stem += fmt.Sprintf(" (Select %s.)", countWords[correct])
	}
	return stem
}

func (g *offlineGen) orderItem(p exam.PlanItem) exam.RawItem {
	tpl := g.core.OrderTemplates[g.rng.IntN(len(g.core.OrderTemplates))]

	perm := g.derangedPerm(len(tpl.Steps))
	items := make([]string, len(perm))
	correct := make([]int, len(perm))
	for dst, src := range perm {
		items[dst] = tpl.Steps[src]
		correct[src] = dst
	}

	meta := exam.MetaFromPlan(p)
	meta.Prompt = tpl.Prompt
	meta.Explanation = tpl.Title + ": " + strings.Join(tpl.Steps, ", then ") + "."

	return exam.RawItem{Meta: meta, Body: exam.OrderBody{Items: items, CorrectOrder: correct}}
}

// derangedPerm returns a permutation of n elements that is not the
// identity when n > 1.
func (g *offlineGen) derangedPerm(n int) []int {
	perm := g.rng.Perm(n)
	identity := true
	for i, v := range perm {
		if i != v {
			identity = false
			break
		}
	}
	if identity && n > 1 {
		slices.Reverse(perm)
	}
	return perm
}

func (g *offlineGen) matchItem(p exam.PlanItem) exam.RawItem {
	tpl := g.core.MatchTemplates[g.rng.IntN(len(g.core.MatchTemplates))]

	pairs := slices.Clone(tpl.Pairs)
	g.rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	left := make([]string, len(pairs))
	for i, pr := range pairs {
		left[i] = pr.Left
	}

	rperm := g.derangedPerm(len(pairs))
	right := make([]string, len(pairs))
	correct := make([]exam.Pair, len(pairs))
	for dst, src := range rperm {
		right[dst] = pairs[src].Right
		correct[src] = exam.Pair{LeftIndex: src, RightIndex: dst}
	}

	var expl []string
	for _, pr := range tpl.Pairs {
		expl = append(expl, pr.Left+" matches "+pr.Right)
	}

	meta := exam.MetaFromPlan(p)
	meta.Prompt = tpl.Prompt
	meta.Explanation = strings.Join(expl, "; ") + "."

	return exam.RawItem{Meta: meta, Body: exam.MatchBody{Left: left, Right: right, CorrectPairs: correct}}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
