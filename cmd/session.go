package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/backend"
	"github.com/abhisek/examprep/internal/cache"
	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/config"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/generation"
	"github.com/abhisek/examprep/internal/itemgen"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/scoring"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// passMark is the score highlighted as passing in reports.
const passMark = 75.0

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Assemble, resume, inspect and score practice sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Assemble a new practice session",
	Long: `Plan a session from the core's blueprint and generate its items.

Remote sessions are generated in batches by the configured LLM provider, or
by a generation backend when --backend is set. Progress is checkpointed after
every batch; a failed or interrupted session can be continued with
"examprep session resume". Offline sessions are built from the embedded
catalogue in one step and need no network access.`,
	RunE: runSessionStart,
}

var sessionResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Continue a paused session from its last checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backendURL, _ := cmd.Flags().GetString("backend")
		return withAssembler(cmd, true, backendURL, func(ctx context.Context, _ *config.Config, a *session.Assembler) error {
			out, err := a.Resume(ctx, args[0])
			if err != nil {
				return err
			}
			printOutcome(out)
			return nil
		})
	},
}

var sessionDiscardCmd = &cobra.Command{
	Use:   "discard <id>",
	Short: "Delete a session, its checkpoint and its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssembler(cmd, false, "", func(ctx context.Context, _ *config.Config, a *session.Assembler) error {
			if err := a.Discard(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Discarded %s\n", args[0])
			return nil
		})
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending and assembled sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withAssembler(cmd, false, "", func(ctx context.Context, _ *config.Config, a *session.Assembler) error {
			list, err := a.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}
			printSummaries(list)
			return nil
		})
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the questions of an assembled session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reveal, _ := cmd.Flags().GetBool("reveal")
		asJSON, _ := cmd.Flags().GetBool("json")
		key, _ := cmd.Flags().GetBool("key")
		return withAssembler(cmd, false, "", func(ctx context.Context, _ *config.Config, a *session.Assembler) error {
			sess, err := a.Get(ctx, args[0])
			if err != nil {
				return err
			}
			switch {
			case key:
				return printJSON(scoring.AllCorrect(sess.Questions))
			case asJSON:
				return printJSON(sess.Questions)
			}
			printSession(sess, reveal)
			return nil
		})
	},
}

var sessionScoreCmd = &cobra.Command{
	Use:   "score <id>",
	Short: "Score an answers file against a session and record the result",
	Long: `Score answers for an assembled session.

The answers file is a JSON object keyed by question id:

  {
    "q1": {"optionIds": ["q1-o2"]},
    "q7": {"order": ["first step", "second step", "third step", "fourth step"]},
    "q9": {"pairs": ["left text=>right text"]}
  }

Unanswered questions count as incorrect. "examprep session show <id> --key"
prints a file in this format holding the correct answers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("answers")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read answers: %w", err)
		}
		var answers map[string]scoring.Answer
		if err := json.Unmarshal(data, &answers); err != nil {
			return fmt.Errorf("parse answers %s: %w", path, err)
		}
		return withAssembler(cmd, false, "", func(ctx context.Context, _ *config.Config, a *session.Assembler) error {
			res, err := a.Grade(ctx, args[0], answers)
			if err != nil {
				return err
			}
			printResult(args[0], res)
			return nil
		})
	},
}

func init() {
	f := sessionStartCmd.Flags()
	f.String("core", "", "Exam core: core1 or core2 (required)")
	f.Int("length", 0, "Number of questions (default: the core's exam length)")
	f.Int("pbq", 0, "Requested number of performance-based questions")
	f.String("difficulty", "", "easy, medium or hard (default from EXAMPREP_DIFFICULTY)")
	f.Int("batch-size", 0, "Items per generation batch, 1-20 (default from EXAMPREP_BATCH_SIZE)")
	f.Bool("offline", false, "Build the session from the embedded catalogue without an LLM")
	f.String("backend", "", "Generation backend URL (default from EXAMPREP_BACKEND_URL)")
	f.Uint64("seed", 0, "Seed for a reproducible plan")
	_ = sessionStartCmd.MarkFlagRequired("core")

	sessionResumeCmd.Flags().String("backend", "", "Generation backend URL (default from EXAMPREP_BACKEND_URL)")

	sessionListCmd.Flags().IntP("limit", "n", 20, "Number of assembled sessions to show")

	sessionShowCmd.Flags().Bool("reveal", false, "Show correct answers and explanations")
	sessionShowCmd.Flags().Bool("json", false, "Print questions as JSON, answer keys included")
	sessionShowCmd.Flags().Bool("key", false, "Print the answer key in answers-file format")

	sessionScoreCmd.Flags().String("answers", "", "Path to the answers JSON file (required)")
	_ = sessionScoreCmd.MarkFlagRequired("answers")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionResumeCmd)
	sessionCmd.AddCommand(sessionDiscardCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionScoreCmd)
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	core, _ := cmd.Flags().GetString("core")
	length, _ := cmd.Flags().GetInt("length")
	pbq, _ := cmd.Flags().GetInt("pbq")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	offline, _ := cmd.Flags().GetBool("offline")
	backendURL, _ := cmd.Flags().GetString("backend")
	seed, _ := cmd.Flags().GetUint64("seed")

	return withAssembler(cmd, !offline, backendURL, func(ctx context.Context, cfg *config.Config, a *session.Assembler) error {
		if difficulty == "" {
			difficulty = cfg.Generation.Difficulty
		}
		if batchSize == 0 {
			batchSize = cfg.Generation.BatchSize
		}
		out, err := a.Start(ctx, session.Request{
			Core:       core,
			Length:     length,
			PBQCount:   pbq,
			Difficulty: exam.Difficulty(difficulty),
			BatchSize:  batchSize,
			Offline:    offline,
			PlanSeed:   seed,
		})
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	})
}

// withAssembler opens the store, wires an Assembler and runs fn with a
// context cancelled on SIGINT or SIGTERM. Cancellation pauses remote
// generation at its last checkpoint.
func withAssembler(cmd *cobra.Command, remote bool, backendURL string, fn func(context.Context, *config.Config, *session.Assembler) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	states := generation.NewRepoStore(st.StateRepo())
	opts := []session.Option{session.WithLogger(slog.Default())}

	if remote {
		synth, err := remoteSynthesizer(ctx, cfg, st, backendURL)
		if err != nil {
			return err
		}
		orchOpts := []generation.Option{
			generation.WithLogger(slog.Default()),
			generation.WithProgress(printProgress),
		}
		if c, closeCache := redisCache(ctx, cfg); c != nil {
			defer closeCache()
			orchOpts = append(orchOpts, generation.WithCache(c, cfg.Cache.TTL))
		}
		opts = append(opts, session.WithRemote(generation.NewOrchestrator(synth, states, orchOpts...)))
	}

	return fn(ctx, cfg, session.New(catalog.Default(), states, st.SessionRepo(), opts...))
}

// remoteSynthesizer returns a backend client when a URL is configured and
// an LLM synthesizer otherwise.
func remoteSynthesizer(ctx context.Context, cfg *config.Config, st *store.Store, backendURL string) (itemgen.Synthesizer, error) {
	if backendURL == "" {
		backendURL = cfg.Backend.URL
	}
	if backendURL != "" {
		slog.Debug("using generation backend", "url", backendURL)
		return backend.NewClient(backendURL, &http.Client{Timeout: cfg.Backend.RequestTimeout}), nil
	}
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured (use --offline or --backend): %w", err)
	}
	slog.Debug("using LLM provider", "model", provider.ModelID())
	return itemgen.New(provider, itemgen.DefaultConfig()), nil
}

// redisCache connects the batch cache when Redis is configured. An
// unreachable Redis disables caching.
func redisCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.Redis.Address == "" {
		return nil, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("batch cache disabled", "error", err)
		return nil, nil
	}
	return cache.NewRedisCache(client, cache.DefaultPrefix), func() { client.Close() }
}

func printProgress(s generation.State) {
	fmt.Fprintf(os.Stderr, "\r%s %d/%d", theme.Bar(s.NextPlanIndex, len(s.Plan), 30), s.NextPlanIndex, len(s.Plan))
	if s.Done() {
		fmt.Fprintln(os.Stderr)
	}
}

func printOutcome(out session.Outcome) {
	if out.Paused {
		fmt.Println()
		if out.Err != nil {
			fmt.Printf("%s %s at %d/%d: %v\n", theme.Pending.Render("Paused"), out.SessionID, out.Collected, out.Total, out.Err)
		} else {
			fmt.Printf("%s %s at %d/%d\n", theme.Pending.Render("Interrupted"), out.SessionID, out.Collected, out.Total)
		}
		fmt.Println(theme.Hint.Render("Resume with: examprep session resume " + out.SessionID))
		return
	}
	s := out.Session
	fmt.Printf("%s %s: %d questions (%s, %s, %s)\n",
		theme.Correct.Render("Ready"), s.ID, len(s.Questions), s.Core, s.Difficulty, s.Mode)
	fmt.Println(theme.Hint.Render("View with: examprep session show " + s.ID))
}

func printSummaries(list []session.Summary) {
	fmt.Println(theme.Header.Render(fmt.Sprintf("%-36s  %-5s  %-6s  %-7s  %-8s  %-9s  %s",
		"ID", "Core", "Diff", "Mode", "Status", "Progress", "Updated")))
	fmt.Println(theme.Separator(100))
	for _, s := range list {
		status := theme.Correct.Render(fmt.Sprintf("%-8s", s.Status))
		if s.Status == session.StatusPending {
			status = theme.Pending.Render(fmt.Sprintf("%-8s", s.Status))
		}
		fmt.Printf("%-36s  %-5s  %-6s  %-7s  %s  %-9s  %s\n",
			s.SessionID, s.Core, s.Difficulty, s.Mode, status,
			fmt.Sprintf("%d/%d", s.Collected, s.Total),
			s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		if s.LastError != "" {
			fmt.Println("  " + theme.Hint.Render(s.LastError))
		}
	}
}

func printSession(s *session.ExamSession, reveal bool) {
	fmt.Println(theme.Title.Render(fmt.Sprintf("Session %s", s.ID)))
	fmt.Println(theme.Hint.Render(fmt.Sprintf("%s · %s · %d questions · %s",
		s.Core, s.Difficulty, len(s.Questions), s.CreatedAt.Local().Format("2006-01-02 15:04"))))
	for _, q := range s.Questions {
		fmt.Println()
		fmt.Println(theme.Header.Render(fmt.Sprintf("%s  [%s] %s", q.ID, q.AnswerType(), q.ObjectiveID)))
		fmt.Println(q.Prompt)
		printBody(q, reveal)
		if reveal && q.Explanation != "" {
			fmt.Println(theme.Hint.Render("Explanation: " + q.Explanation))
		}
	}
}

func printBody(q question.Question, reveal bool) {
	switch b := q.Body.(type) {
	case question.Choice:
		correct := setOf(b.Correct)
		if b.Multiple {
			fmt.Println(theme.Hint.Render(fmt.Sprintf("Select %d.", len(b.Correct))))
		}
		for _, o := range b.Options {
			mark := " "
			if reveal && correct[o.ID] {
				mark = theme.Mark(true)
			}
			fmt.Printf(" %s %-8s %s\n", mark, o.ID, o.Text)
		}
	case question.Order:
		for _, s := range b.Steps {
			fmt.Printf("   %-8s %s\n", s.ID, s.Text)
		}
		if reveal {
			fmt.Println(theme.Correct.Render("Order: ") + strings.Join(b.Correct, " → "))
		}
	case question.Match:
		for i := range max(len(b.Left), len(b.Right)) {
			var l, r question.Option
			if i < len(b.Left) {
				l = b.Left[i]
			}
			if i < len(b.Right) {
				r = b.Right[i]
			}
			fmt.Printf("   %-32s   %s\n", l.Text, r.Text)
		}
		if reveal {
			for _, p := range b.Correct {
				fmt.Println(theme.Correct.Render("  " + p))
			}
		}
	}
}

func printResult(id string, res scoring.Result) {
	var body strings.Builder
	fmt.Fprintf(&body, "%s  %s  (%d/%d)\n", theme.Title.Render("Score"), theme.Percent(res.Percent, passMark), res.CorrectCount, res.Total)
	fmt.Fprintln(&body, theme.Separator(56))
	for _, d := range res.ByDomain {
		fmt.Fprintf(&body, "%-30s %3d/%-3d %s  %s\n",
			truncate(d.Domain, 30), d.Correct, d.Total, theme.Percent(d.Percent, passMark), theme.Bar(d.Correct, d.Total, 10))
	}
	fmt.Println(theme.Hint.Render("Session " + id))
	fmt.Println(theme.Card.Render(strings.TrimRight(body.String(), "\n")))

	var missed []string
	for _, s := range res.Scored {
		if !s.Correct {
			missed = append(missed, s.QuestionID)
		}
	}
	if len(missed) > 0 {
		fmt.Println(theme.Hint.Render("Missed: " + strings.Join(missed, ", ")))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setOf(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}
