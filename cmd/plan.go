package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/plan"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the plan of a session without generating items",
	Long: `Expand a core's blueprint into a session plan and print it.

No database or LLM is used. Pass --seed to get the same plan that
"examprep session start --seed" would build.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("core", "", "Exam core: core1 or core2 (required)")
	planCmd.Flags().Int("length", 0, "Number of questions (default: the core's exam length)")
	planCmd.Flags().Int("pbq", 0, "Requested number of performance-based questions")
	planCmd.Flags().Uint64("seed", 0, "Seed for a reproducible plan")
	planCmd.Flags().Bool("summary", false, "Print only the per-domain and per-type counts")
	_ = planCmd.MarkFlagRequired("core")
}

func runPlan(cmd *cobra.Command, args []string) error {
	coreID, _ := cmd.Flags().GetString("core")
	length, _ := cmd.Flags().GetInt("length")
	pbq, _ := cmd.Flags().GetInt("pbq")
	seed, _ := cmd.Flags().GetUint64("seed")
	summary, _ := cmd.Flags().GetBool("summary")

	core, err := catalog.Default().Core(coreID)
	if err != nil {
		return err
	}
	builder := plan.NewBuilder(nil)
	if seed != 0 {
		builder = plan.NewSeededBuilder(seed)
	}
	items, err := builder.Build(core, plan.Options{Length: length, PBQCount: pbq})
	if err != nil {
		return err
	}

	fmt.Println(theme.Title.Render(fmt.Sprintf("%s (%s) · %d items", core.Name, core.Code, len(items))))

	if !summary {
		fmt.Println(theme.Header.Render(fmt.Sprintf("%-4s  %-6s  %-10s  %-9s  %s", "#", "Domain", "Type", "Objective", "Title")))
		fmt.Println(theme.Separator(90))
		for i, it := range items {
			fmt.Printf("%-4d  %-6s  %-10s  %-9s  %s\n",
				i+1, it.DomainNumber, it.AnswerType, it.ObjectiveID, truncate(it.ObjectiveTitle, 60))
		}
		fmt.Println()
	}

	perDomain := make(map[string]int)
	for _, it := range items {
		perDomain[it.DomainNumber]++
	}
	fmt.Println(theme.Header.Render("By domain"))
	for _, d := range core.Domains {
		n := perDomain[d.Number]
		fmt.Printf("  %-5s %-40s %3d  %s\n", d.Number, truncate(d.Label, 40), n, theme.Bar(n, len(items), 20))
	}

	counts := plan.Counts(items)
	fmt.Println(theme.Header.Render("By type"))
	for _, t := range exam.AllAnswerTypes() {
		fmt.Printf("  %-10s %3d\n", t, counts[t])
	}
	return nil
}
