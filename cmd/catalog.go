package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the exam objective catalogue",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cores, or the objectives of one core",
	RunE: func(cmd *cobra.Command, args []string) error {
		coreID, _ := cmd.Flags().GetString("core")
		cat := catalog.Default()

		if coreID == "" {
			fmt.Println(theme.Header.Render(fmt.Sprintf("%-6s  %-10s  %-6s  %-10s  %-9s  %s",
				"Core", "Code", "Length", "Objectives", "Templates", "Name")))
			fmt.Println(theme.Separator(72))
			for _, id := range cat.CoreIDs() {
				c, _ := cat.Core(id)
				fmt.Printf("%-6s  %-10s  %-6d  %-10d  %-9d  %s\n",
					c.ID, c.Code, c.Length, len(c.Objectives), len(c.OrderTemplates)+len(c.MatchTemplates), c.Name)
			}
			return nil
		}

		c, err := cat.Core(coreID)
		if err != nil {
			return err
		}
		fmt.Println(theme.Title.Render(fmt.Sprintf("%s (%s)", c.Name, c.Code)))
		for _, d := range c.Domains {
			fmt.Println()
			fmt.Println(theme.Header.Render(fmt.Sprintf("%s %s  (weight %d)", d.Number, d.Label, d.Weight)))
			for _, id := range c.ObjectiveIDs(d.Number) {
				o, _ := c.Objective(id)
				fmt.Printf("  %-6s %s %s\n", o.ID, o.Title, theme.Hint.Render(fmt.Sprintf("(%d bullets)", len(catalog.UsableBullets(o)))))
			}
		}
		fmt.Println()
		fmt.Println(theme.Header.Render("Templates"))
		for _, t := range c.OrderTemplates {
			fmt.Printf("  order  %-40s %d steps\n", t.Title, len(t.Steps))
		}
		for _, t := range c.MatchTemplates {
			fmt.Printf("  match  %-40s %d pairs\n", t.Title, len(t.Pairs))
		}
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the embedded catalogue, or a directory of core YAML files",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		cat := catalog.Default()
		if dir != "" {
			c, err := catalog.Load(os.DirFS(dir))
			if err != nil {
				return fmt.Errorf("load catalogue from %s: %w", dir, err)
			}
			cat = c
		}
		if err := cat.Validate(); err != nil {
			fmt.Println(theme.Incorrect.Render("Catalogue invalid:"))
			fmt.Println(err)
			return fmt.Errorf("catalogue validation failed")
		}
		for _, id := range cat.CoreIDs() {
			c, _ := cat.Core(id)
			fmt.Printf("%s %s: %d domains, %d objectives, %d snippets\n",
				theme.Mark(true), id, len(c.Domains), len(c.Objectives), len(c.ContentPool()))
		}
		return nil
	},
}

func init() {
	catalogListCmd.Flags().String("core", "", "Show the objectives of one core")
	catalogValidateCmd.Flags().String("dir", "", "Directory of core YAML files to validate instead of the embedded catalogue")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
