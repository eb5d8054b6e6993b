package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/artifacts"
)

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List generated PDF files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")

		files, err := artifacts.New(cfg.Render.OutputDir).List()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Printf("No generated files in %s.\n", cfg.Render.OutputDir)
			return nil
		}

		fmt.Printf("%-19s  %-10s  %8s  %s\n", "Created", "Kind", "Size", "File")
		fmt.Println(strings.Repeat("─", 100))
		for _, f := range files {
			if kind != "" && f.Kind != kind {
				continue
			}
			created := time.Unix(0, int64(f.Created*float64(time.Second)))
			fmt.Printf("%-19s  %-10s  %8s  %s\n",
				created.Local().Format("2006-01-02 15:04:05"),
				f.Kind,
				formatSize(f.Size),
				f.Name,
			)
		}
		return nil
	},
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func init() {
	examsCmd.Flags().StringP("kind", "k", "", "Only show one kind: exam, answer_key or notes")
}
