package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mind-engage/quizboard/internal/matching"
	"github.com/mind-engage/quizboard/internal/tui"
)

var (
	questionPath    string
	assignmentsPath string
	outPath         string
	logPath         string
	logLevel        string
)

var rootCmd = &cobra.Command{
	Use:   "matchtui",
	Short: "Answer a matching question in the terminal",
	Long: `Loads one matching question and lets you sort its options into
categories with the keyboard.

Example:
  matchtui --question q.json --assignments draft.json --out draft.json`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&questionPath, "question", "", "matching question JSON file (required)")
	rootCmd.Flags().StringVar(&assignmentsPath, "assignments", "", "draft assignment JSON file")
	rootCmd.Flags().StringVar(&outPath, "out", "", "write the final assignment here on quit")
	rootCmd.Flags().StringVar(&logPath, "log", "matchtui.log", "log file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	_ = rootCmd.MarkFlagRequired("question")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(logFile).Level(lvl).With().Timestamp().Str("component", "matchtui").Logger()

	qf, err := os.Open(questionPath)
	if err != nil {
		return err
	}
	q, err := tui.ReadQuestion(qf)
	qf.Close()
	if err != nil {
		return err
	}

	var draft []matching.Pair
	if assignmentsPath != "" {
		af, err := os.Open(assignmentsPath)
		switch {
		case os.IsNotExist(err):
			logger.Info().Str("path", assignmentsPath).Msg("no draft yet")
		case err != nil:
			return err
		default:
			draft, err = tui.ReadAssignments(af)
			af.Close()
			if err != nil {
				return err
			}
		}
	}

	m, err := tui.New(q, draft, logger)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}

	if outPath == "" {
		return nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := tui.WriteAssignments(f, m.Assignments()); err != nil {
		return err
	}
	logger.Info().Str("path", outPath).Int("pairs", len(m.Assignments())).Msg("assignment saved")
	return nil
}
