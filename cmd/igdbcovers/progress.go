package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MattThePandah/RA-Tracker/pkg/checkpoint"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/MattThePandah/RA-Tracker/pkg/ui"
)

// progressCmd represents the progress command
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset saved progress",
	Long: `Inspect or reset the checkpoint file that lets fetch resume.

The checkpoint records the next offset to request for each platform and
which platforms have been fully processed.`,
}

// progressShowCmd represents the progress show command
var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved progress per platform",
	Args:  cobra.NoArgs,
	RunE:  runProgressShow,
}

// progressResetCmd represents the progress reset command
var progressResetCmd = &cobra.Command{
	Use:   "reset [platform...]",
	Short: "Forget saved progress",
	Long: `Forget saved progress for the named platforms, or for every platform
when none are given. Cached covers are left in place.`,
	Example: `  # Start PS2 over on the next fetch
  igdbcovers progress reset ps2

  # Remove the checkpoint entirely
  igdbcovers progress reset`,
	RunE: runProgressReset,
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)

	progressCmd.PersistentFlags().StringVar(&progressFile, "progress-file", "", "checkpoint file")
}

func openCheckpoint(cmd *cobra.Command) (*checkpoint.Manager, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return checkpoint.NewManager(cfg.Progress.File, nil), nil
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	progress, err := openCheckpoint(cmd)
	if err != nil {
		return err
	}

	if !progress.Exists() {
		ui.PrintInfo("No saved progress", progress.Path())
		return nil
	}

	state := progress.LoadState()

	ui.PrintHighlight("Saved Progress")
	fmt.Printf("File: %s\n\n", progress.Path())
	for _, p := range models.Platforms {
		entry := state.Entry(p.Name)
		status := "pending"
		switch {
		case entry.Completed:
			status = "completed"
		case entry.LastOffset > 0:
			status = "in progress"
		}
		fmt.Printf("  %-24s offset %-7d %s\n", p.Name, entry.LastOffset, status)
	}

	// Entries written by other tools or for platforms no longer configured
	var unknown []string
	for name := range state.LastOffset {
		if _, ok := models.LookupPlatform(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		fmt.Println()
		ui.PrintWarning("Unknown platforms in checkpoint", fmt.Sprint(unknown))
	}

	return nil
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	progress, err := openCheckpoint(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if err := progress.Reset(); err != nil {
			return err
		}
		ui.PrintSuccess("All progress cleared")
		return nil
	}

	platforms, err := models.ResolvePlatforms(args)
	if err != nil {
		return err
	}

	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.Name
	}

	if err := progress.Reset(names...); err != nil {
		return err
	}
	ui.PrintSuccess("Progress cleared for " + platformList(platforms))
	return nil
}
