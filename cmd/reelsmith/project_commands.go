package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/content"
	"reelsmith/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, s *session) error {
				snap := s.engine.Snapshot()
				return ctx.emit(cmd, snap, func(w io.Writer) error {
					renderStatus(w, snap)
					return nil
				})
			})
		},
	}
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change project selections",
	}

	text := func(use, short string, apply func(*workflow.Engine, context.Context, string)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " VALUE",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := strings.Join(args, " ")
				return ctx.withSession(cmd, func(c context.Context, s *session) error {
					apply(s.engine, c, value)
					fmt.Fprintf(cmd.OutOrStdout(), "%s set\n", use)
					return nil
				})
			},
		}
	}
	setCmd.AddCommand(text("topic", "Set the ideation topic", (*workflow.Engine).SetTopic))
	setCmd.AddCommand(text("platform", "Set the target platform", (*workflow.Engine).SetPlatform))
	setCmd.AddCommand(text("format", "Set the video format", (*workflow.Engine).SetFormat))
	setCmd.AddCommand(text("style", "Set the image style", (*workflow.Engine).SetImageStyle))

	setCmd.AddCommand(&cobra.Command{
		Use:       "length short|medium|long",
		Short:     "Set the script length",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"short", "medium", "long"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if err := s.engine.SetScriptLength(c, content.ScriptLength(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "length set")
				return nil
			})
		},
	})
	setCmd.AddCommand(&cobra.Command{
		Use:       "lang vi|en",
		Short:     "Choose which visual description is used as the image prompt",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"vi", "en"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if err := s.engine.SetPromptLanguage(c, content.PromptLanguage(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "lang set")
				return nil
			})
		},
	})
	setCmd.AddCommand(newSetVoiceCommand(ctx))
	return setCmd
}

func newSetVoiceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voice ENGINE [VOICE]",
		Short: "Select a voice, or list the voices of ENGINE",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := content.ParseEngine(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				rows := [][]string{}
				for _, voice := range content.Voices(engine) {
					rows = append(rows, []string{voice.ID, voice.Label})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Voice", "Label"}, rows, nil))
				return nil
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if err := s.engine.SetVoice(c, engine, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s voice set to %s\n", engine, args[1])
				return nil
			})
		},
	}
}

func newBackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "back STAGE",
		Short: "Return to an earlier stage (name or number)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := workflow.ParseStage(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if !s.engine.NavigateBackTo(c, stage) {
					return fmt.Errorf("%s is not before the current stage %s", stage, s.engine.State().Current)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Now at %s\n", stage)
				return nil
			})
		},
	}
}

func newDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss",
		Short: "Clear the project error",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				s.engine.DismissError(c)
				fmt.Fprintln(cmd.OutOrStdout(), "Error cleared")
				return nil
			})
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the project and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset discards every output and artifact; rerun with --yes to confirm")
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				s.engine.Reset(c)
				fmt.Fprintln(cmd.OutOrStdout(), "Project reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the project as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				doc, err := s.engine.ExportProject(c)
				if err != nil {
					return err
				}
				target := strings.TrimSpace(outputPath)
				if target == "" {
					_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
					return err
				}
				if info, err := os.Stat(target); err == nil && info.IsDir() {
					target = filepath.Join(target, content.FileName(s.engine.State().SelectedIdea.Title)+".md")
				}
				if err := os.WriteFile(target, []byte(doc), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file, or into a directory named after the idea")
	return cmd
}
