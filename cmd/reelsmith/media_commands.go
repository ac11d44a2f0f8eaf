package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"reelsmith/internal/content"
	"reelsmith/internal/jobs"
)

func sceneArg(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid scene number %q", value)
	}
	return n, nil
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "image [SCENE]",
		Short: "Generate the image for a scene, or for every scene with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass either a scene number or --all")
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if all {
					err := s.engine.GenerateAllImages(c)
					renderScenes(cmd.OutOrStdout(), s.engine.Snapshot())
					return err
				}
				n, err := sceneArg(args[0])
				if err != nil {
					return err
				}
				entry, err := s.engine.GenerateImage(c, n)
				fmt.Fprintln(cmd.OutOrStdout(), describeEntry(fmt.Sprintf("scene %d image", n), entry))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Generate images for every scene")
	return cmd
}

func newThumbnailCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "thumbnail N",
		Short: "Render thumbnail concept N from the publishing kit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid thumbnail number %q", args[0])
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				entry, err := s.engine.GenerateThumbnail(c, n-1)
				fmt.Fprintln(cmd.OutOrStdout(), describeEntry(fmt.Sprintf("thumbnail %d", n), entry))
				return err
			})
		},
	}
}

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "voice ENGINE [SCENE]",
		Short: "Synthesize the voiceover for a scene, or every scene with --all",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := content.ParseEngine(args[0])
			if err != nil {
				return err
			}
			if all == (len(args) == 2) {
				return errors.New("pass either a scene number or --all")
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if all {
					err := s.engine.SynthesizeAll(c, engine)
					renderScenes(cmd.OutOrStdout(), s.engine.Snapshot())
					return err
				}
				n, err := sceneArg(args[1])
				if err != nil {
					return err
				}
				entry, err := s.engine.Synthesize(c, engine, n)
				fmt.Fprintln(cmd.OutOrStdout(), describeEntry(fmt.Sprintf("scene %d %s voice", n, engine), entry))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Synthesize every scene")
	return cmd
}

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Generate scene videos",
	}

	videoCmd.AddCommand(&cobra.Command{
		Use:   "start SCENE",
		Short: "Start a video job for a scene and wait for it to finish",
		Long: "Start a video job for a scene and wait for it to finish.\n" +
			"Polling stops when the command exits; an interrupted job is recorded as failed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := sceneArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if _, err := s.engine.StartVideo(c, n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Video job for scene %d started; waiting\n", n)
				job, err := s.engine.WaitVideo(c, n)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						_ = s.engine.CancelVideo(n)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), describeJob(n, job))
				if job.Status == jobs.StatusFailed {
					return fmt.Errorf("video for scene %d failed", n)
				}
				return nil
			})
		},
	})

	videoCmd.AddCommand(&cobra.Command{
		Use:     "watch",
		Aliases: []string{"list"},
		Short:   "Show every scene's video job",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, s *session) error {
				snap := s.engine.Snapshot()
				return ctx.emit(cmd, snap.Videos, func(w io.Writer) error {
					for _, scene := range snap.State.Scenes {
						if job, ok := snap.Videos[scene.VisualKey()]; ok {
							fmt.Fprintln(w, describeJob(scene.Number, job))
						}
					}
					return nil
				})
			})
		},
	})
	return videoCmd
}

func describeJob(n int, job jobs.Job) string {
	switch job.Status {
	case jobs.StatusSucceeded:
		return fmt.Sprintf("scene %d video ready: %s", n, job.Result)
	case jobs.StatusFailed:
		return fmt.Sprintf("scene %d video failed: %s", n, job.Error)
	default:
		return fmt.Sprintf("scene %d video: %s", n, job.Status)
	}
}
