package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/workflow"
)

// stageCommand runs one engine action and then prints what it produced.
func stageCommand(ctx *commandContext, use, short string, args cobra.PositionalArgs, run func(context.Context, *session, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if err := run(c, s, argv); err != nil {
					return err
				}
				state := s.engine.State()
				return ctx.emit(cmd, state, func(w io.Writer) error {
					renderStageResult(w, state)
					return nil
				})
			})
		},
	}
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	var topic string
	ideas := stageCommand(ctx, "ideas", "Generate video ideas for the topic", cobra.NoArgs,
		func(c context.Context, s *session, _ []string) error {
			if strings.TrimSpace(topic) != "" {
				s.engine.SetTopic(c, topic)
			}
			return s.engine.GenerateIdeas(c)
		})
	ideas.Flags().StringVarP(&topic, "topic", "t", "", "Set the topic before generating")

	return []*cobra.Command{
		ideas,
		stageCommand(ctx, "select N", "Select idea N and build its outline", cobra.ExactArgs(1),
			func(c context.Context, s *session, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("idea number: %w", err)
				}
				return s.engine.SelectIdea(c, n-1)
			}),
		stageCommand(ctx, "keywords", "Analyze keywords for the selected idea", cobra.NoArgs,
			func(c context.Context, s *session, _ []string) error { return s.engine.AnalyzeKeywords(c) }),
		stageCommand(ctx, "script", "Write the full script", cobra.NoArgs,
			func(c context.Context, s *session, _ []string) error { return s.engine.GenerateScript(c) }),
		stageCommand(ctx, "structure", "Split the script into scenes", cobra.NoArgs,
			func(c context.Context, s *session, _ []string) error { return s.engine.StructureScript(c) }),
		stageCommand(ctx, "music", "Generate background music prompts", cobra.NoArgs,
			func(c context.Context, s *session, _ []string) error { return s.engine.GenerateMusicPrompts(c) }),
		stageCommand(ctx, "continue", "Leave the music or image stage", cobra.NoArgs,
			func(c context.Context, s *session, _ []string) error {
				switch current := s.engine.State().Current; current {
				case workflow.StageMusicGeneration:
					return s.engine.ContinueToImages(c)
				case workflow.StageImageGeneration:
					return s.engine.ContinueToVoiceover(c)
				default:
					return fmt.Errorf("nothing to continue from %s", current)
				}
			}),
		stageCommand(ctx, "publish", "Generate the publishing kit", cobra.NoArgs,
			func(c context.Context, s *session, _ []string) error { return s.engine.GeneratePublishingKit(c) }),
	}
}

// renderStageResult prints the output owned by the stage just completed.
func renderStageResult(out io.Writer, state workflow.State) {
	switch state.Current {
	case workflow.StageIdeaSelection:
		renderIdeas(out, state.Ideas)
	case workflow.StageOutlining:
		if state.Outline != nil {
			fmt.Fprintf(out, "Hook: %s\n", state.Outline.Hook)
			for i, point := range state.Outline.MainPoints {
				fmt.Fprintf(out, "%d. %s\n", i+1, point.Title)
			}
		}
	case workflow.StageKeywordAnalysis:
		if state.Keywords != nil {
			fmt.Fprintf(out, "SEO title: %s\nKeywords: %s\n", state.Keywords.SEOTitle, strings.Join(state.Keywords.PrimaryKeywords, ", "))
		}
	case workflow.StageScripting:
		fmt.Fprintln(out, state.Script)
	case workflow.StageScriptReview:
		rows := make([][]string, 0, len(state.Scenes))
		for _, scene := range state.Scenes {
			rows = append(rows, []string{strconv.Itoa(scene.Number), truncate(scene.Dialogue, 48), truncate(scene.VisualEN, 48)})
		}
		fmt.Fprintln(out, renderTable([]string{"Scene", "Dialogue", "Visual"}, rows, []columnAlignment{alignRight}))
	case workflow.StageMusicGeneration:
		if len(state.MusicPrompts) == 0 {
			fmt.Fprintln(out, "No scene asks for music")
		}
		for _, prompt := range state.MusicPrompts {
			fmt.Fprintf(out, "Scene %d: %s\n", prompt.Scene, prompt.Prompt)
		}
	case workflow.StagePublishing:
		if state.Kit != nil {
			for _, title := range state.Kit.Metadata.Titles {
				fmt.Fprintf(out, "- %s\n", title)
			}
			fmt.Fprintf(out, "Tags: %s\n", strings.Join(state.Kit.Metadata.Tags, ", "))
		}
	}
	fmt.Fprintf(out, "Now at %s\n", state.Current)
}
