package llm

import (
	"context"
	"strings"

	"reelsmith/internal/capability"
	"reelsmith/internal/content"
	"reelsmith/internal/services"
)

// Completer is the subset of Client the generator needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator implements capability.TextGenerator on a chat model.
type Generator struct {
	llm Completer
}

var _ capability.TextGenerator = (*Generator)(nil)

// NewGenerator wraps a completer, usually a *Client.
func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

// completeInto runs a JSON completion, validates it against schema, and
// decodes it into target.
func (g *Generator) completeInto(ctx context.Context, op, prompt, schema string, target any) error {
	raw, err := g.llm.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return err
	}
	payload, err := ExtractJSON(raw)
	if err != nil {
		return services.Wrap(services.ErrValidation, "llm", op, "no JSON in response", err)
	}
	if err := validateAgainst(schema, payload); err != nil {
		return services.Wrap(services.ErrValidation, "llm", op, "response does not match schema", err)
	}
	if err := DecodeJSON(payload, target); err != nil {
		return services.Wrap(services.ErrValidation, "llm", op, "decode response", err)
	}
	return nil
}

func (g *Generator) GenerateIdeas(ctx context.Context, req capability.IdeaRequest) ([]content.Idea, error) {
	var out struct {
		Ideas []content.Idea `json:"ideas"`
	}
	if err := g.completeInto(ctx, "ideas", ideasPrompt(req.Topic, req.Platform, req.Format), ideasSchema, &out); err != nil {
		return nil, err
	}
	return out.Ideas, nil
}

func (g *Generator) GenerateOutline(ctx context.Context, idea content.Idea) (content.Outline, error) {
	var out content.Outline
	err := g.completeInto(ctx, "outline", outlinePrompt(idea), outlineSchema, &out)
	return out, err
}

func (g *Generator) AnalyzeKeywords(ctx context.Context, idea content.Idea) (content.KeywordAnalysis, error) {
	var out content.KeywordAnalysis
	err := g.completeInto(ctx, "keywords", keywordsPrompt(idea), keywordsSchema, &out)
	return out, err
}

func (g *Generator) WriteScript(ctx context.Context, req capability.ScriptRequest) (string, error) {
	script, err := g.llm.CompleteText(ctx, systemPrompt, scriptPrompt(req.Idea, req.Analysis, req.Outline, req.Length))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripCodeFence(strings.TrimSpace(script))), nil
}

func (g *Generator) StructureScript(ctx context.Context, script string) ([]content.Scene, error) {
	var out struct {
		Scenes []content.Scene `json:"scenes"`
	}
	if err := g.completeInto(ctx, "structure", structurePrompt(script), scenesSchema, &out); err != nil {
		return nil, err
	}
	return content.NumberScenes(out.Scenes), nil
}

// GenerateMusicPrompts skips the model call when no scene suggests a sound.
func (g *Generator) GenerateMusicPrompts(ctx context.Context, scenes []content.Scene) ([]content.MusicPrompt, error) {
	if !content.HasSound(scenes) {
		return []content.MusicPrompt{}, nil
	}
	var out struct {
		Prompts []content.MusicPrompt `json:"prompts"`
	}
	if err := g.completeInto(ctx, "music", musicPrompt(scenes), musicSchema, &out); err != nil {
		return nil, err
	}
	return out.Prompts, nil
}

func (g *Generator) GeneratePublishingKit(ctx context.Context, idea content.Idea, script string) (content.PublishingKit, error) {
	var out content.PublishingKit
	err := g.completeInto(ctx, "publishing_kit", kitPrompt(idea, script), kitSchema, &out)
	return out, err
}
