package services_test

import (
	"context"
	"testing"

	"reelsmith/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "ImageGeneration")
	ctx = services.WithArtifactKey(ctx, "Scene 3")
	ctx = services.WithJobID(ctx, "uuid-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "ImageGeneration" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if key, ok := services.ArtifactKeyFromContext(ctx); !ok || key != "Scene 3" {
		t.Fatalf("unexpected artifact key: %v %v", key, ok)
	}
	if id, ok := services.JobIDFromContext(ctx); !ok || id != "uuid-1" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithArtifactKey(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ArtifactKeyFromContext(ctx); ok {
		t.Fatal("expected no artifact key")
	}
}
