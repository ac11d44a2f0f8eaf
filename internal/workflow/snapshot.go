package workflow

import (
	"context"

	"reelsmith/internal/artifact"
	"reelsmith/internal/content"
	"reelsmith/internal/jobs"
)

// Snapshot is the persisted form of a project: the aggregate plus every
// fan-out map.
type Snapshot struct {
	State      State                                        `json:"state"`
	Images     map[string]artifact.Entry                    `json:"images,omitempty"`
	Thumbnails map[string]artifact.Entry                    `json:"thumbnails,omitempty"`
	Voices     map[content.Engine]map[string]artifact.Entry `json:"voices,omitempty"`
	Videos     map[string]jobs.Job                          `json:"videos,omitempty"`
}

// EmptySnapshot is the state of a brand new project.
func EmptySnapshot(defaults Selections) Snapshot {
	return Snapshot{State: NewState(defaults)}
}

// Settled applies the restore rules: nothing is loading and no job is polling.
func (s Snapshot) Settled() Snapshot {
	settle := func(in map[string]artifact.Entry) map[string]artifact.Entry {
		if in == nil {
			return nil
		}
		out := make(map[string]artifact.Entry, len(in))
		for key, entry := range in {
			out[key] = entry.Settled()
		}
		return out
	}
	s.Images = settle(s.Images)
	s.Thumbnails = settle(s.Thumbnails)
	if s.Voices != nil {
		voices := make(map[content.Engine]map[string]artifact.Entry, len(s.Voices))
		for engine, entries := range s.Voices {
			voices[engine] = settle(entries)
		}
		s.Voices = voices
	}
	if s.Videos != nil {
		videos := make(map[string]jobs.Job, len(s.Videos))
		for key, job := range s.Videos {
			videos[key] = job.Orphaned()
		}
		s.Videos = videos
	}
	return s
}

// Persister stores project snapshots. Load never fails: a missing, corrupt,
// or outdated snapshot yields ok=false and the caller starts fresh.
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool)
	Purge(ctx context.Context) error
}

type nopPersister struct{}

func (nopPersister) Save(context.Context, Snapshot) error { return nil }
func (nopPersister) Load(context.Context) (Snapshot, bool) { return Snapshot{}, false }
func (nopPersister) Purge(context.Context) error { return nil }
