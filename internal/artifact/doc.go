// Package artifact keeps the per-key results of independently retryable
// fan-out generations: scene images, thumbnails, and voiceover tracks.
//
// Each key holds at most one Entry. Begin supersedes whatever the key held
// before and returns an Attempt; an Attempt's result is applied only while it
// is still the latest Begin for that key, so a slow response can never
// overwrite a newer retry.
package artifact
