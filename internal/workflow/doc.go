// Package workflow drives a production project through its ten stages.
//
// The Engine owns the single State aggregate: the current stage, every stage
// output produced so far, the user's selections, and the dismissible global
// error. Stage actions check their upstream inputs, call one generation
// capability without holding the engine lock, and on success store the output
// and move to the next stage. A failed call leaves the stage and all outputs
// untouched and records the global error instead.
//
// Per-scene fan-out (images, thumbnails, voiceover tracks, video jobs) runs
// through artifact stores and the job tracker so it never blocks stage
// advancement. Every mutation is followed by a snapshot save through the
// configured Persister; save failures are logged and otherwise ignored.
package workflow
