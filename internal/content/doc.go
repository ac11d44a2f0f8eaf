// Package content defines the production data model shared by the workflow
// engine, the generation adapters, and the snapshot store: ideas, outlines,
// keyword analyses, structured scenes, music prompts, publishing kits, and
// the voice catalogue.
//
// CanonicalKey is the single join rule for fan-out work. Two scenes whose
// canonical visual descriptions are equal share one cached image and one
// video job.
package content
