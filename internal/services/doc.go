// Package services defines shared utilities consumed by the workflow engine and
// the external generation integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, artifact keys, video job IDs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     transient, configuration, validation, or vendor problems.
//
// Subpackages hold the concrete HTTP clients (llm, imagegen, tts, video).
package services
