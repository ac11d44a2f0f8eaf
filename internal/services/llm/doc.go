// Package llm drives the text stages through an OpenAI-compatible chat
// completion endpoint (OpenRouter by default).
//
// Client sends system/user prompt pairs and returns either free text or a
// JSON payload. Generator builds the stage prompts on top of it and
// implements capability.TextGenerator: ideas, outline, keyword analysis,
// script, scene structuring, music prompts and the publishing kit.
//
// # Output validation
//
// Every JSON stage has a JSON Schema. Model output is decoded leniently
// (code fences and surrounding chatter are stripped) and then validated with
// gojsonschema; a payload that does not match is an ErrValidation failure,
// which the workflow surfaces as a retryable stage error.
//
// # Retry behaviour
//
// Transport retries come from httpapi: 408/429/5xx and timeouts back off
// exponentially. An empty completion is also retried since providers
// occasionally return a blank choice under load.
package llm
