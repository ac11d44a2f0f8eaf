// Package tts adapts the Vbee and Google Cloud text-to-speech HTTP APIs to
// capability.SpeechSynthesizer. Both clients share the httpapi transport for
// retries, classification and rate limiting.
package tts
