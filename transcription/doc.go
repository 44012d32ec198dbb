// Package transcription defines the provider interface and common types
// for the speech-to-text engines the sharing server dispatches to.
//
// Engines register under their engine name ("whisper", "parakeet", "cloud")
// and the server picks one per request from the shared model state.
//
// # Backends
//
//   - transcription/whisper: local whisper.cpp CLI
//   - transcription/parakeet: Parakeet ASR sidecar
//   - transcription/cloud: cloud speech-to-text HTTP API
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.Register(whisper.NewProvider(whisper.Config{}))
//	result, err := reg.Get("whisper").Transcribe(ctx, req)
package transcription
