// Package client implements client mode: sending status probes and
// transcription requests to a remote sharing server.
//
// Errors are classified so callers can distinguish an unreachable server
// from a wrong password, and transcription timeouts scale with audio
// duration and source (live dictation is capped, uploads are not).
package client
