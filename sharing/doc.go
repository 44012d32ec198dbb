// Package sharing implements server mode: exposing this instance's loaded
// speech-recognition model to other instances over the local network.
//
// The Manager owns at most one running server per process. Starting binds one
// listener per local IPv4 interface (loopback always, others best-effort), all
// listeners sharing a single route table, one ModelState, and one serialized
// transcription bridge. The served model can be swapped while listeners keep
// running.
package sharing
