// Package remote coordinates the two halves of model sharing: the local
// sharing server and the registry of saved remote servers. It owns the
// rule that at most one of them drives transcription at a time: activating
// a remote server pauses local sharing and remembers to restore it when
// the selection is cleared.
package remote
