// Package store implements the application's persistent key-value settings
// store. Each key is one JSON document on disk; writes go through a temporary
// file and an atomic rename so a crash never leaves a half-written document.
package store
