// Package settings holds the persisted remote-sharing configuration: the
// local server settings, the registry of saved remote connections, and the
// active-connection selection. A Manager wraps the settings with a store so
// every mutation is written back atomically.
package settings
