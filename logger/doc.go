// Package logger provides structured logging for the remote transcription
// subsystem, backed by zerolog.
//
// Every component obtains a tagged logger via WithComponent and logs with
// optional field maps:
//
//	log := logger.NewDefault("voicetypr").WithComponent("sharing")
//	log.Info("server started", logger.Fields("port", 47842))
package logger
