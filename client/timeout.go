package client

import "time"

// Source describes where the audio of a transcription request came from.
// It drives the timeout calculation.
type Source int

const (
	// SourceLiveRecording is interactive dictation from the microphone.
	SourceLiveRecording Source = iota
	// SourceUpload is an uploaded audio or video file.
	SourceUpload
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceLiveRecording:
		return "live_recording"
	case SourceUpload:
		return "upload"
	default:
		return "unknown"
	}
}

const (
	liveBase = 30 * time.Second
	liveCap  = 120 * time.Second

	uploadBase = 60 * time.Second
)

// CalculateTimeout returns the transcription request timeout for audio of
// the given duration.
//
// Live recordings get 30s plus twice the audio duration, capped at two
// minutes: interactive dictation must not hang the UI. Uploads get 60s plus
// three times the audio duration with no cap, because uploaded files can be
// arbitrarily long.
func CalculateTimeout(audioDuration time.Duration, source Source) time.Duration {
	switch source {
	case SourceUpload:
		return uploadBase + 3*audioDuration
	default:
		timeout := liveBase + 2*audioDuration
		if timeout > liveCap {
			return liveCap
		}
		return timeout
	}
}
