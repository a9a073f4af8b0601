package adapter

import "context"

// TranscribeOptions mirror the knobs the transcription provider exposes.
type TranscribeOptions struct {
	// Language is an ISO code ("en", "hi", ...) or "auto" to let the
	// provider detect it.
	Language string
	// Diarize asks for speaker labels.
	Diarize bool
}

// TranscriptionAdapter converts an audio file on disk to plain text.
// Blocking, single attempt.
type TranscriptionAdapter interface {
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (string, error)
}
