package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"class-tutor-service/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TranscriptionAdapter = (*DeepgramAdapter)(nil)

// DeepgramAdapter transcribes audio through Deepgram's pre-recorded
// endpoint running the whisper-large model. Single blocking attempt, no
// retry; the runner treats any failure as terminal for the job.
// Docs: https://developers.deepgram.com/reference/listen-remote
type DeepgramAdapter struct {
	apiKey string
	base   string // e.g., https://api.deepgram.com/v1
	model  string
	conv   *FFmpegConverter
	client *http.Client
}

func NewDeepgramAdapter(apiKey, base, model string, conv *FFmpegConverter) (*DeepgramAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram api key empty")
	}
	if base == "" {
		base = "https://api.deepgram.com/v1"
	}
	if model == "" {
		model = "whisper-large"
	}
	return &DeepgramAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		conv:   conv,
		client: &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (d *DeepgramAdapter) Transcribe(ctx context.Context, audioPath string, opts adapter.TranscribeOptions) (string, error) {
	wavPath := audioPath
	if d.conv != nil {
		converted, cleanup, err := d.conv.ConvertToWAV(ctx, audioPath)
		if err != nil {
			return "", err
		}
		defer cleanup()
		wavPath = converted
	}

	buf, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	q := url.Values{}
	q.Set("model", d.model)
	q.Set("smart_format", "true")
	q.Set("utterances", "true")
	if opts.Diarize {
		q.Set("diarize", "true")
	}
	if lang := strings.ToLower(opts.Language); lang != "" && lang != "auto" {
		q.Set("language", lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+"/listen?"+q.Encode(), bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("deepgram http %d", resp.StatusCode)
	}

	var payload struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, ch := range payload.Results.Channels {
		for _, alt := range ch.Alternatives {
			if t := strings.TrimSpace(alt.Transcript); t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("deepgram: empty transcript")
}
