// Package murf is a client for the Murf speech-generate HTTP API.
package murf

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgnsrekt/murmur/internal/cache"
)

const (
	// DefaultBaseURL is the hosted Murf API endpoint.
	DefaultBaseURL = "https://api.murf.ai"

	generatePath = "/v1/speech/generate"
	voicesPath   = "/v1/speech/voices"

	// defaultRequestsPerMinute keeps us under the provider's rate limit.
	defaultRequestsPerMinute = 30

	defaultTimeout = 30 * time.Second
)

// Config holds client configuration.
type Config struct {
	// APIKey is the bearer token. Empty means demo mode: synthesis fails
	// and the static voice catalog is served.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// RequestsPerMinute bounds outgoing synthesis calls. Zero uses the
	// default.
	RequestsPerMinute int

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client calls the speech-generate and voice-list endpoints. Synthesis
// calls are rate limited; the limiter blocks until a slot is free or the
// context is done.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from config.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = defaultRequestsPerMinute
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		http:    config.HTTPClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}
}

// Demo reports whether the client has no API key.
func (c *Client) Demo() bool {
	return c.apiKey == ""
}

type generateRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id"`
	Format  string  `json:"format"`
	Speed   float64 `json:"speed"`
	Pitch   float64 `json:"pitch"`
}

type generateResponse struct {
	AudioFile    string `json:"audioFile"`
	EncodedAudio string `json:"encodedAudio"`
}

type apiError struct {
	Message string `json:"errorMessage"`
}

// Synthesize turns a synthesis request into audio bytes. The response
// either carries the audio inline (base64) or points at a file URL that
// is fetched in a second request.
func (c *Client) Synthesize(ctx context.Context, req cache.Request) ([]byte, error) {
	if c.Demo() {
		return nil, &ProviderError{
			Code:    ErrorCodeAuth,
			Message: "no API key configured",
		}
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synthesis request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Code:    ErrorCodeNetwork,
			Message: "rate limiter wait aborted",
			Cause:   err,
		}
	}

	body, err := json.Marshal(generateRequest{
		Text:    req.Text,
		VoiceID: req.Voice,
		Format:  string(req.Format),
		Speed:   req.Speed,
		Pitch:   req.Pitch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{
			Code:    ErrorCodeNetwork,
			Message: "synthesis request failed",
			Cause:   err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, &ProviderError{
			Code:    ErrorCodeServer,
			Message: "failed to decode synthesis response",
			Cause:   err,
		}
	}

	if gen.EncodedAudio != "" {
		audio, err := base64.StdEncoding.DecodeString(gen.EncodedAudio)
		if err != nil {
			return nil, &ProviderError{
				Code:    ErrorCodeServer,
				Message: "failed to decode inline audio",
				Cause:   err,
			}
		}
		return audio, nil
	}

	if gen.AudioFile == "" {
		return nil, &ProviderError{
			Code:    ErrorCodeServer,
			Message: "synthesis response carried no audio",
		}
	}
	return c.fetchAudio(ctx, gen.AudioFile)
}

// fetchAudio downloads the synthesized artifact from its file URL.
func (c *Client) fetchAudio(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build audio fetch: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{
			Code:    ErrorCodeNetwork,
			Message: "audio fetch failed",
			Cause:   err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Code:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    "audio fetch rejected",
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Code:    ErrorCodeNetwork,
			Message: "audio fetch interrupted",
			Cause:   err,
		}
	}
	return audio, nil
}

// responseError builds a ProviderError from a non-200 response, pulling
// the provider's message out of the body when it parses.
func (c *Client) responseError(resp *http.Response) error {
	message := resp.Status
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Message != "" {
		message = ae.Message
	}
	return &ProviderError{
		Code:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
