package murf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgnsrekt/murmur/internal/voice"
)

// demoVoices is the static catalog served when the provider is
// unreachable or no API key is configured.
var demoVoices = []voice.Voice{
	{ID: "en-US-terrell", Name: "Terrell", Language: "en-US", Gender: "male"},
	{ID: "en-US-natalie", Name: "Natalie", Language: "en-US", Gender: "female"},
	{ID: "en-GB-charlotte", Name: "Charlotte", Language: "en-GB", Gender: "female"},
	{ID: "en-AU-ruby", Name: "Ruby", Language: "en-AU", Gender: "female"},
	{ID: "en-IN-priya", Name: "Priya", Language: "en-IN", Gender: "female"},
	{ID: "es-ES-elena", Name: "Elena", Language: "es-ES", Gender: "female"},
	{ID: "fr-FR-marie", Name: "Marie", Language: "fr-FR", Gender: "female"},
	{ID: "de-DE-hans", Name: "Hans", Language: "de-DE", Gender: "male"},
	{ID: "ja-JP-akira", Name: "Akira", Language: "ja-JP", Gender: "male"},
}

// DemoCatalog returns the static voice catalog.
func DemoCatalog() (*voice.Catalog, error) {
	return voice.NewCatalog(demoVoices)
}

type voiceDescriptor struct {
	VoiceID     string `json:"voiceId"`
	DisplayName string `json:"displayName"`
	Locale      string `json:"locale"`
	Gender      string `json:"gender"`
}

// Voices fetches the provider's voice list and builds a catalog from it.
// When the provider cannot be reached or the client is in demo mode, the
// static catalog is returned instead; the caller still gets a non-empty
// catalog unless validation of the provider's own list fails.
func (c *Client) Voices(ctx context.Context) (*voice.Catalog, error) {
	if c.Demo() {
		return DemoCatalog()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+voicesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build voice list request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Unreachable provider falls back to the static catalog.
		return DemoCatalog()
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp)
	}

	var descriptors []voiceDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		return nil, &ProviderError{
			Code:    ErrorCodeServer,
			Message: "failed to decode voice list",
			Cause:   err,
		}
	}

	voices := make([]voice.Voice, 0, len(descriptors))
	for _, d := range descriptors {
		voices = append(voices, voice.Voice{
			ID:       d.VoiceID,
			Name:     d.DisplayName,
			Language: d.Locale,
			Gender:   d.Gender,
		})
	}
	if len(voices) == 0 {
		return DemoCatalog()
	}
	return voice.NewCatalog(voices)
}
