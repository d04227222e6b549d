// Package wisdom fetches a short agronomy-themed tip shown to attendees
// after they register. The tip is decorative: any failure falls back to a
// built-in default so registration never blocks on the upstream service.
package wisdom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Tip is a titled snippet of event wisdom.
type Tip struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Client produces tips. HTTPClient talks to a real endpoint; tests use a mock.
type Client interface {
	GenerateTip(ctx context.Context) Tip
}

// DefaultTip is served whenever no upstream service is configured or the
// call fails.
var DefaultTip = Tip{
	Title:   "Solo Fértil",
	Content: "Assim como o solo fértil gera boas colheitas, uma rede segura gera bons negócios.",
}

const requestTimeout = 5 * time.Second

// HTTPClient fetches tips from a text-generation endpoint. An empty URL
// disables the upstream entirely.
type HTTPClient struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPClient creates a tip client for the given endpoint. url may be
// empty, in which case GenerateTip always returns DefaultTip.
func NewHTTPClient(url, apiKey string) *HTTPClient {
	return &HTTPClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// GenerateTip asks the upstream for a one-line tip. The expected response
// text is "Title (elaboration)"; anything unparseable, any transport error
// and any non-200 status all degrade to DefaultTip.
func (c *HTTPClient) GenerateTip(ctx context.Context) Tip {
	if c.url == "" {
		return DefaultTip
	}

	body, err := json.Marshal(generateRequest{
		Prompt: "Escreva uma frase curta de sabedoria sobre agricultura e segurança, no formato Título (elaboração).",
	})
	if err != nil {
		return DefaultTip
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(body)))
	if err != nil {
		return DefaultTip
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return DefaultTip
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultTip
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return DefaultTip
	}

	var gen generateResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return DefaultTip
	}

	tip, ok := ParseTip(gen.Text)
	if !ok {
		return DefaultTip
	}
	return tip
}

// ParseTip splits generated text of the form "Title (elaboration)" into a
// Tip. Returns false when the text does not follow that shape.
func ParseTip(text string) (Tip, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Tip{}, false
	}

	open := strings.IndexByte(text, '(')
	if open <= 0 {
		return Tip{Title: text, Content: ""}, true
	}

	title := strings.TrimSpace(text[:open])
	content := strings.TrimSpace(text[open+1:])
	content = strings.TrimSuffix(content, ")")
	if title == "" {
		return Tip{}, false
	}
	return Tip{Title: title, Content: strings.TrimSpace(content)}, true
}
