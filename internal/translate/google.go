package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleProvider uses the public gtx web endpoint. It needs no credentials,
// which makes it the default primary provider.
type GoogleProvider struct {
	endpoint   string
	httpClient *http.Client
}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{
		endpoint: googleEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	out, err := parseGtxResponse(body)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}
	return out, nil
}

// parseGtxResponse decodes the gtx nested-array payload:
// [[["<translated>","<original>",...],...],...]. Only the first column of
// each sentence entry matters.
func parseGtxResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", err
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	var sentences []json.RawMessage
	if err := json.Unmarshal(outer[0], &sentences); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, s := range sentences {
		var parts []json.RawMessage
		if err := json.Unmarshal(s, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(parts[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated segments in payload")
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
