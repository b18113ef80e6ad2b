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

const (
	deeplFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	deeplProEndpoint  = "https://api.deepl.com/v2/translate"
)

// DeepLProvider calls the DeepL REST API. Free-tier keys carry the ":fx"
// suffix and are routed to the free endpoint.
type DeepLProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewDeepLProvider(apiKey string) *DeepLProvider {
	endpoint := deeplProEndpoint
	if strings.HasSuffix(apiKey, ":fx") {
		endpoint = deeplFreeEndpoint
	}
	return &DeepLProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *DeepLProvider) Name() string { return "deepl" }

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

func (p *DeepLProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", deeplLang(target))
	if source != "" && source != "auto" {
		form.Set("source_lang", deeplLang(source))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.apiKey)

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

	var apiResp deeplResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(apiResp.Translations) == 0 {
		return "", &ProviderError{Provider: p.Name(), Message: "empty translations in response"}
	}
	return apiResp.Translations[0].Text, nil
}

// deeplLang maps pipeline language codes onto DeepL's uppercase codes.
// DeepL has no regional Chinese variants.
func deeplLang(code string) string {
	switch code {
	case "zh-CN", "zh-TW":
		return "ZH"
	}
	return strings.ToUpper(code)
}
