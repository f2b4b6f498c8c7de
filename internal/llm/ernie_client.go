package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lhyssy/AI-Agent-code-web/internal/config"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
)

// Baidu error codes signalling that the cached access token is no longer
// valid and must be re-acquired.
const (
	errCodeTokenInvalid = 110
	errCodeTokenExpired = 111
)

var modelPaths = map[string]string{
	"ERNIE-Bot":       "/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/completions",
	"ERNIE-Bot-4":     "/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/completions_pro",
	"ERNIE-Bot-8K":    "/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/ernie_bot_8k",
	"ERNIE-Bot-turbo": "/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/eb-instant",
}

// ErnieClient calls the Baidu ERNIE chat completion API. It lazily acquires
// and caches an OAuth access token; on an authorization-expired signal the
// token is cleared and the request retried exactly once.
type ErnieClient struct {
	apiKey    string
	secretKey string
	model     string
	baseURL   string

	httpClient *http.Client
	logger     logging.Logger

	mu          sync.Mutex
	accessToken string
}

// NewErnieClient constructs a client from gateway configuration.
func NewErnieClient(cfg config.LLMConfig) *ErnieClient {
	timeout := cfg.StepTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ErnieClient{
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger("ErnieClient"),
	}
}

// Complete requests a chat completion with conversational sampling settings.
func (c *ErnieClient) Complete(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, 0.7, 0.8)
}

// CompleteCode requests a chat completion with low-randomness sampling,
// suited to code generation.
func (c *ErnieClient) CompleteCode(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, 0.2, 0.95)
}

type completionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

type completionResponse struct {
	Result  string `json:"result"`
	ErrCode int    `json:"error_code"`
	ErrMsg  string `json:"error_msg"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *ErnieClient) complete(ctx context.Context, messages []Message, temperature, topP float64) (string, error) {
	result, retryable, err := c.doComplete(ctx, messages, temperature, topP)
	if err == nil {
		return result, nil
	}
	if !retryable {
		return "", err
	}

	// The cached token was rejected; clear it and retry once with a fresh one.
	c.logger.Warn("access token rejected, refreshing and retrying once")
	c.clearToken()

	result, _, err = c.doComplete(ctx, messages, temperature, topP)
	if err != nil {
		return "", err
	}
	return result, nil
}

// doComplete performs one completion attempt. The second return reports
// whether the failure was an authorization-expired signal worth one retry.
func (c *ErnieClient) doComplete(ctx context.Context, messages []Message, temperature, topP float64) (string, bool, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return "", false, completionErr(err, "")
	}

	body, err := json.Marshal(completionRequest{
		Messages:    messages,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return "", false, completionErr(err, "")
	}

	endpoint := fmt.Sprintf("%s%s?access_token=%s", c.baseURL, c.modelPath(), url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, completionErr(err, "")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, completionErr(err, "")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", true, completionErrStatus(resp.StatusCode, "authorization expired")
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", false, completionErrStatus(resp.StatusCode, string(data))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, completionErr(err, "decode response")
	}

	if parsed.ErrCode != 0 {
		expired := parsed.ErrCode == errCodeTokenInvalid || parsed.ErrCode == errCodeTokenExpired
		return "", expired, completionErr(nil, fmt.Sprintf("API error %d: %s", parsed.ErrCode, parsed.ErrMsg))
	}

	return parsed.Result, false, nil
}

// getAccessToken returns the cached token, acquiring one on first use.
func (c *ErnieClient) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" {
		return c.accessToken, nil
	}

	endpoint := fmt.Sprintf(
		"%s/oauth/2.0/token?grant_type=client_credentials&client_id=%s&client_secret=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.secretKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("acquire access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("acquire access token: %s", parsed.ErrorDescription)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("acquire access token: empty token in response")
	}

	c.accessToken = parsed.AccessToken
	return c.accessToken, nil
}

func (c *ErnieClient) clearToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func (c *ErnieClient) modelPath() string {
	if path, ok := modelPaths[c.model]; ok {
		return path
	}
	return modelPaths["ERNIE-Bot-4"]
}
