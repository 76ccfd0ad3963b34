package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"freelance-assistant/internal/model"
)

// Config 定义补全服务配置。APIKey 必填，其余缺省取默认值。
type Config struct {
	APIBase     string  `yaml:"api_base" json:"api_base"`
	APIKey      string  `yaml:"api_key" json:"api_key"`
	Model       string  `yaml:"model" json:"model"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxRetries  int     `yaml:"max_retries" json:"max_retries"`
}

// Request 描述一次文本补全调用。零值字段由客户端默认值补齐。
type Request struct {
	Prompt      string
	System      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Completer 抽象文本补全服务，便于测试注入。
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const (
	defaultAPIBase     = "https://api.anthropic.com/v1"
	defaultModel       = "claude-3-5-sonnet-20241022"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.7
	anthropicVersion   = "2023-06-01"
)

// AnthropicClient 实现 Completer，调用 Anthropic messages API。
type AnthropicClient struct {
	cfg    Config
	client *http.Client
}

// NewAnthropicClient 创建客户端。API Key 缺失属于配置错误，构造立即失败。
func NewAnthropicClient(cfg Config, httpClient *http.Client) (*AnthropicClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: anthropic api key missing", model.ErrConfiguration)
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &AnthropicClient{cfg: cfg, client: httpClient}, nil
}

// Complete 调用 messages 接口并抽取首个文本块。
// 请求失败、响应无内容块或内容块无文本均返回 AIGenerationError。
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = c.cfg.Temperature
	}

	payload := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &model.AIGenerationError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.APIBase, "/")+"/messages", bytes.NewReader(data))
	if err != nil {
		return "", &model.AIGenerationError{Err: fmt.Errorf("new request: %w", err)}
	}
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &model.AIGenerationError{Err: fmt.Errorf("anthropic request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", &model.AIGenerationError{Err: fmt.Errorf("anthropic http %d", resp.StatusCode)}
	}

	var body anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &model.AIGenerationError{Err: fmt.Errorf("decode anthropic response: %w", err)}
	}

	if len(body.Content) == 0 {
		return "", &model.AIGenerationError{Err: fmt.Errorf("empty response from ai")}
	}
	for _, block := range body.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", &model.AIGenerationError{Err: fmt.Errorf("no text content in response")}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
