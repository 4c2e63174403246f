package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/genai"
)

// ChatRequest is a single system+user chat completion.
// A nil Temperature means the configured default; Float(0) asks for 0.
type ChatRequest struct {
	System      string
	Prompt      string
	Temperature *float64
	MaxTokens   int
}

// Float returns a pointer to v, for ChatRequest.Temperature.
func Float(v float64) *float64 { return &v }

// Provider sends one chat completion and returns the assistant text.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req ChatRequest) (string, error)

// Chat implements Provider.
func (f ProviderFunc) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}

// NewKitProvider returns a provider backed by the go-kit OpenAI-compatible client.
// Works with OpenAI, Gemini's OpenAI endpoint, OpenRouter and local gateways.
func NewKitProvider(base, key, model string, fallbacks []string, maxTokens int, temperature float64, timeout time.Duration) Provider {
	c := llm.NewClient(base, key, model,
		llm.WithFallbackKeys(fallbacks),
		llm.WithMaxTokens(maxTokens),
		llm.WithTemperature(temperature),
		llm.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	return ProviderFunc(func(ctx context.Context, req ChatRequest) (string, error) {
		if req.Temperature == nil {
			req.Temperature = &temperature
		}
		if req.MaxTokens <= 0 {
			req.MaxTokens = maxTokens
		}
		text, err := c.Complete(ctx, req.System, req.Prompt,
			llm.WithChatTemperature(*req.Temperature),
			llm.WithChatMaxTokens(req.MaxTokens),
		)
		if err != nil {
			return "", kitError(err)
		}
		return text, nil
	})
}

// kitStatusRe finds the upstream status in go-kit llm error text,
// e.g. "status 429", "status code: 503", "HTTP 502".
var kitStatusRe = regexp.MustCompile(`(?i)\b(?:status(?:\s+code)?|http)[\s:=]*([1-5]\d\d)\b`)

// kitError maps a go-kit llm error onto httpStatusError so RetryDo can
// classify it. The client reports status only in the message.
func kitError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return err
	}
	msg := err.Error()
	if m := kitStatusRe.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return &httpStatusError{StatusCode: code, cause: err}
	}
	for _, code := range []int{429, 500, 502, 503, 504} {
		if strings.Contains(msg, strconv.Itoa(code)+" "+http.StatusText(code)) {
			return &httpStatusError{StatusCode: code, cause: err}
		}
	}
	return err
}

// openAIError maps an openai-go API error onto httpStatusError.
func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &httpStatusError{StatusCode: apiErr.StatusCode, cause: err}
	}
	return err
}

// geminiError maps a genai API error onto httpStatusError.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &httpStatusError{StatusCode: apiErr.Code, cause: err}
	}
	return err
}

// OpenAIOptions configures NewOpenAIProvider.
// With Endpoint and APIVersion set the client talks to Azure OpenAI and Model
// names the deployment.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Endpoint   string
	APIVersion string
	Model      string
	Timeout    time.Duration
}

// NewOpenAIProvider returns a provider backed by the official OpenAI SDK.
// SDK-level retries are disabled; RetryDo owns retry policy.
func NewOpenAIProvider(o OpenAIOptions) (Provider, error) {
	if o.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if o.Model == "" {
		return nil, errors.New("openai: model is required")
	}
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: o.Timeout}),
	}
	switch {
	case o.Endpoint != "":
		apiVersion := o.APIVersion
		if apiVersion == "" {
			apiVersion = "2024-04-01-preview"
		}
		opts = append(opts, azure.WithEndpoint(o.Endpoint, apiVersion), azure.WithAPIKey(o.APIKey))
	default:
		opts = append(opts, option.WithAPIKey(o.APIKey))
		if o.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(o.BaseURL))
		}
	}
	client := openai.NewClient(opts...)

	return ProviderFunc(func(ctx context.Context, req ChatRequest) (string, error) {
		var messages []openai.ChatCompletionMessageParamUnion
		if req.System != "" {
			messages = append(messages, openai.SystemMessage(req.System))
		}
		messages = append(messages, openai.UserMessage(req.Prompt))

		params := openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(o.Model),
			Messages: messages,
		}
		if req.Temperature != nil {
			params.Temperature = openai.Float(*req.Temperature)
		}
		if req.MaxTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.MaxTokens))
		}

		completion, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", openAIError(err)
		}
		if len(completion.Choices) == 0 {
			return "", errors.New("openai: empty choices")
		}
		return completion.Choices[0].Message.Content, nil
	}), nil
}

// NewGeminiProvider returns a provider backed by the Google GenAI SDK.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	return ProviderFunc(func(ctx context.Context, req ChatRequest) (string, error) {
		gc := &genai.GenerateContentConfig{}
		if req.System != "" {
			gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
		}
		if req.Temperature != nil {
			gc.Temperature = genai.Ptr(float32(*req.Temperature))
		}
		if req.MaxTokens > 0 {
			gc.MaxOutputTokens = int32(req.MaxTokens)
		}
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
		if err != nil {
			return "", geminiError(err)
		}
		return resp.Text(), nil
	}), nil
}
