package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/brewhaven/brewhaven-backend/pkg/config"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("gemini api key is required")
	errLoggerRequired = errors.New("gemini logger is required")
)

// Message is a single conversation turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Client wraps the Gemini generateContent endpoint with auth, logging, and
// error mapping.
type Client struct {
	http   *resty.Client
	model  string
	maxOut int
	logger *logger.Logger
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient validates the configuration and builds the HTTP wrapper.
func NewClient(cfg config.GeminiConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", apiKey)

	return &Client{
		http:   httpClient,
		model:  cfg.Model,
		maxOut: cfg.MaxOutputTokens,
		logger: logg,
	}, nil
}

// GenerateReply sends the system prompt plus the conversation history and
// returns the model's text reply. History must end with the user's latest
// message.
func (c *Client) GenerateReply(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	if len(history) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "conversation history is empty")
	}

	req := generateRequest{
		Contents:         make([]content, 0, len(history)),
		GenerationConfig: generationConfig{MaxOutputTokens: c.maxOut},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	for _, msg := range history {
		req.Contents = append(req.Contents, content{
			Role:  wireRole(msg.Role),
			Parts: []part{{Text: msg.Content}},
		})
	}

	var (
		success generateResponse
		failure apiErrorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&success).
		SetError(&failure).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		c.logger.Error(ctx, "gemini request failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gemini request failed")
	}
	if resp.IsError() {
		return "", c.mapAPIError(ctx, resp.StatusCode(), failure)
	}

	reply := extractText(success)
	if reply == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gemini returned no candidates")
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"model":       c.model,
		"turns":       len(history),
		"status_code": resp.StatusCode(),
	})
	c.logger.Info(ctx, "gemini reply generated")
	return reply, nil
}

func (c *Client) mapAPIError(ctx context.Context, status int, payload apiErrorResponse) error {
	message := strings.TrimSpace(payload.Error.Message)
	if message == "" {
		message = "gemini request rejected"
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"status_code": status,
		"api_status":  payload.Error.Status,
	})
	c.logger.Error(ctx, "gemini error response", errors.New(message))

	switch status {
	case http.StatusTooManyRequests:
		return pkgerrors.New(pkgerrors.CodeRateLimit, "assistant is busy, try again shortly")
	case http.StatusBadRequest:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeDependency, "assistant credentials rejected")
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, "assistant is unavailable")
	}
}

func extractText(resp generateResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(sb.String())
}

// wireRole maps our chat roles onto the ones the API accepts.
func wireRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}
