// Package whatsapp wraps the WhatsApp Cloud API (graph.facebook.com) for
// outbound notifications. It is a thin client; the only retry behavior is
// the single messaging-window fallback in SendText.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"multiplicadores/internal/config"
)

// errReEngagement is the Cloud API error code for a closed 24h messaging
// window; only approved templates may be sent then.
const errReEngagement = 131047

// APIError is a non-2xx provider response. The raw payload is kept so
// handlers can echo it back on 502.
type APIError struct {
	StatusCode int
	Code       int
	Payload    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api status %d (code %d)", e.StatusCode, e.Code)
}

// Client talks to the Cloud API messages endpoint configured via
// WHATSAPP_API_URL (e.g. https://graph.facebook.com/v21.0/<PHONE_ID>/messages).
type Client struct {
	apiURL   string
	token    string
	template string
	http     *http.Client
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		token:    cfg.APIToken,
		template: cfg.TemplateName,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Configured reports whether the client has an endpoint and a token.
func (c *Client) Configured() bool {
	return c.apiURL != "" && c.token != ""
}

// mediaURL derives the media upload endpoint from the messages endpoint.
func (c *Client) mediaURL() string {
	return strings.TrimSuffix(c.apiURL, "/messages") + "/media"
}

func (c *Client) do(ctx context.Context, url string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       providerErrorCode(payload),
			Payload:    json.RawMessage(payload),
		}
	}
	return json.RawMessage(payload), nil
}

func (c *Client) send(ctx context.Context, msg map[string]any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("WHATSAPP_API_URL/WHATSAPP_API_TOKEN not configured")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return c.do(ctx, c.apiURL, bytes.NewReader(raw), "application/json")
}

// providerErrorCode extracts error.code from a Cloud API error payload.
func providerErrorCode(payload []byte) int {
	var body struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return 0
	}
	return body.Error.Code
}

// SendText sends a plain text message. When the provider reports a closed
// messaging window and a template is configured, it retries once as the
// approved template with the text as the single body parameter.
func (c *Client) SendText(ctx context.Context, to, text string) (json.RawMessage, error) {
	out, err := c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": text},
	})
	if err == nil {
		return out, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == errReEngagement && c.template != "" {
		return c.SendTemplate(ctx, to, []string{text})
	}
	return nil, err
}

// SendTemplate sends the configured approved template with the given body
// parameters, in pt_BR.
func (c *Client) SendTemplate(ctx context.Context, to string, params []string) (json.RawMessage, error) {
	components := []map[string]any{}
	if len(params) > 0 {
		ps := make([]map[string]any, 0, len(params))
		for _, p := range params {
			ps = append(ps, map[string]any{"type": "text", "text": p})
		}
		components = append(components, map[string]any{"type": "body", "parameters": ps})
	}
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]any{
			"name":       c.template,
			"language":   map[string]any{"code": "pt_BR"},
			"components": components,
		},
	})
}

// SendImage sends a previously uploaded media object by id.
func (c *Client) SendImage(ctx context.Context, to, mediaID, caption string) (json.RawMessage, error) {
	image := map[string]any{"id": mediaID}
	if caption != "" {
		image["caption"] = caption
	}
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "image",
		"image":             image,
	})
}

// UploadMedia uploads a file to the media endpoint and returns its media id.
func (c *Client) UploadMedia(ctx context.Context, r io.Reader, filename, mimeType string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("WHATSAPP_API_URL/WHATSAPP_API_TOKEN not configured")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	if err := mw.WriteField("type", mimeType); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("copy media: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	out, err := c.do(ctx, c.mediaURL(), &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(out, &resp); err != nil || resp.ID == "" {
		return "", fmt.Errorf("media upload: missing id in response")
	}
	return resp.ID, nil
}
