package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/llm"
)

// Extract implements llm.Extractor over chat/completions. Text requests go as
// a plain user message; image requests attach the file as a base64 data URL
// on the vision content-parts shape. The returned content is raw and
// untrusted — payload shape mismatches are logged, never rejected, because
// normalization downstream owns the cleaning.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"kind", req.Kind,
		"text_len", len(req.Text),
		"has_image", req.ImagePath != "",
	)

	messages, err := c.buildMessages(req)
	if err != nil {
		c.log.Error("llm.extract.build_failed", "req_id", rid, "error", err)
		return "", err
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        messages,
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	// Shape check is advisory only: a mismatch means the model drifted from
	// the requested format, which normalization still absorbs.
	if vErr := llm.CheckShape(req.Kind, []byte(content)); vErr != nil {
		c.log.Warn("llm.extract.shape_mismatch",
			"req_id", rid, "error", vErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) buildMessages(req llm.ExtractRequest) ([]map[string]any, error) {
	var prompt string
	if req.Kind == constants.KindOrder {
		prompt = llm.BuildOrderPrompt(req.Text, req.AdditionalContext)
	} else {
		prompt = llm.BuildInvoicePrompt(req.Text, req.AdditionalContext)
	}

	if req.ImagePath == "" {
		return []map[string]any{
			{"role": "user", "content": prompt},
		}, nil
	}

	dataURL, _, err := llm.ReadAsDataURL(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return []map[string]any{
		{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": prompt},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
			},
		},
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}
