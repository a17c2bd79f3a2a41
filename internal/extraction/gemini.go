package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/yeswanth1218/flutter-api/internal/domain/card"
)

// Gemini calls the generateContent REST endpoint directly. One
// synchronous attempt per image, no retry. The http client carries no
// timeout on purpose, the model can sit on a dense card for a while.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewGemini(apiKey, model, baseURL string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{},
	}
}

type generateRequest struct {
	Contents []genContent `json:"contents"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *genInlineData `json:"inline_data,omitempty"`
}

type genInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}

	var b strings.Builder

	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}

	return b.String()
}

// Extract sends the prompt plus the inline JPEG and parses whatever text
// comes back. Transport and model-side failures return *APIError,
// unparseable output returns *ParseError.
func (g *Gemini) Extract(ctx context.Context, imageJPEG []byte) (card.Extracted, error) {
	ctx, span := otel.Tracer("extraction").Start(ctx, "gemini.generateContent")
	defer span.End()

	body := generateRequest{
		Contents: []genContent{{
			Parts: []genPart{
				{Text: extractionPrompt},
				{InlineData: &genInlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(imageJPEG),
				}},
			},
		}},
	}

	payload, err := json.Marshal(body)

	if err != nil {
		return card.Extracted{}, &APIError{Cause: err}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))

	if err != nil {
		return card.Extracted{}, &APIError{Cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpc.Do(req)

	if err != nil {
		return card.Extracted{}, &APIError{Cause: err}
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return card.Extracted{}, &APIError{Cause: err}
	}

	var out generateResponse

	if err := json.Unmarshal(data, &out); err != nil {
		return card.Extracted{}, &APIError{Cause: fmt.Errorf("decode response: %w", err)}
	}

	if out.Error != nil {
		return card.Extracted{}, &APIError{Cause: fmt.Errorf("%s (%d %s)", out.Error.Message, out.Error.Code, out.Error.Status)}
	}

	if resp.StatusCode != http.StatusOK {
		return card.Extracted{}, &APIError{Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	text := out.text()

	if text == "" {
		return card.Extracted{}, &APIError{Cause: errors.New("empty model response")}
	}

	return Parse(text)
}
