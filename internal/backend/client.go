package backend

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

	"github.com/sirupsen/logrus"

	"github.com/krishi-mitra/gateway/internal/model/chat"
)

// ErrEmptyReply indicates a 2xx chat response whose body lacked a reply.
var ErrEmptyReply = errors.New("backend: response missing reply")

// Client talks to the remote inference backend. The backend is an opaque
// collaborator; only its wire contract is known here.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry
}

// NewClient builds a client for the configured backend base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "backend"),
	}
}

type chatRequest struct {
	Message  string                  `json:"message"`
	Location *chat.GeolocationSample `json:"location"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat sends one user turn. location may be nil; null is a legitimate
// payload value, not an error state.
func (c *Client) Chat(ctx context.Context, message string, location *chat.GeolocationSample) (string, error) {
	body, err := json.Marshal(chatRequest{Message: message, Location: location})
	if err != nil {
		return "", fmt.Errorf("backend: marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("backend: build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend: chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("backend: chat returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("backend: decode chat response: %w", err)
	}
	if parsed.Reply == "" {
		return "", ErrEmptyReply
	}
	return parsed.Reply, nil
}

// ClassifyResult is the classification verdict for an uploaded image.
type ClassifyResult struct {
	PredictedClass string `json:"predicted_class"`
	Confidence     string `json:"confidence"`
}

// ClassifyError carries the server-provided detail of a failed
// classification so callers can surface it verbatim.
type ClassifyError struct {
	StatusCode int
	Detail     string
}

func (e *ClassifyError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("classification failed with status %d", e.StatusCode)
}

// Classify uploads an image for classification as a multipart request
// with field "image".
func (c *Client) Classify(ctx context.Context, filename string, image io.Reader) (*ClassifyResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("backend: build multipart form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("backend: copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("backend: finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", &body)
	if err != nil {
		return nil, fmt.Errorf("backend: build classify request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: classify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := struct {
			Error string `json:"error"`
		}{}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
			c.log.WithError(err).Debug("classify error body not parsable")
		}
		return nil, &ClassifyError{StatusCode: resp.StatusCode, Detail: detail.Error}
	}

	var result ClassifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("backend: decode classify response: %w", err)
	}
	return &result, nil
}
