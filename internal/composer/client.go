package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultTimeout bounds a single backend call. Remote media fetches are
// otherwise unbounded, so the client enforces a ceiling even when the caller
// passes a background context.
const defaultTimeout = 2 * time.Minute

// BackendError reports a failed composition backend call.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("composition backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("composition backend: %s", e.Message)
}

// Client talks to the composition backend over HTTP. It implements Composer.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient validates the backend address and returns a client. An empty or
// malformed address is a startup error; the server refuses to run without a
// reachable backend configuration rather than degrading every call.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("composer address is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse composer address %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("composer address %q must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("composer address %q is missing a host", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: parsed,
		http: &http.Client{Timeout: timeout},
	}, nil
}

type createDraftRequest struct {
	DraftID string `json:"draft_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type createDraftResponse struct {
	DraftFolder string `json:"draft_folder"`
}

// CreateDraft asks the backend to materialize a backing folder for a new draft.
func (c *Client) CreateDraft(ctx context.Context, draftID string, width, height int) (string, error) {
	var resp createDraftResponse
	if err := c.post(ctx, "/create_draft", createDraftRequest{
		DraftID: draftID,
		Width:   width,
		Height:  height,
	}, &resp); err != nil {
		return "", err
	}
	if resp.DraftFolder == "" {
		return "", &BackendError{Message: "create_draft response is missing draft_folder"}
	}
	return resp.DraftFolder, nil
}

func (c *Client) AddVideo(ctx context.Context, folder string, p VideoParams) (any, error) {
	return c.addAsset(ctx, "/add_video", folder, p)
}

func (c *Client) AddAudio(ctx context.Context, folder string, p AudioParams) (any, error) {
	return c.addAsset(ctx, "/add_audio", folder, p)
}

func (c *Client) AddImage(ctx context.Context, folder string, p ImageParams) (any, error) {
	return c.addAsset(ctx, "/add_image", folder, p)
}

func (c *Client) AddText(ctx context.Context, folder string, p TextParams) (any, error) {
	return c.addAsset(ctx, "/add_text", folder, p)
}

func (c *Client) AddSubtitle(ctx context.Context, folder string, p SubtitleParams) (any, error) {
	return c.addAsset(ctx, "/add_subtitle", folder, p)
}

func (c *Client) AddEffect(ctx context.Context, folder string, p EffectParams) (any, error) {
	return c.addAsset(ctx, "/add_effect", folder, p)
}

func (c *Client) AddSticker(ctx context.Context, folder string, p StickerParams) (any, error) {
	return c.addAsset(ctx, "/add_sticker", folder, p)
}

type saveDraftRequest struct {
	DraftFolder string `json:"draft_folder"`
	DraftID     string `json:"draft_id"`
}

// SaveDraft asks the backend to render the draft's final composition.
func (c *Client) SaveDraft(ctx context.Context, folder, draftID string) (any, error) {
	var result any
	if err := c.post(ctx, "/save_draft", saveDraftRequest{
		DraftFolder: folder,
		DraftID:     draftID,
	}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// addAsset posts the draft folder plus the asset parameters and returns the
// backend's opaque result payload.
func (c *Client) addAsset(ctx context.Context, path, folder string, params any) (any, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", path, err)
	}

	// Inject draft_folder alongside the params without a per-kind wrapper type.
	payload := make(map[string]any)
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("encode %s params: %w", path, err)
	}
	payload["draft_folder"] = folder

	var result any
	if err := c.post(ctx, path, payload, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	endpoint := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &BackendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{Status: resp.StatusCode, Message: backendMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &BackendError{Status: resp.StatusCode, Message: fmt.Sprintf("decode %s response: %v", path, err)}
		}
	}
	return nil
}

// backendMessage extracts the error message from a failure body, falling
// back to the raw body when it is not the expected JSON shape.
func backendMessage(data []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "request failed"
	}
	return msg
}
