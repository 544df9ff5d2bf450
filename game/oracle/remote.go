package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/internal/logger"
)

// CommentaryRequest is the body posted to a remote commentary service
type CommentaryRequest struct {
	Player  string `json:"player"`
	Event   string `json:"event"`
	Summary string `json:"summary"`
}

// CommentaryResponse is the expected reply
type CommentaryResponse struct {
	Text string `json:"text"`
}

// RemoteNarrator asks an HTTP service for commentary lines
type RemoteNarrator struct {
	url        string
	httpClient *http.Client
}

// NewRemoteNarrator creates a client for the commentary service at url
func NewRemoteNarrator(url string, timeout time.Duration) *RemoteNarrator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RemoteNarrator{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Narrate posts the event and returns the service's line
func (r *RemoteNarrator) Narrate(ctx context.Context, player string, tag engine.EventTag, summary string) (string, error) {
	body, err := json.Marshal(CommentaryRequest{Player: player, Event: string(tag), Summary: summary})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("commentary request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("commentary service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out CommentaryResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode commentary: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("commentary service returned an empty line")
	}
	return out.Text, nil
}

// Fallback tries the primary narrator and uses the secondary when it fails
type Fallback struct {
	Primary   engine.Narrator
	Secondary engine.Narrator
}

// Narrate implements engine.Narrator
func (f Fallback) Narrate(ctx context.Context, player string, tag engine.EventTag, summary string) (string, error) {
	text, err := f.Primary.Narrate(ctx, player, tag, summary)
	if err == nil {
		return text, nil
	}
	logger.Warn("commentary for %s (%s) failed, using fallback: %v", player, tag, err)
	// the primary may have consumed the caller's deadline
	return f.Secondary.Narrate(context.WithoutCancel(ctx), player, tag, summary)
}

// NewNarrator returns the template narrator, fronted by the remote service when url is set
func NewNarrator(url string, timeout time.Duration, rng engine.Random) engine.Narrator {
	templates := NewTemplateNarrator(rng)
	if url == "" {
		return templates
	}
	return Fallback{Primary: NewRemoteNarrator(url, timeout), Secondary: templates}
}
