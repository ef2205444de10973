package allocator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Client requests game-server assignment for a finalized match from an
// external allocation service. With no endpoint configured it logs and
// accepts, which keeps local development off real servers.
type Client struct {
	url  string
	http *http.Client
	log  *zap.Logger
}

func NewClient(url string, log *zap.Logger) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

func (c *Client) AssignServer(ctx context.Context, gameID string) error {
	if c.url == "" {
		c.log.Info("no allocator configured, skipping server assignment", zap.String("game", gameID))
		return nil
	}

	body, err := json.Marshal(map[string]string{"game": gameID})
	if err != nil {
		return errors.Wrap(err, "encoding allocation request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building allocation request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "requesting server assignment")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Newf("server assignment failed with status %d", resp.StatusCode)
	}

	c.log.Info("game assigned to server", zap.String("game", gameID))
	return nil
}
