// Package forward pushes recorded joins to an external statistics API.
// Delivery is best-effort: failures are logged and never block or roll back
// the local write.
package forward

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"invitetracker/entity"
	"invitetracker/internal/config"
	"invitetracker/lib/sl"
)

type Client struct {
	url    string
	secret string
	client *http.Client
	log    *slog.Logger
}

// New returns nil when no forward URL is configured; callers treat a nil
// client as forwarding disabled.
func New(conf *config.Config, log *slog.Logger) *Client {
	if conf.Api.ForwardUrl == "" {
		return nil
	}
	return &Client{
		url:    conf.Api.ForwardUrl,
		secret: conf.Api.SecretKey,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.With(sl.Module("forward")),
	}
}

func (c *Client) ForwardJoin(rec *entity.JoinRecord) {
	body, err := json.Marshal(rec)
	if err != nil {
		c.log.Error("encoding join record", sl.Err(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/joins", c.url), bytes.NewReader(body))
	if err != nil {
		c.log.Error("building forward request", sl.Err(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.secret)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("forwarding join record", sl.Err(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.log.Warn("forwarding join record",
			slog.Int("status", resp.StatusCode),
			slog.String("user_id", rec.UserID),
		)
		return
	}
	c.log.Debug("forwarded join record", slog.String("user_id", rec.UserID))
}
