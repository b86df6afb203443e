package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 3
)

var idPattern = regexp.MustCompile(`\d+`)

// NormalizeID extracts the numeric Discord id from raw input, which may be a
// bare id or a mention like <@123456789>.
func NormalizeID(raw string) string {
	if m := idPattern.FindString(raw); m != "" {
		return m
	}
	return raw
}

// Client is a minimal Discord bot REST client. All calls are synchronous,
// short-timeout, and retried only on rate-limit responses.
type Client struct {
	apiBase  string
	botToken string
	guildID  string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient creates a Discord bot client. An empty botToken yields a client
// whose calls all fail; callers treat delivery as best-effort anyway.
func NewClient(apiBase, botToken, guildID string, log zerolog.Logger) *Client {
	return &Client{
		apiBase:  apiBase,
		botToken: botToken,
		guildID:  guildID,
		http:     &http.Client{Timeout: requestTimeout},
		log:      log.With().Str("component", "discord_client").Logger(),
	}
}

// doJSON performs an authenticated request, retrying with exponential backoff
// on HTTP 429 only. Out respects a nil destination.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	if c.botToken == "" {
		return 0, fmt.Errorf("discord bot token not configured")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal payload: %w", err)
		}
	}

	backoff := 500 * time.Millisecond
	var lastStatus int

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reader)
		if err != nil {
			return 0, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bot "+c.botToken)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return 0, fmt.Errorf("discord request: %w", err)
		}

		lastStatus = resp.StatusCode
		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Warn().Int("attempt", attempt).Str("path", path).Msg("Discord rate limited, backing off")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return lastStatus, ctx.Err()
			}
			backoff *= 2
			continue
		}

		defer resp.Body.Close()
		if out != nil && resp.StatusCode < 300 {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp.StatusCode, fmt.Errorf("decode response: %w", err)
			}
		} else {
			io.Copy(io.Discard, resp.Body)
		}
		return resp.StatusCode, nil
	}

	return lastStatus, fmt.Errorf("discord rate limited after %d attempts", maxAttempts)
}

// SendDM delivers a direct message to a user id. Returns an error when the
// DM channel cannot be created or the message is rejected.
func (c *Client) SendDM(ctx context.Context, discordUserID, message string) error {
	recipient := NormalizeID(discordUserID)

	var channel struct {
		ID string `json:"id"`
	}
	status, err := c.doJSON(ctx, http.MethodPost, "/users/@me/channels",
		map[string]string{"recipient_id": recipient}, &channel)
	if err != nil {
		return fmt.Errorf("create dm channel: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("create dm channel: status %d", status)
	}
	if channel.ID == "" {
		return fmt.Errorf("create dm channel: no channel id in response")
	}

	return c.SendChannelMessage(ctx, channel.ID, message)
}

// SendChannelMessage posts a text message to a channel.
func (c *Client) SendChannelMessage(ctx context.Context, channelID, message string) error {
	status, err := c.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/channels/%s/messages", channelID),
		map[string]string{"content": message}, nil)
	if err != nil {
		return fmt.Errorf("send channel message: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("send channel message: status %d", status)
	}
	return nil
}

// AddRole grants a guild role to a member. Requires MANAGE_ROLES.
func (c *Client) AddRole(ctx context.Context, discordUserID, roleID string) error {
	if c.guildID == "" {
		return fmt.Errorf("discord guild id not configured")
	}
	member := NormalizeID(discordUserID)
	status, err := c.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("/guilds/%s/members/%s/roles/%s", c.guildID, member, roleID), nil, nil)
	if err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("add role: status %d", status)
	}
	return nil
}

// GuildMemberUsername looks up a member's account username. The account
// username is preferred over any guild nickname.
func (c *Client) GuildMemberUsername(ctx context.Context, discordUserID string) (string, error) {
	if c.guildID == "" {
		return "", fmt.Errorf("discord guild id not configured")
	}
	member := NormalizeID(discordUserID)

	var data struct {
		Nick string `json:"nick"`
		User struct {
			Username      string `json:"username"`
			Discriminator string `json:"discriminator"`
		} `json:"user"`
	}
	status, err := c.doJSON(ctx, http.MethodGet,
		fmt.Sprintf("/guilds/%s/members/%s", c.guildID, member), nil, &data)
	if err != nil {
		return "", fmt.Errorf("get guild member: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("get guild member: status %d", status)
	}

	if data.User.Username != "" {
		if data.User.Discriminator != "" && data.User.Discriminator != "0" {
			return data.User.Username + "#" + data.User.Discriminator, nil
		}
		return data.User.Username, nil
	}
	if data.Nick != "" {
		return data.Nick, nil
	}
	return "", fmt.Errorf("guild member has no username")
}
