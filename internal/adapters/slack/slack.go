// Package slack implements the chat ports on the Slack Web API.
package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/example/putzplan/internal/ports/secondary"
)

// Client resolves chat identities and posts to channels.
type Client struct {
	api *slack.Client
}

// NewClient creates a client. apiURL overrides the Web API endpoint when set.
func NewClient(token, apiURL string) *Client {
	var opts []slack.Option
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &Client{api: slack.New(token, opts...)}
}

// LookupByEmail returns the user id registered for email. An unknown address
// is a miss, not an error.
func (c *Client) LookupByEmail(ctx context.Context, email string) (string, bool, error) {
	if email == "" {
		return "", false, nil
	}
	user, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("slack lookup %s: %w", email, err)
	}
	return user.ID, true, nil
}

// Post sends text to channel.
func (c *Client) Post(ctx context.Context, channel, text string) error {
	if _, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack post to %s: %w", channel, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var resp slack.SlackErrorResponse
	if errors.As(err, &resp) {
		return resp.Err == "users_not_found"
	}
	return err.Error() == "users_not_found"
}

// Ensure Client implements the interfaces
var (
	_ secondary.IdentityLookup = (*Client)(nil)
	_ secondary.Announcer      = (*Client)(nil)
)
