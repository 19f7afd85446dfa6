package slack

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"
)

// Messenger is the part of the Slack API the intake and announcer use
type Messenger interface {
	BotID() string
	SendMessage(channelID, message string) (string, error)
	UserName(userID string) string
}

type Client struct {
	api   *slack.Client
	botID string
}

func NewClient(token string) (*Client, error) {
	api := slack.New(token)

	authTest, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Slack: %w", err)
	}
	log.Printf("💬 Slack authenticated as %s", authTest.User)

	return &Client{
		api:   api,
		botID: authTest.UserID,
	}, nil
}

func (c *Client) BotID() string {
	return c.botID
}

// SendMessage posts text and returns the message timestamp
func (c *Client) SendMessage(channelID, message string) (string, error) {
	_, timestamp, err := c.api.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
	)
	return timestamp, err
}

// UserName prefers the display name, then the real name, then the id
func (c *Client) UserName(userID string) string {
	user, err := c.api.GetUserInfo(userID)
	if err != nil {
		log.Printf("⚠️ Could not look up Slack user %s: %v", userID, err)
		return userID
	}
	if name := strings.TrimSpace(user.Profile.DisplayName); name != "" {
		return name
	}
	if name := strings.TrimSpace(user.RealName); name != "" {
		return name
	}
	return userID
}
