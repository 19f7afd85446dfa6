package slack

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shubh-37/idea-processor/internal/submission"
	"github.com/slack-go/slack/slackevents"
)

// Submitter accepts ideas on behalf of Slack users
type Submitter interface {
	Submit(ctx context.Context, req submission.Request) (string, error)
}

// MessageHandler turns channel messages into idea submissions for one
// session. Mentions are routed to the commands.
type MessageHandler struct {
	client    Messenger
	submitter Submitter
	commands  *CommandHandler
	sessionID string
	channelID string
}

// NewMessageHandler listens on channelID; an empty channelID accepts every channel.
func NewMessageHandler(client Messenger, submitter Submitter, commands *CommandHandler, sessionID, channelID string) *MessageHandler {
	return &MessageHandler{
		client:    client,
		submitter: submitter,
		commands:  commands,
		sessionID: sessionID,
		channelID: channelID,
	}
}

func (h *MessageHandler) HandleMessage(ctx context.Context, event *slackevents.MessageEvent) error {
	if event.BotID != "" || event.User == "" {
		return nil
	}

	if event.User == h.client.BotID() {
		return nil
	}

	if event.SubType != "" {
		return nil
	}

	if h.channelID != "" && event.Channel != h.channelID {
		return nil
	}

	if strings.TrimSpace(event.Text) == "" {
		return nil
	}

	if event.ThreadTimeStamp != "" && event.ThreadTimeStamp != event.TimeStamp {
		return nil
	}

	if strings.HasPrefix(strings.TrimSpace(event.Text), "<@") {
		return nil
	}

	_, err := h.submitter.Submit(ctx, submission.Request{
		SessionID: h.sessionID,
		DeviceID:  "slack:" + event.User,
		Name:      truncateRunes(h.client.UserName(event.User), submission.MaxNameLength),
		Content:   event.Text,
	})
	reply := submissionReply(err)
	if err != nil && reply == "" {
		log.Printf("❌ Failed to submit Slack idea: %v", err)
		reply = "Er ging iets mis bij het opslaan van je idee. Probeer het later opnieuw."
	}

	if _, sendErr := h.client.SendMessage(event.Channel, reply); sendErr != nil {
		log.Printf("Failed to send confirmation: %v", sendErr)
	}
	return err
}

func (h *MessageHandler) HandleAppMention(ctx context.Context, event *slackevents.AppMentionEvent) error {
	text := strings.TrimSpace(strings.Replace(event.Text, "<@"+h.client.BotID()+">", "", 1))
	return h.commands.Handle(event.Channel, text)
}

// submissionReply is empty for errors the participant cannot act on
func submissionReply(err error) string {
	var cooldown *submission.CooldownError
	var invalid *submission.ValidationError
	switch {
	case err == nil:
		return "💡 Je idee is ontvangen!"
	case errors.Is(err, submission.ErrSessionClosed):
		return "🔒 De sessie is gesloten. Er kunnen geen ideeën meer worden ingediend."
	case errors.As(err, &cooldown):
		return fmt.Sprintf("⏳ Wacht nog %d seconden voor je volgende idee.", cooldown.Seconds())
	case errors.As(err, &invalid):
		return "⚠️ " + invalid.Error()
	}
	return ""
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
