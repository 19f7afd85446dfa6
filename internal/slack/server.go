package slack

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Server verifies and dispatches Slack Events API callbacks. It is an
// http.Handler so it can be mounted on any router.
type Server struct {
	messageHandler *MessageHandler
	announcer      *Announcer
	signingSecret  string
}

// NewServer creates the events endpoint; announcer may be nil.
func NewServer(messageHandler *MessageHandler, announcer *Announcer, signingSecret string) *Server {
	log.Printf("🔐 Slack signing secret configured (length: %d)", len(signingSecret))
	return &Server{
		messageHandler: messageHandler,
		announcer:      announcer,
		signingSecret:  signingSecret,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("❌ Error reading body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sv, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		log.Printf("❌ Error creating secrets verifier: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := sv.Write(body); err != nil {
		log.Printf("❌ Error writing to verifier: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := sv.Ensure(); err != nil {
		log.Printf("❌ Error verifying signature: %v", err)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		log.Printf("❌ Error parsing event: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if eventsAPIEvent.Type == slackevents.URLVerification {
		var challenge *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			log.Printf("❌ Error unmarshaling challenge: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		log.Printf("✅ Responding to URL verification challenge")
		w.Header().Set("Content-Type", "text")
		_, _ = w.Write([]byte(challenge.Challenge))
		return
	}

	if eventsAPIEvent.Type == slackevents.CallbackEvent {
		innerEvent := eventsAPIEvent.InnerEvent
		ctx := r.Context()

		switch ev := innerEvent.Data.(type) {
		case *slackevents.MessageEvent:
			if err := s.messageHandler.HandleMessage(ctx, ev); err != nil {
				log.Printf("❌ Error handling message: %v", err)
			}

		case *slackevents.AppMentionEvent:
			if err := s.messageHandler.HandleAppMention(ctx, ev); err != nil {
				log.Printf("❌ Error handling mention: %v", err)
			}

		case *slackevents.ReactionAddedEvent:
			if s.announcer == nil {
				break
			}
			if err := s.announcer.HandleReaction(ctx, ev); err != nil {
				log.Printf("❌ Error handling reaction: %v", err)
			}

		default:
			log.Printf("⚠️ Unsupported event type: %v", innerEvent.Type)
		}
	}

	w.WriteHeader(http.StatusOK)
}
