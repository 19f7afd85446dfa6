package api

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/shubh-37/idea-processor/internal/session"
)

const wsBuffer = 32

// streamState pushes every controller state to the socket as JSON. A slow
// reader skips intermediate states and always receives the latest one.
func (s *Server) streamState(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	ctl, ok := s.deps.Hub.Lookup(conn.Params("id"))
	if !ok {
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.wsClients.Inc()
		defer s.deps.Metrics.wsClients.Dec()
	}

	states := make(chan session.State, wsBuffer)
	unsubscribe := ctl.Subscribe(func(st session.State) {
		select {
		case states <- st:
		default:
			// drop the oldest so the newest fits
			select {
			case <-states:
			default:
			}
			select {
			case states <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case st := <-states:
			if err := conn.WriteJSON(st); err != nil {
				log.Printf("⚠️ Websocket write for session %s failed: %v", st.SessionID, err)
				return
			}
		}
	}
}
