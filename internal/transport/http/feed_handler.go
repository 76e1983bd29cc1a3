package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/domain"
)

const feedWriteWait = 10 * time.Second

// FeedHandler streams completed attempts of one quiz to an admin over a websocket.
type FeedHandler struct {
	feed     *app.ResultFeed
	catalog  *app.CatalogService
	upgrader websocket.Upgrader
}

func NewFeedHandler(feed *app.ResultFeed, catalog *app.CatalogService) *FeedHandler {
	return &FeedHandler{
		feed:    feed,
		catalog: catalog,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type subscribedPayload struct {
	QuizID string `json:"quiz_id"`
}

// ServeWS upgrades the request and forwards every completed attempt of the quiz
// until the client disconnects.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	if _, err := h.catalog.GetContent(r.Context(), quizID); err != nil {
		writeError(w, "results feed", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	// the server read timeout still applies to the hijacked connection
	_ = conn.SetReadDeadline(time.Time{})

	events, cancel := h.feed.Subscribe(quizID)
	defer cancel()

	// The reader only detects the client going away; inbound messages are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, outboundMessage[subscribedPayload]{Type: "subscribed", Payload: subscribedPayload{QuizID: quizID}}); err != nil {
		return
	}
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(conn, outboundMessage[domain.AttemptEvent]{Type: "completed", Payload: event}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *FeedHandler) write(conn *websocket.Conn, msg any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return conn.WriteJSON(msg)
}
