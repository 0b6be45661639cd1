package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"relsync/internal/service"
)

// EventStream serves change events over Server-Sent Events.
type EventStream struct {
	bus *service.EventBus
}

// NewEventStream creates an SSE handler backed by the given bus.
func NewEventStream(bus *service.EventBus) *EventStream {
	return &EventStream{bus: bus}
}

func (s *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The server-wide write timeout would sever the stream after its
	// first interval; lift it for this connection so clients stay
	// subscribed as long as they like.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Printf("SSE write deadline not cleared: %v", err)
	}

	clientID := uuid.NewString()
	events := make(chan service.Event, 16)
	s.bus.Subscribe(events)
	defer s.bus.Unsubscribe(events)

	log.Printf("SSE client connected: %s", clientID)
	defer log.Printf("SSE client disconnected: %s", clientID)

	// Keep-alive comments so idle connections survive proxies.
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	fmt.Fprintf(w, ": connected %s\n\n", clientID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case event := <-events:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal event %s: %v", event.ID, err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
			flusher.Flush()
		}
	}
}
