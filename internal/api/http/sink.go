package http

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"speech-translate-service/internal/service/transcript"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamMessage is the wire format pushed to websocket viewers. Type is one
// of "backfill", "append", "partial" or "clearPartial".
type streamMessage struct {
	Type    string              `json:"type"`
	Lang    string              `json:"lang"`
	Records []transcript.Record `json:"records,omitempty"`
	Record  *transcript.Record  `json:"record,omitempty"`
	Text    string              `json:"text,omitempty"`
}

// wsSink forwards one language's buffer updates to a websocket client.
// Buffer methods deliver updates from pipeline goroutines while the close
// path runs on the connection's read goroutine, so writes are serialized
// with a mutex.
type wsSink struct {
	lang string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newWSSink(lang string, conn *websocket.Conn) *wsSink {
	return &wsSink{lang: lang, conn: conn}
}

func (s *wsSink) send(msg streamMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("lang", s.lang).Msg("Websocket write failed")
		s.closed = true
		s.conn.Close()
	}
}

func (s *wsSink) Backfill(records []transcript.Record) {
	s.send(streamMessage{Type: "backfill", Lang: s.lang, Records: records})
}

func (s *wsSink) Append(rec transcript.Record) {
	s.send(streamMessage{Type: "append", Lang: s.lang, Record: &rec})
}

func (s *wsSink) SetPartial(text string) {
	s.send(streamMessage{Type: "partial", Lang: s.lang, Text: text})
}

func (s *wsSink) ClearPartial() {
	s.send(streamMessage{Type: "clearPartial", Lang: s.lang})
}

func (s *wsSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.conn.Close()
}

// stream attaches a websocket viewer to one language's transcript. At most
// one sink is attached per language: a new connection replaces the previous
// one. On attach the client receives a full backfill, then live updates
// until it disconnects.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if _, err := h.store.Buffer(lang); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	sink := newWSSink(lang, conn)
	for {
		prev, attached, err := h.store.Toggle(lang, sink)
		if err != nil {
			sink.close()
			return
		}
		if attached {
			break
		}
		// Toggle detached whoever held the language; drop them and try
		// again so this connection ends up attached.
		if ws, ok := prev.(*wsSink); ok {
			ws.close()
		}
	}

	log.Info().Str("lang", lang).Msg("Viewer attached")

	// The read loop exists to detect disconnects; viewers send nothing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.store.DetachSink(lang, sink)
	sink.close()
	log.Info().Str("lang", lang).Msg("Viewer detached")
}
