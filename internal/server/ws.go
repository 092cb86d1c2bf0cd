package server

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"inkboard/internal/board"
	"inkboard/internal/render"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// pointerMessage is what clients send. Coordinates are client pixels
// relative to the canvas origin.
type pointerMessage struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Tool  string  `json:"tool,omitempty"`
	Color string  `json:"color,omitempty"`
}

// serveWS streams PNG frames out whenever the board changes and feeds
// pointer messages in. Only the handler goroutine writes to the conn.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] board %s upgrade: %v", e.id, err)
		return
	}
	defer conn.Close()
	conn.NetConn().SetDeadline(time.Time{})
	log.Printf("[INFO] board %s client connected", e.id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPointer(conn, e)
	}()
	s.pushFrames(conn, e, done)
	log.Printf("[INFO] board %s client disconnected", e.id)
}

func readPointer(conn *websocket.Conn, e *entry) {
	for {
		var msg pointerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WARN] board %s read: %v", e.id, err)
			}
			return
		}
		switch msg.Type {
		case "down":
			e.wb.PointerDown(msg.X, msg.Y)
		case "move":
			e.wb.PointerMove(msg.X, msg.Y)
		case "up":
			e.wb.PointerUp()
		case "leave":
			e.wb.PointerLeave()
		case "tool":
			if t, ok := board.ParseTool(msg.Tool); ok {
				e.wb.SetTool(t)
			}
		case "color":
			if msg.Color != "" {
				e.wb.SetColor(msg.Color)
			}
		default:
			log.Printf("[WARN] board %s: unknown message %q", e.id, msg.Type)
		}
	}
}

func (s *Server) pushFrames(conn *websocket.Conn, e *entry, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	var buf bytes.Buffer
	sent, first := uint64(0), true
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		v := e.wb.Version()
		if !first && v == sent {
			continue
		}
		buf.Reset()
		if err := render.EncodePNG(&buf, e.wb.Render()); err != nil {
			log.Printf("[WARN] board %s encode: %v", e.id, err)
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			return
		}
		sent, first = v, false
	}
}
