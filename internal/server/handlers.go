package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"inkboard/internal/action"
	"inkboard/internal/board"
	"inkboard/internal/errs"
	"inkboard/internal/render"
)

const maxActionBytes = 1 << 20

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/boards", s.createBoard).Methods("POST")
	api.HandleFunc("/boards", s.listBoards).Methods("GET")
	api.HandleFunc("/boards/{id}", s.getBoard).Methods("GET")
	api.HandleFunc("/boards/{id}", s.deleteBoard).Methods("DELETE")
	api.HandleFunc("/boards/{id}/actions", s.applyAction).Methods("POST")
	api.HandleFunc("/boards/{id}/undo", s.undo).Methods("POST")
	api.HandleFunc("/boards/{id}/clear", s.clear).Methods("POST")
	api.HandleFunc("/boards/{id}/mode", s.setMode).Methods("POST")
	api.HandleFunc("/boards/{id}/capture", s.capture).Methods("GET")
	api.HandleFunc("/boards/{id}/frame.png", s.frame).Methods("GET")
	api.HandleFunc("/boards/{id}/ws", s.serveWS).Methods("GET")

	r.Use(corsMiddleware)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type boardState struct {
	ID        string              `json:"id"`
	Mode      board.Mode          `json:"mode"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	DPR       float64             `json:"dpr"`
	Strokes   []board.Stroke      `json:"strokes"`
	Texts     []board.TextElement `json:"texts"`
	UndoDepth int                 `json:"undo_depth"`
	Busy      bool                `json:"busy"`
	Version   uint64              `json:"version"`
	Created   time.Time           `json:"created"`
}

func stateOf(e *entry) boardState {
	opts := e.wb.Options()
	return boardState{
		ID:        e.id,
		Mode:      e.wb.Mode(),
		Width:     opts.Width,
		Height:    opts.Height,
		DPR:       opts.DPR,
		Strokes:   e.wb.Strokes(),
		Texts:     e.wb.Texts(),
		UndoDepth: e.wb.UndoDepth(),
		Busy:      e.wb.Busy(),
		Version:   e.wb.Version(),
		Created:   e.created,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrBoardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidAction):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, errs.ErrTooManyBoards):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	e, err := s.get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return e, true
}

// createBoard handles POST /v1/boards. The body is optional.
func (s *Server) createBoard(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	e, err := s.create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[INFO] board %s created (%s)", e.id, e.wb.Mode())
	writeJSON(w, http.StatusCreated, stateOf(e))
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	boards := s.list()
	out := make([]boardState, 0, len(boards))
	for _, e := range boards {
		out = append(out, stateOf(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(e))
}

func (s *Server) deleteBoard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.remove(id); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[INFO] board %s deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

type actionResponse struct {
	Strokes  int  `json:"strokes"`
	Texts    int  `json:"texts"`
	Complete bool `json:"complete"`
}

// applyAction handles POST /v1/boards/{id}/actions. With ?wait=true the
// response is held until the strokes have been revealed or the reveal is
// cancelled; complete tells the two apart.
func (s *Server) applyAction(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	limit := strconv.Itoa(s.cfg.Server.Burst)
	if !s.limiter.allow(e.id) {
		w.Header().Set("X-RateLimit-Limit", limit)
		w.Header().Set("X-RateLimit-Remaining", "0")
		writeError(w, errs.ErrRateLimited)
		return
	}
	w.Header().Set("X-RateLimit-Limit", limit)
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(s.limiter.tokens(e.id))))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := action.Parse(body)
	if err != nil {
		writeError(w, err)
		return
	}

	// Buffered so the whiteboard never blocks on a request that has gone.
	done := make(chan bool, 1)
	res := e.wb.ApplyAction(a, func(completed bool) { done <- completed })
	e.loop.Kick()

	resp := actionResponse{Strokes: len(res.Strokes), Texts: len(res.Texts)}
	if r.URL.Query().Get("wait") == "true" {
		select {
		case resp.Complete = <-done:
		case <-r.Context().Done():
			return
		}
	} else {
		select {
		case resp.Complete = <-done:
		default:
		}
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.wb.Undo()
	writeJSON(w, http.StatusOK, stateOf(e))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.wb.Clear()
	writeJSON(w, http.StatusOK, stateOf(e))
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	m, valid := board.ParseMode(req.Mode)
	if !valid {
		http.Error(w, "unknown mode "+strconv.Quote(req.Mode), http.StatusBadRequest)
		return
	}
	e.wb.SetMode(m)
	writeJSON(w, http.StatusOK, stateOf(e))
}

// capture handles GET /v1/boards/{id}/capture. A board with no canvas has
// nothing to send and answers 204.
func (s *Server) capture(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	b64, err := e.wb.Capture()
	if errors.Is(err, errs.ErrNoCanvas) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"media_type": "image/png",
		"data":       b64,
	})
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, e.wb.Render()); err != nil {
		log.Printf("[WARN] board %s frame: %v", e.id, err)
	}
}
