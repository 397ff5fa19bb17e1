// Gateway API implementation
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"AESFlow/server/internal/pkg/encryption"
	"AESFlow/server/internal/pkg/helpers"
	"AESFlow/server/internal/protocol"
	"AESFlow/server/internal/services/cipher"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// Server represents the API gateway
type Server struct {
	addr           string
	cipherSvc      *cipher.Service
	defaultKeyBits int
	logger         *helpers.Logger
	mu             sync.RWMutex
	clients        map[*Client]bool
	broadcast      chan interface{}
	register       chan *Client
	unregister     chan *Client
	hubOnce        sync.Once
}

// Client represents a connected trace viewer
type Client struct {
	conn   *websocket.Conn
	send   chan interface{}
	server *Server
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// New creates a new gateway server
func New(addr string, cipherSvc *cipher.Service, defaultKeyBits int) *Server {
	server := &Server{
		addr:           addr,
		cipherSvc:      cipherSvc,
		defaultKeyBits: defaultKeyBits,
		logger:         helpers.NewLogger("Gateway"),
		clients:        make(map[*Client]bool),
		broadcast:      make(chan interface{}, 1024), // Buffered channel to prevent blocking
		register:       make(chan *Client),
		unregister:     make(chan *Client),
	}

	cipherSvc.SetBroadcastHandler(func(event interface{}) {
		server.Broadcast(event)
	})

	return server
}

// Handler builds the routed HTTP handler and starts the hub
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	// Root endpoint - return OK for health checks
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("AESFlow API Server"))
	}).Methods("GET", "OPTIONS")

	// Cipher endpoints
	router.HandleFunc("/api/encrypt", s.handleEncrypt).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/decrypt", s.handleDecrypt).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/keys", s.handleGenerateKey).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/iv", s.handleGenerateIV).Methods("GET", "OPTIONS")

	// Archive endpoints
	router.HandleFunc("/api/runs", s.handleListRuns).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/runs/{runID}", s.handleGetRun).Methods("GET", "OPTIONS")

	// WebSocket endpoint
	router.HandleFunc("/ws", s.handleWebSocket)

	s.hubOnce.Do(func() { go s.runHub() })

	return corsMiddleware(router)
}

// Start starts the gateway server
func (s *Server) Start() error {
	s.logger.Info("Gateway server listening", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// maxBodyBytes bounds request bodies. JSON escaping can take six bytes per
// plaintext byte; hex ciphertext takes two.
func (s *Server) maxBodyBytes() int64 {
	limit := s.cipherSvc.MaxMessageBytes()
	if limit <= 0 {
		limit = 1 << 20
	}
	return int64(limit)*6 + 64<<10
}

// decodeBody reads a bounded JSON body, writing the error response itself
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes())
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, cipher.ErrMessageTooLarge.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, encryption.ErrDecryptionFailed):
		writeError(w, http.StatusBadRequest, encryption.ErrDecryptionFailed.Error())
	case encryption.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cipher.ErrMessageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, cipher.ErrArchiveDisabled):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("Request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleEncrypt handles text encryption
func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plaintext string `json:"plaintext"`
		Key       string `json:"key"`
		IV        string `json:"iv"`
		Trace     bool   `json:"trace"`
	}

	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.cipherSvc.Encrypt(r.Context(), cipher.EncryptRequest{
		Plaintext: req.Plaintext,
		KeyHex:    req.Key,
		IVHex:     req.IV,
		Trace:     req.Trace,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleDecrypt handles hex ciphertext decryption
func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ciphertext string `json:"ciphertext"`
		Key        string `json:"key"`
		IV         string `json:"iv"`
		Trace      bool   `json:"trace"`
	}

	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.cipherSvc.Decrypt(r.Context(), cipher.DecryptRequest{
		CiphertextHex: req.Ciphertext,
		KeyHex:        req.Key,
		IVHex:         req.IV,
		Trace:         req.Trace,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	bits, err := helpers.ParseKeyBits(r.URL.Query().Get("bits"), s.defaultKeyBits)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := s.cipherSvc.GenerateKey(bits)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"key": key, "bits": bits})
}

func (s *Server) handleGenerateIV(w http.ResponseWriter, r *http.Request) {
	iv, err := s.cipherSvc.GenerateIV()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"iv": iv})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := helpers.ParseLimit(r.URL.Query().Get("limit"), defaultRunLimit, maxRunLimit)

	runs, err := s.cipherSvc.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseRunID(mux.Vars(r)["runID"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.cipherSvc.GetRun(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// handleWebSocket subscribes a viewer to trace events
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", err)
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan interface{}, 256),
		server: s,
	}

	s.register <- client
	s.logger.Info("WebSocket viewer connected", r.RemoteAddr)

	// Start reading and writing goroutines
	go client.readPump()
	go client.writePump()
}

// ClientCount returns the number of connected viewers
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// runHub manages all connected clients
func (s *Server) runHub() {
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client] = true
			s.mu.Unlock()

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.mu.Unlock()

		case message := <-s.broadcast:
			s.mu.RLock()
			for c := range s.clients {
				select {
				case c.send <- message:
				default:
					// Slow viewer, drop it
					go func(cl *Client) { s.unregister <- cl }(c)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(protocol.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(protocol.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes events to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(protocol.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteTimeout))
			if !ok {
				// Channel closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast sends an event to all connected viewers
func (s *Server) Broadcast(msg interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	select {
	case s.broadcast <- msg:
	case <-ctx.Done():
		if wsEvent, ok := msg.(*protocol.WebSocketEvent); ok {
			s.logger.Warn("Broadcast timeout, channel may be full", wsEvent.Type)
		} else {
			s.logger.Warn("Broadcast timeout, channel may be full")
		}
	}
}
