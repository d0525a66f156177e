// Package api serves the script console over WebSocket. Connected clients
// can evaluate expressions against the embedded script engine and receive
// every diagnostic the engine reports.
package api

import (
	"context"
	"net/http"
	"runtime"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"mapstudio/scripting"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The console binds to localhost; accept any origin.
		return true
	},
}

// Server is the WebSocket console hub.
type Server struct {
	script *scripting.Manager
	logger zerolog.Logger

	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan WSMessage
	done       chan struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage

	mu     sync.Mutex
	closed bool
}

// trySend queues a message unless the client is gone or backed up.
func (c *wsClient) trySend(msg WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *wsClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// NewServer creates a console server for the given script manager.
func NewServer(script *scripting.Manager, logger zerolog.Logger) *Server {
	return &Server{
		script:     script,
		logger:     logger.With().Str("component", "console").Logger(),
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan WSMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run drives the hub until the context is cancelled. Start it once, in its
// own goroutine.
func (s *Server) Run(ctx context.Context) {
	diags := s.script.Subscribe()
	defer s.script.Unsubscribe(diags)

	for {
		select {
		case <-ctx.Done():
			// Unblock connection goroutines before abandoning the hub
			// channels, or their register/unregister sends hang forever.
			close(s.done)
			for client := range s.clients {
				client.shutdown()
				client.conn.Close()
			}
			return
		case client := <-s.register:
			s.clients[client] = true
			client.trySend(WSMessage{Type: MessageTypeAck, Data: "connected to script console"})
		case client := <-s.unregister:
			if s.clients[client] {
				delete(s.clients, client)
				client.shutdown()
			}
		case d := <-diags:
			s.fanOut(WSMessage{Type: MessageTypeDiagnostic, Data: d})
		case msg := <-s.broadcast:
			s.fanOut(msg)
		}
	}
}

func (s *Server) fanOut(msg WSMessage) {
	for client := range s.clients {
		client.trySend(msg)
	}
}

// Handler returns the HTTP handler upgrading console connections.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleWebSocket)
}

// ListenAndServe serves the console on the given address until the context
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info().Str("addr", addr).Msg("script console listening")
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, send: make(chan WSMessage, 64)}
	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writeLoop()
	go s.readLoop(client)
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) readLoop(client *wsClient) {
	defer func() {
		select {
		case s.unregister <- client:
		case <-s.done:
		}
		client.conn.Close()
	}()

	for {
		var msg WSMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleMessage(client, msg)
	}
}

func (s *Server) handleMessage(client *wsClient, msg WSMessage) {
	switch msg.Type {
	case MessageTypeEval:
		src := evalSource(msg.Data)
		if src == "" {
			client.trySend(WSMessage{Type: MessageTypeError, ID: msg.ID, Data: "empty eval source"})
			return
		}
		// The runtime lives on the event-dispatch goroutine; hand the
		// evaluation over and reply from there.
		s.script.Submit(func() {
			result := EvalResult{}
			val, err := s.script.Evaluate("console", src)
			if err != nil {
				result.Error = err.Error()
			} else if val != nil {
				result.Value = val.String()
			}
			client.trySend(WSMessage{Type: MessageTypeEvalResult, ID: msg.ID, Data: result})
		})
	case MessageTypeStatus:
		client.trySend(WSMessage{Type: MessageTypeStatus, ID: msg.ID, Data: s.statusReport()})
	default:
		client.trySend(WSMessage{Type: MessageTypeError, ID: msg.ID, Data: "unknown message type"})
	}
}

func evalSource(data any) string {
	switch v := data.(type) {
	case string:
		return v
	case map[string]any:
		if src, ok := v["source"].(string); ok {
			return src
		}
	}
	return ""
}

func (s *Server) statusReport() StatusReport {
	report := StatusReport{
		Goroutines:  runtime.NumGoroutine(),
		Diagnostics: len(s.script.Diagnostics()),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report.MemUsedMB = float64(vm.Used) / (1024 * 1024)
		report.MemPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		report.CPUPercent = percents[0]
	}
	return report
}
