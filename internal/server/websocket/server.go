package websocket

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/brianly1003/observe/internal/domain"
	"github.com/brianly1003/observe/internal/domain/events"
	"github.com/brianly1003/observe/internal/publisher"
	"github.com/brianly1003/observe/internal/server/common"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Source is the observed object clients subscribe to.
type Source interface {
	WillChange() *publisher.Publisher
	PublisherFor(id string) (*publisher.Publisher, error)
	SubscriberCount() int
}

// command is a message sent by a client.
type command struct {
	Command string `json:"command"`
}

type entry struct {
	client     *Client
	subscriber *ClientSubscriber
}

// Server upgrades HTTP requests to WebSocket connections and subscribes each
// one to the source. It is an http.Handler; the HTTP server mounts it.
type Server struct {
	source            Source
	heartbeatInterval time.Duration

	mu      sync.RWMutex
	clients map[string]entry

	startOnce     sync.Once
	stopOnce      sync.Once
	heartbeatDone chan struct{}
	heartbeatSeq  atomic.Int64
	startTime     time.Time
}

// NewServer creates a new WebSocket server for source.
func NewServer(source Source) *Server {
	return &Server{
		source:            source,
		heartbeatInterval: common.HeartbeatInterval,
		clients:           make(map[string]entry),
		heartbeatDone:     make(chan struct{}),
		startTime:         time.Now(),
	}
}

// SetHeartbeatInterval overrides the heartbeat interval. Call before Start.
func (s *Server) SetHeartbeatInterval(d time.Duration) {
	s.heartbeatInterval = d
}

// Start starts the heartbeat loop.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		go s.heartbeatLoop()
	})
}

// Stop closes every client and stops the heartbeat loop.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("WebSocket server stopping")
		close(s.heartbeatDone)

		s.mu.Lock()
		clients := s.clients
		s.clients = make(map[string]entry)
		s.mu.Unlock()

		for _, e := range clients {
			e.subscriber.Cancel()
			e.client.Close()
		}
	})
}

// ServeHTTP handles WebSocket upgrade requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("property")

	pub := s.source.WillChange()
	if scope != "" {
		p, err := s.source.PublisherFor(scope)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		pub = p
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(conn, scope, s.handleCommand, s.removeClient)
	subscriber := NewClientSubscriber(client)

	s.mu.Lock()
	s.clients[client.ID()] = entry{client: client, subscriber: subscriber}
	s.mu.Unlock()

	if data, err := events.NewSubscribedEvent(client.ID(), scope).ToJSON(); err == nil {
		client.Send(data)
	}
	pub.Subscribe(subscriber)

	log.Info().
		Str("client_id", client.ID()).
		Str("scope", scope).
		Str("remote_addr", conn.RemoteAddr().String()).
		Msg("client connected")

	client.Start()
}

// handleCommand processes client messages. The only command is "cancel",
// which ends the client's subscription while keeping the connection open.
func (s *Server) handleCommand(client *Client, message []byte) {
	var cmd command
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.sendError(client, domain.ErrCodeInvalidPayload, "message is not valid JSON")
		return
	}

	switch cmd.Command {
	case "cancel":
		s.mu.RLock()
		e, ok := s.clients[client.ID()]
		s.mu.RUnlock()
		if ok {
			e.subscriber.Cancel()
			log.Debug().Str("client_id", client.ID()).Msg("client cancelled subscription")
		}
	default:
		s.sendError(client, domain.ErrCodeInvalidPayload, "unknown command: "+cmd.Command)
	}
}

func (s *Server) sendError(client *Client, code, msg string) {
	data, err := events.NewErrorEvent(code, msg).ToJSON()
	if err != nil {
		return
	}
	client.Send(data)
}

// removeClient cancels the client's subscription and forgets it.
func (s *Server) removeClient(client *Client) {
	s.mu.Lock()
	e, ok := s.clients[client.ID()]
	delete(s.clients, client.ID())
	s.mu.Unlock()

	if ok {
		e.subscriber.Cancel()
	}
	log.Info().Str("client_id", client.ID()).Msg("client disconnected")
}

// Broadcast sends a message to all connected clients.
func (s *Server) Broadcast(message []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.clients {
		e.client.Send(message)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// GetClient returns a client by ID.
func (s *Server) GetClient(id string) *Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients[id].client
}

func (s *Server) heartbeatLoop() {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	log.Debug().Dur("interval", s.heartbeatInterval).Msg("heartbeat loop started")

	for {
		select {
		case <-s.heartbeatDone:
			log.Debug().Msg("heartbeat loop stopped")
			return

		case <-ticker.C:
			s.broadcastHeartbeat()
		}
	}
}

func (s *Server) broadcastHeartbeat() {
	clientCount := s.ClientCount()
	if clientCount == 0 {
		return
	}

	seq := s.heartbeatSeq.Add(1)
	uptime := int64(time.Since(s.startTime).Seconds())
	data, err := events.NewHeartbeatEvent(seq, s.source.SubscriberCount(), uptime).ToJSON()
	if err != nil {
		log.Warn().Err(err).Msg("failed to serialize heartbeat")
		return
	}

	s.Broadcast(data)
	log.Trace().Int64("seq", seq).Int("clients", clientCount).Msg("heartbeat sent")
}
