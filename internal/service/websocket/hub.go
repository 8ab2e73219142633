package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"fooddetect/internal/logger"
	"fooddetect/internal/models"

	"github.com/gorilla/websocket"
)

// broadcastBuffer bounds how many events may wait for the hub loop.
const broadcastBuffer = 32

// writeWait limits how long a single client write may block the hub.
const writeWait = 5 * time.Second

// DetectionEvent is pushed to every live viewer after a successful detection.
type DetectionEvent struct {
	Filename      string                  `json:"filename"`
	DetectedItems []models.AggregatedItem `json:"detectedItems"`
	Timestamp     time.Time               `json:"timestamp"`
}

// HubService fans out detection events to connected websocket clients.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stopped    chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until done is closed, then
// closes every remaining client. Register and Unregister stop blocking
// once Run has returned.
func (h *HubService) Run(done <-chan struct{}) {
	defer h.stopOnce.Do(func() { close(h.stopped) })
	for {
		select {
		case <-done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a viewer. After shutdown the connection is closed instead.
func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.stopped:
		client.Close()
	}
}

// Unregister removes and closes a viewer.
func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Broadcast queues an event for all viewers. It never blocks; when the
// queue is full the event is dropped and false is returned.
func (h *HubService) Broadcast(event DetectionEvent) bool {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding detection event: %v", err)
		return false
	}

	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warning("Live feed queue full, dropping event for %s", event.Filename)
		return false
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
