package sse

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/entity"
)

const (
	EventConnected        = "connected"
	EventMetalPriceUpdate = "metal_price_updated"

	_heartbeatInterval = 15 * time.Second
	_outboundBuffer    = 16
)

// ErrHubFull - достигнут предел подписчиков; регистрация отклоняется
// до отправки каких-либо событий.
var ErrHubFull = errors.New("subscriber limit reached")

// Message - кадр, уходящий подписчику
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client - одна живая подписка. Принадлежит хабу от регистрации до
// отключения; вне процесса не сохраняется.
type Client struct {
	ID       uuid.UUID
	outbound chan Message
	done     chan struct{}
	once     sync.Once
}

// Hub - реестр открытых подписок на смену курсов.
// Создаётся при старте процесса, дренируется при остановке. Реестр -
// разделяемое изменяемое состояние: Broadcast может удалять мёртвых
// подписчиков прямо во время итерации, параллельно с Register/Unregister
// из других горутин, поэтому весь доступ под мьютексом.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	maxClients int
	closed     bool
	log        domain.Logger
}

func NewHub(maxClients int, log domain.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		maxClients: maxClients,
		log:        log,
	}
}

// Register - зарегистрировать подписчика и поставить ему в очередь
// подтверждение подключения. Ошибка лимита возвращается до отправки
// каких-либо событий.
func (h *Hub) Register() (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.New("hub is shut down")
	}
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		return nil, ErrHubFull
	}

	client := &Client{
		ID:       uuid.New(),
		outbound: make(chan Message, _outboundBuffer),
		done:     make(chan struct{}),
	}
	h.clients[client] = struct{}{}

	client.outbound <- Message{
		Type: EventConnected,
		Data: map[string]string{"message": "subscribed to metal rate updates"},
	}

	h.log.Debug("SSE client registered", "client_id", client.ID, "total", len(h.clients))
	return client, nil
}

// Unregister - убрать подписчика из реестра и освободить его ресурсы.
// Вызывается транспортом при закрытии соединения; повторные вызовы безопасны.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	remaining := len(h.clients)
	h.mu.Unlock()

	client.once.Do(func() { close(client.done) })

	if ok {
		h.log.Debug("SSE client unregistered", "client_id", client.ID, "total", remaining)
	}
}

// Broadcast - разослать событие смены курса всем подписчикам.
// Никогда не поднимает ошибку к вызывающему: подписчик с переполненным
// буфером или умершим соединением удаляется из реестра, доставка
// остальным продолжается.
func (h *Hub) Broadcast(event *entity.RateUpdateEvent) {
	msg := Message{Type: EventMetalPriceUpdate, Data: event}

	h.mu.Lock()
	var dead []*Client
	for c := range h.clients {
		select {
		case <-c.done:
			dead = append(dead, c)
		default:
			select {
			case c.outbound <- msg:
			default:
				h.log.Warn("dropping slow SSE client", "client_id", c.ID)
				dead = append(dead, c)
			}
		}
	}
	for _, c := range dead {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range dead {
		c.once.Do(func() { close(c.done) })
	}
}

// Len - текущее число подписчиков
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown - дренировать реестр при остановке процесса
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, c := range clients {
		c.once.Do(func() { close(c.done) })
	}
}

// ServeHTTP - отдать поток событий подписчику до закрытия соединения
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	heartbeat := time.NewTicker(_heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.outbound:
			payload, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("failed to marshal SSE message", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
