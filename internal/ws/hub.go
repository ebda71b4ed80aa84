package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

const saveTimeout = 5 * time.Second

// NotificationSaver интерфейс для сохранения уведомлений в БД.
type NotificationSaver interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) error
}

// Hub управляет всеми WebSocket клиентами. Состоянием регистраций владеет
// только горутина Run.
type Hub struct {
	mu                sync.RWMutex
	clients           map[uuid.UUID]map[*Client]struct{}
	register          chan *Client
	unregister        chan *Client
	broadcast         chan message
	notificationSaver NotificationSaver
	done              chan struct{}
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
		done:       make(chan struct{}),
	}
}

// SetNotificationSaver устанавливает сервис для сохранения уведомлений.
func (h *Hub) SetNotificationSaver(saver NotificationSaver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notificationSaver = saver
}

// Run запускает главный цикл хаба и возвращается после отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента. После остановки хаба клиент сразу получает закрытый канал.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToUser отправляет событие пользователю и сохраняет его как уведомление.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	// Контракт WebSocket API: "type" содержит имя события, "data" полезную нагрузку.
	payload := map[string]any{
		"type": event,
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	h.mu.RLock()
	saver := h.notificationSaver
	h.mu.RUnlock()

	if saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := saver.CreateNotification(ctx, userID, event, data)
		cancel()
		if err != nil {
			// доставку по сокету не прерываем
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"event":   event,
			}).Warn("ws: не удалось сохранить уведомление")
		}
	}

	select {
	case h.broadcast <- message{userID: userID, payload: raw}:
		return nil
	case <-h.done:
		return fmt.Errorf("ws: хаб остановлен")
	}
}

// ConnectionCount возвращает число открытых подключений.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
}

// dropLocked удаляет клиента и закрывает его канал ровно один раз.
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	client.closeSend()
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// медленный клиент: writePump увидит закрытый канал и закроет соединение
			logger.Log.WithField("user_id", userID).Warn("ws: буфер клиента переполнен, отключаем")
			h.dropLocked(client)
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.closeSend()
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]struct{})
}
