package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	publishTimeout = 5 * time.Second
	reconnectDelay = 5 * time.Second
)

// RabbitMQPublisher публикует JSON-сообщения в durable topic exchange.
type RabbitMQPublisher struct {
	url          string
	exchangeName string

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	done chan struct{}
	once sync.Once
}

func NewRabbitMQPublisher(url, exchangeName string) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{
		url:          url,
		exchangeName: exchangeName,
		done:         make(chan struct{}),
	}

	conn, channel, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn = conn
	p.channel = channel

	goroutine.SafeGo(p.handleReconnect)

	logger.Log.WithField("exchange", exchangeName).Info("messaging: RabbitMQ подключён")
	return p, nil
}

func (p *RabbitMQPublisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, nil, fmt.Errorf("messaging: не удалось подключиться к RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("messaging: не удалось открыть канал: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("messaging: не удалось объявить exchange: %w", err)
	}
	return conn, channel, nil
}

// Publish отправляет payload с ключом маршрутизации. Повторов нет: вызывающий решает, что делать с ошибкой.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("messaging: не удалось сериализовать сообщение: %w", err)
	}

	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()
	if channel == nil || channel.IsClosed() {
		return fmt.Errorf("messaging: канал RabbitMQ закрыт")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    uuid.NewString(),
		},
	)
	if err != nil {
		return fmt.Errorf("messaging: не удалось опубликовать сообщение: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"body_size":   len(body),
	}).Debug("messaging: сообщение опубликовано")
	return nil
}

// handleReconnect переподключается после обрыва соединения, пока издатель не закрыт.
func (p *RabbitMQPublisher) handleReconnect() {
	for {
		p.mu.RLock()
		closeChan := p.conn.NotifyClose(make(chan *amqp.Error, 1))
		p.mu.RUnlock()

		select {
		case <-p.done:
			return
		case closeErr := <-closeChan:
			if closeErr == nil {
				// соединение закрыто штатно
				return
			}
			logger.Log.WithError(closeErr).Warn("messaging: соединение с RabbitMQ потеряно, переподключаемся")
		}

		for {
			select {
			case <-p.done:
				return
			case <-time.After(reconnectDelay):
			}

			conn, channel, err := p.dial()
			if err != nil {
				logger.Log.WithError(err).Warn("messaging: переподключение не удалось")
				continue
			}

			p.mu.Lock()
			p.conn = conn
			p.channel = channel
			p.mu.Unlock()
			logger.Log.Info("messaging: соединение с RabbitMQ восстановлено")
			break
		}
	}
}

func (p *RabbitMQPublisher) Close() error {
	p.once.Do(func() { close(p.done) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logger.Log.WithError(err).Warn("messaging: не удалось закрыть канал")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *RabbitMQPublisher) HealthCheck() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("messaging: соединение с RabbitMQ закрыто")
	}
	if p.channel == nil || p.channel.IsClosed() {
		return fmt.Errorf("messaging: канал RabbitMQ закрыт")
	}
	return nil
}

// NoopPublisher используется, когда брокер не настроен.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	logger.Log.WithField("routing_key", routingKey).Debug("messaging: брокер не настроен, событие пропущено")
	return nil
}
