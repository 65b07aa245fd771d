package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	redisclient "github.com/sortielabs/sortie/backend/internal/infrastructure/clients/redis"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]map[chan *entities.EventChange]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]map[chan *entities.EventChange]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes a change to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, change *entities.EventChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}

	return nil
}

// Subscribe subscribes to changes on a channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EventChange, error) {
	b.mu.Lock()

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}

	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.EventChange]struct{})
	}

	changeChan := make(chan *entities.EventChange, 100)
	b.subscribers[channel][changeChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, changeChan)
	}()

	return changeChan, nil
}

func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var change entities.EventChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Printf("Failed to unmarshal change from channel %s: %v", channel, err)
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers[channel] {
				select {
				case subscriber <- &change:
				default:
					// Subscriber channel full, skip
					log.Printf("Subscriber channel full for %s, skipping change %s", channel, change.ID)
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, subscriber chan *entities.EventChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[channel]; ok {
		delete(subs, subscriber)
		close(subscriber)

		if len(subs) == 0 {
			delete(b.subscribers, channel)
			if pubsub, ok := b.subscriptions[channel]; ok {
				if err := pubsub.Close(); err != nil {
					log.Printf("Failed to close subscription for %s: %v", channel, err)
				}
				delete(b.subscriptions, channel)
			}
		}
	}
}

// Close closes the bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for channel, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			log.Printf("Failed to close subscription for %s: %v", channel, err)
		}
	}
	b.subscriptions = make(map[string]*redis.PubSub)

	for _, subs := range b.subscribers {
		for subscriber := range subs {
			close(subscriber)
		}
	}
	b.subscribers = make(map[string]map[chan *entities.EventChange]struct{})

	return nil
}
