package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

const (
	// SubmissionChannel é o canal pub/sub que alimenta o stream dos admins.
	SubmissionChannel = "submissions:events"
	// NotifyQueue é a fila consumida pelo worker de notificações.
	NotifyQueue = "notify:queue"

	blockedTTL = 5 * time.Minute
)

type Client struct {
	client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

func blockedKey(cpf string) string {
	return fmt.Sprintf("cpf:blocked:%s", cpf)
}

// GetBlocked consulta o cache da flag de bloqueio. O segundo retorno indica
// se havia valor no cache.
func (c *Client) GetBlocked(ctx context.Context, cpf string) (bool, bool, error) {
	val, err := c.client.Get(ctx, blockedKey(cpf)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

// SetBlocked grava a flag de bloqueio no cache com TTL curto.
func (c *Client) SetBlocked(ctx context.Context, cpf string, blocked bool) error {
	val := "0"
	if blocked {
		val = "1"
	}
	return c.client.Set(ctx, blockedKey(cpf), val, blockedTTL).Err()
}

// InvalidateBlocked remove a entrada do cache após qualquer escrita na lista
// de autorização.
func (c *Client) InvalidateBlocked(ctx context.Context, cpf string) error {
	return c.client.Del(ctx, blockedKey(cpf)).Err()
}

// PublishSubmissionEvent publica um evento no canal do stream administrativo.
func (c *Client) PublishSubmissionEvent(ctx context.Context, event models.SubmissionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal submission event: %w", err)
	}
	return c.client.Publish(ctx, SubmissionChannel, payload).Err()
}

// SubscribeSubmissionEvents assina o canal do stream e entrega os eventos
// decodificados em um canal Go. A função de cancelamento encerra a assinatura
// e fecha o canal.
func (c *Client) SubscribeSubmissionEvents(ctx context.Context) (<-chan models.SubmissionEvent, func(), error) {
	sub := c.client.Subscribe(ctx, SubmissionChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", SubmissionChannel, err)
	}

	out := make(chan models.SubmissionEvent)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event models.SubmissionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}

// EnqueueNotify empurra um evento para a fila do worker (LPUSH; o worker
// consome com BRPOP).
func (c *Client) EnqueueNotify(ctx context.Context, event models.NotifyEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notify event: %w", err)
	}
	return c.client.LPush(ctx, NotifyQueue, payload).Err()
}

// DequeueNotify bloqueia por até timeout esperando um item da fila de
// notificações. Devolve nil quando o tempo esgota sem itens.
func (c *Client) DequeueNotify(ctx context.Context, timeout time.Duration) (*models.NotifyEvent, error) {
	result, err := c.client.BRPop(ctx, timeout, NotifyQueue).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// result[0] é a chave, result[1] é o payload.
	var event models.NotifyEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return nil, fmt.Errorf("invalid notify payload: %w", err)
	}
	return &event, nil
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.client.Close()
}
