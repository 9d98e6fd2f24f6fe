// Package redis хранит блоки журнала в списке Redis.
// Ключ "{key}" содержит блоки в JSON в порядке индексов.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"interview-analyzer/internal/ledger"
)

// ErrIndexConflict означает, что длина списка не совпала с индексом блока
var ErrIndexConflict = errors.New("индекс блока не совпадает с длиной журнала")

// appendScript добавляет блок только если длина списка равна его индексу.
// Возвращает -1 при расхождении, иначе новую длину.
var appendScript = goredis.NewScript(`
if redis.call('LLEN', KEYS[1]) ~= tonumber(ARGV[1]) then
	return -1
end
return redis.call('RPUSH', KEYS[1], ARGV[2])
`)

// LedgerStore реализует ledger.Store поверх списка Redis
type LedgerStore struct {
	client goredis.UniversalClient
	key    string
}

var _ ledger.Store = (*LedgerStore)(nil)

// Config настраивает хранилище журнала в Redis
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string // по умолчанию "interview:ledger"
}

// New подключается к Redis и проверяет соединение через PING
func New(ctx context.Context, cfg Config) (*LedgerStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка подключения к redis %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient оборачивает готовый клиент (Client, ClusterClient или Ring)
func NewWithClient(client goredis.UniversalClient, key string) *LedgerStore {
	if key == "" {
		key = "interview:ledger"
	}
	return &LedgerStore{client: client, key: key}
}

// Append атомарно проверяет длину списка и добавляет блок.
// При чужой записи список не меняется.
func (s *LedgerStore) Append(ctx context.Context, block ledger.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("ошибка сериализации блока %d: %w", block.Index, err)
	}
	n, err := appendScript.Run(ctx, s.client, []string{s.key}, block.Index, string(data)).Int64()
	if err != nil {
		return fmt.Errorf("ошибка записи блока %d: %w", block.Index, err)
	}
	if n < 0 {
		return fmt.Errorf("блок %d в %s: %w", block.Index, s.key, ErrIndexConflict)
	}
	return nil
}

func (s *LedgerStore) List(ctx context.Context) ([]ledger.Block, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала %s: %w", s.key, err)
	}
	blocks := make([]ledger.Block, 0, len(raw))
	for i, item := range raw {
		var b ledger.Block
		if err := json.Unmarshal([]byte(item), &b); err != nil {
			return nil, fmt.Errorf("ошибка разбора блока на позиции %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Close закрывает клиент Redis
func (s *LedgerStore) Close() error {
	return s.client.Close()
}
