// Package ledger ведет журнал доменных событий только на добавление.
// Каждый блок получает следующий порядковый индекс и SHA-256 хеш.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Store хранит блоки в порядке добавления. Блоки никогда не меняются и не удаляются.
type Store interface {
	Append(ctx context.Context, block Block) error
	List(ctx context.Context) ([]Block, error)
}

// Options настраивает журнал
type Options struct {
	// Chained добавляет хеш предыдущего блока во вход хеша
	Chained bool
	Now     func() time.Time
}

// Ledger сериализует добавления внутри процесса
type Ledger struct {
	store   Store
	chained bool
	now     func() time.Time
	logger  logrus.FieldLogger

	mu       sync.Mutex
	next     int
	lastHash string
}

// New создает журнал поверх хранилища и продолжает нумерацию существующих блоков
func New(ctx context.Context, store Store, opts Options, logger logrus.FieldLogger) (*Ledger, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	blocks, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки журнала: %w", err)
	}

	l := &Ledger{
		store:   store,
		chained: opts.Chained,
		now:     opts.Now,
		logger:  logger,
		next:    len(blocks),
	}
	if n := len(blocks); n > 0 {
		l.lastHash = blocks[n-1].Hash
	}
	return l, nil
}

// Append добавляет событие и возвращает записанный блок
func (l *Ledger) Append(ctx context.Context, action Action, actorID string, payload Payload) (Block, error) {
	if !action.Valid() {
		return Block{}, fmt.Errorf("неизвестное действие журнала %q", action)
	}
	if payload == nil {
		payload = Payload{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()
	prev := ""
	if l.chained {
		prev = l.lastHash
	}
	block := Block{
		Index:     l.next,
		Timestamp: ts,
		Action:    action,
		ActorID:   actorID,
		Payload:   payload,
		Hash:      computeHash(prev, l.next, ts, action, actorID),
	}

	if err := l.store.Append(ctx, block); err != nil {
		l.logger.WithFields(logrus.Fields{
			"action": action,
			"index":  block.Index,
		}).WithError(err).Error("ошибка записи в журнал")
		return Block{}, fmt.Errorf("ошибка записи блока %d: %w", block.Index, err)
	}

	l.next++
	l.lastHash = block.Hash
	return block, nil
}

// Blocks возвращает все блоки по порядку
func (l *Ledger) Blocks(ctx context.Context) ([]Block, error) {
	return l.store.List(ctx)
}

// ByActor возвращает блоки одного автора по порядку
func (l *Ledger) ByActor(ctx context.Context, actorID string) ([]Block, error) {
	blocks, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []Block{}
	for _, b := range blocks {
		if b.ActorID == actorID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Len возвращает число добавленных блоков
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next
}

// VerifyReport представляет результат проверки журнала
type VerifyReport struct {
	Blocks   int    `json:"blocks"`
	Valid    bool   `json:"valid"`
	BrokenAt int    `json:"broken_at"`
	Reason   string `json:"reason,omitempty"`
}

// Verify пересчитывает индексы и хеши всех блоков и сообщает о первом расхождении.
// В обычном режиме изменение блока k не затрагивает хеш блока k+1.
func (l *Ledger) Verify(ctx context.Context) (VerifyReport, error) {
	blocks, err := l.store.List(ctx)
	if err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Blocks: len(blocks), Valid: true, BrokenAt: -1}
	prev := ""
	for i, b := range blocks {
		if b.Index != i {
			return broken(report, i, fmt.Sprintf("индекс %d вместо %d", b.Index, i)), nil
		}
		if !b.Action.Valid() {
			return broken(report, i, fmt.Sprintf("неизвестное действие %q", b.Action)), nil
		}
		p := ""
		if l.chained {
			p = prev
		}
		if want := computeHash(p, b.Index, b.Timestamp, b.Action, b.ActorID); want != b.Hash {
			return broken(report, i, "хеш не совпадает"), nil
		}
		prev = b.Hash
	}
	return report, nil
}

func broken(r VerifyReport, at int, reason string) VerifyReport {
	r.Valid = false
	r.BrokenAt = at
	r.Reason = reason
	return r
}
