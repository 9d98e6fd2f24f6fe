package memory

import (
	"context"
	"fmt"
	"sync"

	"interview-analyzer/internal/ledger"
)

// LedgerStore хранит блоки журнала в памяти процесса
type LedgerStore struct {
	mu     sync.RWMutex
	blocks []ledger.Block
}

var _ ledger.Store = (*LedgerStore)(nil)

// NewLedgerStore создает пустое хранилище журнала
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

func (s *LedgerStore) Append(ctx context.Context, block ledger.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block.Index != len(s.blocks) {
		return fmt.Errorf("блок %d при длине журнала %d", block.Index, len(s.blocks))
	}
	s.blocks = append(s.blocks, block)
	return nil
}

func (s *LedgerStore) List(ctx context.Context) ([]ledger.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Block, len(s.blocks))
	copy(out, s.blocks)
	return out, nil
}
