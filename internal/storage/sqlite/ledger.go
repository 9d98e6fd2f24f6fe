// Package sqlite хранит блоки журнала в SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"interview-analyzer/internal/ledger"
)

// LedgerStore реализует ledger.Store поверх SQLite
type LedgerStore struct {
	db *sql.DB
}

var _ ledger.Store = (*LedgerStore)(nil)

// New открывает или создает базу журнала
func New(dbPath string) (*LedgerStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка включения WAL: %w", err)
	}

	store := &LedgerStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации схемы: %w", err)
	}

	return store, nil
}

func (s *LedgerStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ledger_blocks (
			idx INTEGER PRIMARY KEY,
			timestamp TEXT NOT NULL,
			action TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			hash TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_blocks_actor ON ledger_blocks(actor_id)`,
		// Записанные блоки не меняются
		`CREATE TRIGGER IF NOT EXISTS ledger_blocks_no_update
			BEFORE UPDATE ON ledger_blocks
			BEGIN SELECT RAISE(ABORT, 'блоки журнала нельзя менять'); END`,
		`CREATE TRIGGER IF NOT EXISTS ledger_blocks_no_delete
			BEFORE DELETE ON ledger_blocks
			BEGIN SELECT RAISE(ABORT, 'блоки журнала нельзя менять'); END`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ошибка выполнения схемы: %w", err)
		}
	}
	return nil
}

func (s *LedgerStore) Append(ctx context.Context, block ledger.Block) error {
	payload, err := json.Marshal(block.Payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных блока: %w", err)
	}

	query := `INSERT INTO ledger_blocks (idx, timestamp, action, actor_id, payload, hash)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		block.Index,
		block.Timestamp.UTC().Format(time.RFC3339Nano),
		string(block.Action),
		block.ActorID,
		string(payload),
		block.Hash,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи блока %d: %w", block.Index, err)
	}
	return nil
}

func (s *LedgerStore) List(ctx context.Context) ([]ledger.Block, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, timestamp, action, actor_id, payload, hash FROM ledger_blocks ORDER BY idx ASC`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения блоков: %w", err)
	}
	defer rows.Close()

	blocks := []ledger.Block{}
	for rows.Next() {
		var (
			b       ledger.Block
			ts      string
			action  string
			payload string
		)
		if err := rows.Scan(&b.Index, &ts, &action, &b.ActorID, &payload, &b.Hash); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки блока: %w", err)
		}
		b.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора времени блока %d: %w", b.Index, err)
		}
		b.Action = ledger.Action(action)
		if err := json.Unmarshal([]byte(payload), &b.Payload); err != nil {
			return nil, fmt.Errorf("ошибка разбора данных блока %d: %w", b.Index, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Close закрывает базу
func (s *LedgerStore) Close() error {
	return s.db.Close()
}
