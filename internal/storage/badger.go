package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerProvider stores values in an embedded BadgerDB.
type BadgerProvider struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB with opts.
func OpenBadger(opts badger.Options) (*BadgerProvider, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerProvider(db), nil
}

// NewBadgerProvider wraps an already opened database. Close closes db.
func NewBadgerProvider(db *badger.DB) *BadgerProvider {
	return &BadgerProvider{db: db}
}

func (p *BadgerProvider) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if p.db.IsClosed() {
		return "", false, ErrClosed
	}

	var value string
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *BadgerProvider) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.db.IsClosed() {
		return ErrClosed
	}

	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *BadgerProvider) Close() error {
	if p.db.IsClosed() {
		return nil
	}
	return p.db.Close()
}
