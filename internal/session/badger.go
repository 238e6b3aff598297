package session

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerBackend stores the token in a BadgerDB directory.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadgerBackend opens (or creates) a Badger database at dir.
func OpenBadgerBackend(dir string) (*BadgerBackend, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("session badger: open %s: %w", dir, err)
	}
	return &BadgerBackend{db: db}, nil
}

// NewBadgerBackend wraps an already open database.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (b *BadgerBackend) Load() (string, error) {
	var token string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(TokenKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoToken
		}
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = string(val)
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (b *BadgerBackend) Save(token string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(TokenKey), []byte(token)); err != nil {
			return fmt.Errorf("set token: %w", err)
		}
		return nil
	})
}

func (b *BadgerBackend) Delete() error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(TokenKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete token: %w", err)
		}
		return nil
	})
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
