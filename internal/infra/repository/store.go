package repository

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/totegamma/rentchain/internal/usecase"
)

// Store owns the database handle and builds repositories on it.
type Store struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewStore creates a Store. mc may be nil to disable the title cache.
func NewStore(db *gorm.DB, mc *memcache.Client) *Store {
	return &Store{db: db, mc: mc}
}

func (s *Store) Stores() usecase.Stores {
	return bind(s.db, s.mc)
}

// Transact runs fn in a single database transaction.
// Stores passed to fn never touch the cache, so nothing uncommitted leaks out of it.
func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context, tx usecase.Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, bind(tx, nil))
	})
}

func bind(db *gorm.DB, mc *memcache.Client) usecase.Stores {
	return usecase.Stores{
		Users:      NewUserRepository(db),
		Properties: NewPropertyRepository(db),
		Titles:     NewTitleRepository(db, mc),
		Escrow:     NewEscrowRepository(db),
		Agreements: NewAgreementRepository(db),
		Transfers:  NewTransferRepository(db),
		Events:     NewEventRepository(db),
	}
}
