package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/domain"
)

// UserRepository is the user directory.
type UserRepository interface {
	Upsert(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, address string) (domain.User, error)
}

// PropertyRepository is the property registry. It is the only writer of property status.
type PropertyRepository interface {
	Create(ctx context.Context, property domain.Property) (domain.Property, error)
	Get(ctx context.Context, id uint64) (domain.Property, error)
	GetForUpdate(ctx context.Context, id uint64) (domain.Property, error)
	MarkRented(ctx context.Context, id uint64, now time.Time) (domain.Property, error)
	MarkAvailable(ctx context.Context, id uint64, now time.Time) (domain.Property, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Property, error)
	List(ctx context.Context, afterID uint64, limit int) ([]domain.Property, error)
}

// TitleRepository holds minted titles. A title is minted at most once.
type TitleRepository interface {
	Mint(ctx context.Context, title domain.Title) error
	Get(ctx context.Context, tokenID uint64) (domain.Title, error)
}

// EscrowRepository is the escrow ledger. It is the only writer of escrow balances.
type EscrowRepository interface {
	Open(ctx context.Context, agreementID uint64, now time.Time) error
	Credit(ctx context.Context, agreementID uint64, from string, amount *big.Int, now time.Time) (domain.EscrowRecord, error)
	Release(ctx context.Context, agreementID uint64, recipient string, amount *big.Int, now time.Time) (domain.EscrowRecord, error)
	BalanceOf(ctx context.Context, agreementID uint64) (*big.Int, error)
}

// AgreementRepository is the agreement directory.
type AgreementRepository interface {
	Create(ctx context.Context, agreement domain.Agreement) (domain.Agreement, error)
	Get(ctx context.Context, id uint64) (domain.Agreement, error)
	GetForUpdate(ctx context.Context, id uint64) (domain.Agreement, error)
	GetByProperty(ctx context.Context, propertyID uint64) (domain.Agreement, error)
	ListByProperty(ctx context.Context, propertyID uint64) ([]domain.Agreement, error)
	Update(ctx context.Context, agreement domain.Agreement) error
}

type TransferRepository interface {
	Record(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error)
	ListByAccount(ctx context.Context, address string, limit int) ([]domain.Transfer, error)
}

// EventRepository is the outbox of committed domain events.
type EventRepository interface {
	Append(ctx context.Context, event domain.Event, now time.Time) (rentchain.Event, error)
	ListSince(ctx context.Context, afterID uint64, limit int) ([]rentchain.Event, error)
}

// Stores groups the repositories bound to one database handle.
type Stores struct {
	Users      UserRepository
	Properties PropertyRepository
	Titles     TitleRepository
	Escrow     EscrowRepository
	Agreements AgreementRepository
	Transfers  TransferRepository
	Events     EventRepository
}

// Transactor hands out stores, either plain or bound to a transaction.
// Returning an error from fn rolls back everything fn wrote.
type Transactor interface {
	Stores() Stores
	Transact(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

// EventPublisher fans committed events out to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event rentchain.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, rentchain.Event) error { return nil }

// NopPublisher drops events. Used when no redis is configured.
var NopPublisher EventPublisher = nopPublisher{}
