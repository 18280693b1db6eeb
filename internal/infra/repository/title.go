package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

const titleCachePrefix = "rentchain:title:"

type TitleRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewTitleRepository(db *gorm.DB, mc *memcache.Client) *TitleRepository {
	return &TitleRepository{db: db, mc: mc}
}

// Mint records the title of a property. Minting the same token twice is a StateError.
func (r *TitleRepository) Mint(ctx context.Context, title domain.Title) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Title{}).Where("token_id = ?", title.TokenID).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.StateError{Resource: "title", Reason: "title already minted"}
	}

	model := models.Title{
		TokenID: title.TokenID,
		Owner:   title.Owner,
		URI:     title.URI,
		CDate:   title.MintedAt,
	}
	err = r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.StateError{Resource: "title", Reason: "title already minted"}
	}
	return err
}

// Get reads a title. Titles never change after minting, so hits are served from memcached.
func (r *TitleRepository) Get(ctx context.Context, tokenID uint64) (domain.Title, error) {
	key := titleCachePrefix + strconv.FormatUint(tokenID, 10)

	if r.mc != nil {
		item, err := r.mc.Get(key)
		if err == nil {
			var cached models.Title
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return titleFromModel(cached), nil
			}
		} else if !errors.Is(err, memcache.ErrCacheMiss) {
			slog.DebugContext(ctx, "title cache unavailable", slog.String("error", err.Error()), slog.String("module", "repository"))
		}
	}

	var model models.Title
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Title{}, domain.NotFoundError{Resource: "title"}
		}
		return domain.Title{}, err
	}

	if r.mc != nil {
		value, err := json.Marshal(model)
		if err == nil {
			err = r.mc.Set(&memcache.Item{Key: key, Value: value})
		}
		if err != nil {
			slog.DebugContext(ctx, "title cache write failed", slog.String("error", err.Error()), slog.String("module", "repository"))
		}
	}

	return titleFromModel(model), nil
}
