package readstore

import (
	"context"

	"booking-engine/internal/domain/provider"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	selectProviderByIDSQL   = `SELECT id, slug, name, timezone FROM providers WHERE id = $1`
	selectProviderBySlugSQL = `SELECT id, slug, name, timezone FROM providers WHERE slug = $1`
)

type ProviderReadStore struct {
	db db.DBTX
}

func NewProviderReadStore(db db.DBTX) *ProviderReadStore {
	return &ProviderReadStore{db: db}
}

func (r *ProviderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	return r.scanOne(ctx, selectProviderByIDSQL, id)
}

func (r *ProviderReadStore) FindBySlug(ctx context.Context, slug string) (*provider.Provider, error) {
	return r.scanOne(ctx, selectProviderBySlugSQL, slug)
}

func (r *ProviderReadStore) scanOne(ctx context.Context, sql string, arg any) (*provider.Provider, error) {
	var p provider.Provider
	err := r.db.QueryRow(ctx, sql, arg).Scan(&p.ID, &p.Slug, &p.Name, &p.Timezone)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("provider not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find provider", err)
	}
	return &p, nil
}
