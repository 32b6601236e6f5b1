package storage

import (
	"context"

	"github.com/rs/zerolog"

	"elretiro/console/internal/config"
)

type Assets struct {
	Logo      string
	LoginHero string
	HomeHero  string
}

type presigner interface {
	PresignedURL(ctx context.Context, object string) (string, error)
}

// AssetResolver yields image URLs for the pages, from storage when configured
// and from the fallback URLs otherwise.
type AssetResolver struct {
	store presigner
	cfg   config.AssetsConfig
	log   zerolog.Logger
}

func NewAssetResolver(store *ObjectStore, cfg config.AssetsConfig, log zerolog.Logger) *AssetResolver {
	r := &AssetResolver{cfg: cfg, log: log}
	if store != nil {
		r.store = store
	}
	return r
}

func (r *AssetResolver) Resolve(ctx context.Context) Assets {
	return Assets{
		Logo:      r.url(ctx, r.cfg.LogoObject, r.cfg.LogoURL),
		LoginHero: r.url(ctx, r.cfg.LoginHeroObject, r.cfg.LoginHeroURL),
		HomeHero:  r.url(ctx, r.cfg.HomeHeroObject, r.cfg.HomeHeroURL),
	}
}

func (r *AssetResolver) url(ctx context.Context, object, fallback string) string {
	if r.store == nil || object == "" {
		return fallback
	}
	u, err := r.store.PresignedURL(ctx, object)
	if err != nil {
		r.log.Warn().Err(err).Str("object", object).Msg("presign asset failed")
		return fallback
	}
	return u
}
