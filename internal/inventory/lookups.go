package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// Cache é o subconjunto do cliente redis usado para guardar as tabelas de
// resolução do histórico.
type Cache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const lookupsCacheKey = "inventory:lookups"

// Lookups devolve os índices id -> nome do estado atual. Usa o cache quando
// disponível; falhas do cache apenas degradam para leitura direta.
func (s *Service) Lookups(ctx context.Context) (audit.Lookups, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, lookupsCacheKey).Bytes(); err == nil {
			var cached audit.Lookups
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("inventário: cache de nomes indisponível")
		}
	}

	var lk audit.Lookups
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		lk, err = buildLookups(ctx, tx)
		return err
	})
	if err != nil {
		return audit.Lookups{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(lk); err == nil {
			if err := s.cache.Set(ctx, lookupsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("inventário: falha ao gravar cache de nomes")
			}
		}
	}
	return lk, nil
}

func (s *Service) invalidateLookups(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, lookupsCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("inventário: falha ao invalidar cache de nomes")
	}
}

func buildLookups(ctx context.Context, tx Tx) (audit.Lookups, error) {
	lk := audit.Lookups{
		Sectors:        map[string]string{},
		Users:          map[string]string{},
		SimCards:       map[string]string{},
		Devices:        map[string]string{},
		Models:         map[string]string{},
		Brands:         map[string]string{},
		AssetTypes:     map[string]string{},
		AccessoryTypes: map[string]string{},
		CustomFields:   map[string]string{},
	}

	catalogs := map[CatalogKind]map[string]string{
		CatalogSector:        lk.Sectors,
		CatalogModel:         lk.Models,
		CatalogBrand:         lk.Brands,
		CatalogAssetType:     lk.AssetTypes,
		CatalogAccessoryType: lk.AccessoryTypes,
		CatalogCustomField:   lk.CustomFields,
	}
	for kind, target := range catalogs {
		items, err := tx.ListCatalog(ctx, kind)
		if err != nil {
			return lk, err
		}
		for _, item := range items {
			target[item.ID] = item.Name
		}
	}

	users, err := tx.ListUsers(ctx, UserFilter{Limit: NoLimit})
	if err != nil {
		return lk, err
	}
	for _, u := range users {
		lk.Users[u.ID] = u.FullName
	}

	sims, err := tx.ListSims(ctx, SimFilter{Limit: NoLimit})
	if err != nil {
		return lk, err
	}
	for _, sim := range sims {
		lk.SimCards[sim.ID] = sim.PhoneNumber
	}

	devices, err := tx.ListDevices(ctx, DeviceFilter{Limit: NoLimit})
	if err != nil {
		return lk, err
	}
	for _, d := range devices {
		lk.Devices[d.ID] = describeDevice(d, lk.Models[d.ModelID])
	}
	return lk, nil
}
