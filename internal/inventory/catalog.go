package inventory

import (
	"context"
	"slices"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

var catalogAuditKinds = map[CatalogKind]audit.Kind{
	CatalogBrand:         audit.KindBrand,
	CatalogAssetType:     audit.KindAssetType,
	CatalogModel:         audit.KindModel,
	CatalogSector:        audit.KindSector,
	CatalogAccessoryType: audit.KindAccessoryType,
	CatalogCustomField:   audit.KindCustomField,
}

// ListCatalog lista os itens de uma tabela auxiliar por nome.
func (s *Service) ListCatalog(ctx context.Context, kind CatalogKind) ([]CatalogItem, error) {
	if !IsValidCatalogKind(kind) {
		return nil, ErrInvalidCatalog
	}
	var out []CatalogItem
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListCatalog(ctx, kind)
		return err
	})
	return out, err
}

// GetCatalogItem busca um item de tabela auxiliar.
func (s *Service) GetCatalogItem(ctx context.Context, kind CatalogKind, id string) (CatalogItem, error) {
	if !IsValidCatalogKind(kind) {
		return CatalogItem{}, ErrInvalidCatalog
	}
	var item CatalogItem
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		item, err = tx.GetCatalogItem(ctx, kind, id)
		return err
	})
	return item, err
}

// CreateCatalogItem cadastra um item auditado como qualquer entidade.
func (s *Service) CreateCatalogItem(ctx context.Context, actor Actor, item CatalogItem) (CatalogItem, error) {
	if !IsValidCatalogKind(item.Kind) {
		return CatalogItem{}, ErrInvalidCatalog
	}
	err := s.mutate(ctx, actor, "create_catalog", func(ctx context.Context, sc *txScope) error {
		item.ID = sc.svc.newID()
		if err := sc.validateCatalogItem(ctx, &item); err != nil {
			return err
		}
		if err := sc.InsertCatalogItem(ctx, item); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, catalogAuditKinds[item.Kind], item.ID, audit.ActionCreate, "", nil, item)
	})
	if err != nil {
		return CatalogItem{}, err
	}
	return item, nil
}

// UpdateCatalogItem altera um item existente.
func (s *Service) UpdateCatalogItem(ctx context.Context, actor Actor, kind CatalogKind, id string, item CatalogItem) (CatalogItem, error) {
	if !IsValidCatalogKind(kind) {
		return CatalogItem{}, ErrInvalidCatalog
	}
	err := s.mutate(ctx, actor, "update_catalog", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetCatalogItem(ctx, kind, id)
		if err != nil {
			return err
		}
		item.ID = current.ID
		item.Kind = kind
		if err := sc.validateCatalogItem(ctx, &item); err != nil {
			return err
		}
		if err := sc.UpdateCatalogItem(ctx, item); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, catalogAuditKinds[kind], id, audit.ActionUpdate, "", current, item)
	})
	if err != nil {
		return CatalogItem{}, err
	}
	return item, nil
}

// DeleteCatalogItem exclui um item que não seja referenciado por outro
// cadastro.
func (s *Service) DeleteCatalogItem(ctx context.Context, actor Actor, kind CatalogKind, id string) error {
	if !IsValidCatalogKind(kind) {
		return ErrInvalidCatalog
	}
	return s.mutate(ctx, actor, "delete_catalog", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetCatalogItem(ctx, kind, id)
		if err != nil {
			return err
		}
		referenced, err := sc.catalogReferenced(ctx, current)
		if err != nil {
			return err
		}
		if referenced {
			return ErrReferenced
		}
		if err := sc.DeleteCatalogItem(ctx, kind, id); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.recordDeletion(ctx, catalogAuditKinds[kind], id, "", current, nil)
	})
}

func (sc *txScope) validateCatalogItem(ctx context.Context, item *CatalogItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrNameRequired
	}
	item.BrandID = blankToNil(item.BrandID)
	item.AssetTypeID = blankToNil(item.AssetTypeID)

	if item.Kind != CatalogModel {
		item.BrandID, item.AssetTypeID = nil, nil
	}
	if item.Kind != CatalogAssetType {
		item.CustomFieldIDs = nil
	}

	if item.BrandID != nil {
		if _, err := sc.GetCatalogItem(ctx, CatalogBrand, *item.BrandID); err != nil {
			return asReference(err)
		}
	}
	if item.AssetTypeID != nil {
		if _, err := sc.GetCatalogItem(ctx, CatalogAssetType, *item.AssetTypeID); err != nil {
			return asReference(err)
		}
	}
	for _, fieldID := range item.CustomFieldIDs {
		if _, err := sc.GetCatalogItem(ctx, CatalogCustomField, fieldID); err != nil {
			return asReference(err)
		}
	}
	return nil
}

func (sc *txScope) catalogReferenced(ctx context.Context, item CatalogItem) (bool, error) {
	switch item.Kind {
	case CatalogModel:
		devices, err := sc.ListDevices(ctx, DeviceFilter{ModelID: item.ID, Limit: 1})
		return len(devices) > 0, err
	case CatalogSector:
		users, err := sc.ListUsers(ctx, UserFilter{SectorID: item.ID, Limit: 1})
		if err != nil || len(users) > 0 {
			return len(users) > 0, err
		}
		devices, err := sc.ListDevices(ctx, DeviceFilter{Limit: NoLimit})
		if err != nil {
			return false, err
		}
		for _, d := range devices {
			if derefString(d.SectorID) == item.ID {
				return true, nil
			}
		}
		return false, nil
	case CatalogBrand, CatalogAssetType, CatalogCustomField:
		parent := CatalogModel
		if item.Kind == CatalogCustomField {
			parent = CatalogAssetType
		}
		items, err := sc.ListCatalog(ctx, parent)
		if err != nil {
			return false, err
		}
		for _, other := range items {
			switch {
			case item.Kind == CatalogBrand && derefString(other.BrandID) == item.ID:
				return true, nil
			case item.Kind == CatalogAssetType && derefString(other.AssetTypeID) == item.ID:
				return true, nil
			case item.Kind == CatalogCustomField && slices.Contains(other.CustomFieldIDs, item.ID):
				return true, nil
			}
		}
	}
	return false, nil
}
