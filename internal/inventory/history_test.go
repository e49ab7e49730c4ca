package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

type stubCache struct {
	store map[string]string
	gets  int
	sets  int
	dels  int
	fail  bool
}

func (s *stubCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.sets++
	if s.store == nil {
		s.store = make(map[string]string)
	}
	switch v := value.(type) {
	case []byte:
		s.store[key] = string(v)
	default:
		s.store[key] = fmt.Sprint(v)
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubCache) Get(ctx context.Context, key string) *redis.StringCmd {
	s.gets++
	cmd := redis.NewStringCmd(ctx)
	if s.fail {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.dels++
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func TestHistoryViewResolvesNames(t *testing.T) {
	f := newFixture(t)
	d := f.device(t, "SN-400", "PAT-400")
	u := f.user(t, "Larissa Mendes", "12123234355")
	if _, err := f.svc.Checkout(f.ctx, admin, CheckoutRequest{Kind: AssetDevice, AssetID: d.ID, UserID: u.ID}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := f.svc.Checkin(f.ctx, admin, CheckinRequest{Kind: AssetDevice, AssetID: d.ID}); err != nil {
		t.Fatalf("checkin: %v", err)
	}

	items, err := f.svc.HistoryView(f.ctx, audit.Filter{AssetID: d.ID})
	if err != nil {
		t.Fatalf("history view: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	tests := []struct {
		name   string
		item   HistoryItem
		action audit.Action
		want   []audit.Change
	}{
		{"checkin", items[0], audit.ActionCheckin, []audit.Change{
			{Field: "Responsável", RawKey: "currentUserId", Old: "Larissa Mendes", New: audit.EmptyMarker},
			{Field: "Status", RawKey: "status", Old: "Em Uso", New: "Disponível"},
		}},
		{"checkout", items[1], audit.ActionCheckout, []audit.Change{
			{Field: "Responsável", RawKey: "currentUserId", Old: audit.EmptyMarker, New: "Larissa Mendes"},
			{Field: "Nome do Responsável", RawKey: "holderName", Old: audit.EmptyMarker, New: "Larissa Mendes"},
			{Field: "Status", RawKey: "status", Old: "Disponível", New: "Em Uso"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.item.Action != tt.action || tt.item.ActionLabel != audit.ActionLabel(tt.action) {
				t.Fatalf("unexpected entry %s %q", tt.item.Action, tt.item.ActionLabel)
			}
			if len(tt.item.Changes) != len(tt.want) {
				t.Fatalf("expected %d rows, got %+v", len(tt.want), tt.item.Changes)
			}
			for i, want := range tt.want {
				if tt.item.Changes[i] != want {
					t.Fatalf("row %d: expected %+v, got %+v", i, want, tt.item.Changes[i])
				}
			}
		})
	}

	created := items[2]
	for _, c := range created.Changes {
		if c.RawKey == "modelId" && c.New != "Galaxy A54" {
			t.Fatalf("model not resolved: %+v", c)
		}
		if c.Old == audit.EmptyMarker && c.New == audit.EmptyMarker {
			t.Fatalf("empty-to-empty row rendered: %+v", c)
		}
	}
}

func TestHistoryViewSurvivesMalformedEntry(t *testing.T) {
	f := newFixture(t)
	d := f.device(t, "SN-401", "")
	err := f.store.WithTx(f.ctx, func(ctx context.Context, tx Tx) error {
		return tx.AppendLog(ctx, audit.Entry{
			ID:        "broken",
			AssetID:   d.ID,
			AssetType: audit.KindDevice,
			Action:    audit.ActionUpdate,
			Timestamp: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			AdminUser: "legado",
			NewData:   json.RawMessage(`{"status":`),
		})
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	items, err := f.svc.HistoryView(f.ctx, audit.Filter{AssetID: d.ID})
	if err != nil {
		t.Fatalf("history view must not fail: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected both entries, got %d", len(items))
	}
	if items[0].Changes[0].New != audit.Unresolvable {
		t.Fatalf("expected unresolvable row, got %+v", items[0].Changes)
	}
	if len(items[1].Changes) == 0 {
		t.Fatalf("valid entry must still resolve")
	}
}

func TestGetLogUsesBackupForLegacyDeletions(t *testing.T) {
	f := newFixture(t)
	err := f.store.WithTx(f.ctx, func(ctx context.Context, tx Tx) error {
		return tx.AppendLog(ctx, audit.Entry{
			ID:         "legacy",
			AssetID:    "sim-1",
			AssetType:  audit.KindSimCard,
			Action:     audit.ActionDelete,
			Timestamp:  time.Now().UTC(),
			AdminUser:  "legado",
			BackupData: json.RawMessage(`{"phoneNumber":"11900001111"}`),
		})
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	item, err := f.svc.GetLog(f.ctx, "legacy")
	if err != nil {
		t.Fatalf("get log: %v", err)
	}
	if len(item.Changes) != 1 || item.Changes[0].Old != "11900001111" || item.Changes[0].New != audit.EmptyMarker {
		t.Fatalf("unexpected changes %+v", item.Changes)
	}
	if _, err := f.svc.GetLog(f.ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLogsFiltersAndClear(t *testing.T) {
	f := newFixture(t)
	d := f.device(t, "SN-402", "")
	f.sim(t, "11900002222")

	devices, err := f.svc.ListLogs(f.ctx, audit.Filter{AssetType: audit.KindDevice, Limit: NoLimit})
	if err != nil || len(devices) != 1 || devices[0].AssetID != d.ID {
		t.Fatalf("unexpected device logs %v %v", devices, err)
	}
	creates, err := f.svc.ListLogs(f.ctx, audit.Filter{Action: audit.ActionCreate, Limit: 2})
	if err != nil || len(creates) != 2 {
		t.Fatalf("expected limited page, got %d %v", len(creates), err)
	}
	if _, err := f.svc.ListLogs(f.ctx, audit.Filter{Action: "EXPLODE"}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	if _, err := f.svc.ClearLogs(f.ctx, Actor{}); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	total := f.logCount(t)
	removed, err := f.svc.ClearLogs(f.ctx, admin)
	if err != nil || removed != int64(total) {
		t.Fatalf("expected %d removed, got %d %v", total, removed, err)
	}
	if f.logCount(t) != 0 {
		t.Fatalf("logs not cleared")
	}
}

func TestLookupsAreCachedAndInvalidatedOnWrites(t *testing.T) {
	cache := &stubCache{}
	store := NewMemoryStore()
	svc := NewService(store, cache, time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	sector, err := svc.CreateCatalogItem(ctx, admin, CatalogItem{Kind: CatalogSector, Name: "RH"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lk, err := svc.Lookups(ctx)
	if err != nil || lk.Sectors[sector.ID] != "RH" {
		t.Fatalf("unexpected lookups %v %v", lk.Sectors, err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected lookups cached, sets=%d", cache.sets)
	}
	if _, err := svc.Lookups(ctx); err != nil || cache.sets != 1 {
		t.Fatalf("expected cache hit, sets=%d err=%v", cache.sets, err)
	}

	if _, err := svc.UpdateCatalogItem(ctx, admin, CatalogSector, sector.ID, CatalogItem{Name: "Pessoas"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := cache.store[lookupsCacheKey]; ok {
		t.Fatalf("write must invalidate cached lookups")
	}
	lk, err = svc.Lookups(ctx)
	if err != nil || lk.Sectors[sector.ID] != "Pessoas" {
		t.Fatalf("expected fresh lookups, got %v %v", lk.Sectors, err)
	}

	cache.fail = true
	if lk, err := svc.Lookups(ctx); err != nil || lk.Sectors[sector.ID] != "Pessoas" {
		t.Fatalf("cache failure must degrade to store reads, got %v %v", lk.Sectors, err)
	}
}
