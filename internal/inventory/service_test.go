package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

var admin = Actor{Name: "Admin TI"}

type fixture struct {
	svc    *Service
	store  *MemoryStore
	ctx    context.Context
	model  CatalogItem
	sector CatalogItem
	field  CatalogItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store, nil, 0, nil, zerolog.Nop())
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	f := &fixture{svc: svc, store: store, ctx: context.Background()}
	f.field = f.catalog(t, CatalogItem{Kind: CatalogCustomField, Name: "Cor"})
	brand := f.catalog(t, CatalogItem{Kind: CatalogBrand, Name: "Samsung"})
	assetType := f.catalog(t, CatalogItem{Kind: CatalogAssetType, Name: "Smartphone", CustomFieldIDs: []string{f.field.ID}})
	f.model = f.catalog(t, CatalogItem{Kind: CatalogModel, Name: "Galaxy A54", BrandID: &brand.ID, AssetTypeID: &assetType.ID})
	f.sector = f.catalog(t, CatalogItem{Kind: CatalogSector, Name: "Financeiro"})
	return f
}

func (f *fixture) catalog(t *testing.T, item CatalogItem) CatalogItem {
	t.Helper()
	created, err := f.svc.CreateCatalogItem(f.ctx, admin, item)
	if err != nil {
		t.Fatalf("create catalog %s: %v", item.Name, err)
	}
	return created
}

func (f *fixture) user(t *testing.T, name, cpf string) User {
	t.Helper()
	u, err := f.svc.CreateUser(f.ctx, admin, User{FullName: name, CPF: cpf, SectorID: &f.sector.ID})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) device(t *testing.T, serial, tag string) Device {
	t.Helper()
	d, err := f.svc.CreateDevice(f.ctx, admin, Device{ModelID: f.model.ID, SerialNumber: serial, AssetTag: tag})
	if err != nil {
		t.Fatalf("create device: %v", err)
	}
	return d
}

func (f *fixture) sim(t *testing.T, phone string) SimCard {
	t.Helper()
	s, err := f.svc.CreateSim(f.ctx, admin, SimCard{PhoneNumber: phone, Operator: "Vivo"})
	if err != nil {
		t.Fatalf("create sim: %v", err)
	}
	return s
}

func (f *fixture) getDevice(t *testing.T, id string) Device {
	t.Helper()
	d, err := f.svc.GetDevice(f.ctx, id)
	if err != nil {
		t.Fatalf("get device: %v", err)
	}
	return d
}

func (f *fixture) getSim(t *testing.T, id string) SimCard {
	t.Helper()
	s, err := f.svc.GetSim(f.ctx, id)
	if err != nil {
		t.Fatalf("get sim: %v", err)
	}
	return s
}

func (f *fixture) getUser(t *testing.T, id string) User {
	t.Helper()
	u, err := f.svc.GetUser(f.ctx, id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u
}

func (f *fixture) history(t *testing.T, assetID string) []audit.Entry {
	t.Helper()
	entries, err := f.svc.ListHistory(f.ctx, assetID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	return entries
}

func (f *fixture) logCount(t *testing.T) int {
	t.Helper()
	entries, err := f.svc.ListLogs(f.ctx, audit.Filter{Limit: NoLimit})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	return len(entries)
}

// assertInvariants confere, para todos os registros, que status e responsável
// andam juntos e que descartados não têm responsável nem chip.
func (f *fixture) assertInvariants(t *testing.T) {
	t.Helper()
	devices, err := f.svc.ListDevices(f.ctx, DeviceFilter{Limit: NoLimit})
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	for _, d := range devices {
		if (d.Status == StatusInUse) != (d.CurrentUserID != nil) {
			t.Fatalf("device %s: status %s with holder %v", d.SerialNumber, d.Status, d.CurrentUserID)
		}
		if d.Status == StatusRetired && d.LinkedSimID != nil {
			t.Fatalf("retired device %s still linked to sim", d.SerialNumber)
		}
		if d.LinkedSimID != nil {
			sim := f.getSim(t, *d.LinkedSimID)
			if sim.Status != d.Status && !(d.Status != StatusInUse && sim.Status == StatusAvailable) {
				t.Fatalf("linked sim %s status %s diverges from device %s", sim.PhoneNumber, sim.Status, d.Status)
			}
			if !sameRef(sim.CurrentUserID, d.CurrentUserID) {
				t.Fatalf("linked sim %s holder diverges from device", sim.PhoneNumber)
			}
		}
	}
	sims, err := f.svc.ListSims(f.ctx, SimFilter{Limit: NoLimit})
	if err != nil {
		t.Fatalf("list sims: %v", err)
	}
	for _, s := range sims {
		if (s.Status == StatusInUse) != (s.CurrentUserID != nil) {
			t.Fatalf("sim %s: status %s with holder %v", s.PhoneNumber, s.Status, s.CurrentUserID)
		}
	}
}

func TestMutationRequiresActor(t *testing.T) {
	f := newFixture(t)
	before := f.logCount(t)

	_, err := f.svc.CreateSim(f.ctx, Actor{Name: "  "}, SimCard{PhoneNumber: "11999990000"})
	if !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	if got := f.logCount(t); got != before {
		t.Fatalf("expected no audit entries, got %d new", got-before)
	}
}

func TestEntriesSignedAndOrderedNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	d := f.device(t, "SN-1", "")
	s := f.sim(t, "11988887777")
	if err := f.svc.SetLinkedSim(f.ctx, admin, d.ID, &s.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	u := f.user(t, "Maria Souza", "123.456.789-01")
	if _, err := f.svc.Checkout(f.ctx, admin, CheckoutRequest{Kind: AssetDevice, AssetID: d.ID, UserID: u.ID}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	entries, err := f.svc.ListLogs(f.ctx, audit.Filter{Limit: NoLimit})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	for i, e := range entries {
		if e.AdminUser != admin.Name {
			t.Fatalf("entry %d signed by %q", i, e.AdminUser)
		}
		if i > 0 && audit.Newer(e, entries[i-1]) {
			t.Fatalf("entries out of order at %d", i)
		}
	}
	// A entrega do dispositivo é gravada depois da entrega do chip vinculado.
	if entries[0].Action != audit.ActionCheckout || entries[0].AssetID != d.ID {
		t.Fatalf("expected device checkout to be newest, got %s %s", entries[0].Action, entries[0].AssetType)
	}
	if entries[1].Action != audit.ActionCheckout || entries[1].AssetID != s.ID {
		t.Fatalf("expected sim checkout second, got %s %s", entries[1].Action, entries[1].AssetType)
	}
}
