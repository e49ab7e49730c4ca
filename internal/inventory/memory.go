package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// Compile-time check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore mantém o estado em memória. Usado em testes e no modo local
// (STORE_DRIVER=memory). Transações são serializadas por um mutex e aplicadas
// sobre uma cópia do estado, descartada em caso de erro.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	devices  map[string]Device
	sims     map[string]SimCard
	users    map[string]User
	terms    []Term
	accounts map[string]SoftwareAccount
	catalog  map[CatalogKind]map[string]CatalogItem
	logs     []audit.Entry
	seq      int64
}

// NewMemoryStore cria um store vazio.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		devices:  make(map[string]Device),
		sims:     make(map[string]SimCard),
		users:    make(map[string]User),
		accounts: make(map[string]SoftwareAccount),
		catalog:  make(map[CatalogKind]map[string]CatalogItem),
	}}
}

// WithTx executa fn com acesso exclusivo. Não deve ser chamado de dentro de fn.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{state: m.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

// ReadTx executa fn sobre uma cópia do estado que é sempre descartada.
func (m *MemoryStore) ReadTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	tx := &memoryTx{state: m.state.clone()}
	m.mu.Unlock()
	return fn(ctx, tx)
}

// Ping sempre responde, não há conexão externa.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s memoryState) clone() memoryState {
	out := memoryState{
		devices:  make(map[string]Device, len(s.devices)),
		sims:     make(map[string]SimCard, len(s.sims)),
		users:    make(map[string]User, len(s.users)),
		terms:    append([]Term(nil), s.terms...),
		accounts: make(map[string]SoftwareAccount, len(s.accounts)),
		catalog:  make(map[CatalogKind]map[string]CatalogItem, len(s.catalog)),
		logs:     append([]audit.Entry(nil), s.logs...),
		seq:      s.seq,
	}
	for k, v := range s.devices {
		out.devices[k] = v
	}
	for k, v := range s.sims {
		out.sims[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for kind, items := range s.catalog {
		copied := make(map[string]CatalogItem, len(items))
		for k, v := range items {
			copied[k] = v
		}
		out.catalog[kind] = copied
	}
	return out
}

type memoryTx struct {
	state memoryState
}

func (t *memoryTx) GetDevice(ctx context.Context, id string) (Device, error) {
	d, ok := t.state.devices[id]
	if !ok {
		return Device{}, ErrNotFound
	}
	return cloneDevice(d), nil
}

func (t *memoryTx) ListDevices(ctx context.Context, filter DeviceFilter) ([]Device, error) {
	out := make([]Device, 0)
	for _, d := range t.state.devices {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.CurrentUserID != "" && derefString(d.CurrentUserID) != filter.CurrentUserID {
			continue
		}
		if filter.LinkedSimID != "" && derefString(d.LinkedSimID) != filter.LinkedSimID {
			continue
		}
		if filter.SerialNumber != "" && !strings.EqualFold(d.SerialNumber, filter.SerialNumber) {
			continue
		}
		if filter.ModelID != "" && d.ModelID != filter.ModelID {
			continue
		}
		out = append(out, cloneDevice(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SerialNumber != out[j].SerialNumber {
			return out[i].SerialNumber < out[j].SerialNumber
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (t *memoryTx) InsertDevice(ctx context.Context, d Device) error {
	for _, existing := range t.state.devices {
		if strings.EqualFold(existing.SerialNumber, d.SerialNumber) {
			return ErrDuplicateSerial
		}
	}
	t.state.devices[d.ID] = cloneDevice(d)
	return nil
}

func (t *memoryTx) UpdateDevice(ctx context.Context, d Device) error {
	if _, ok := t.state.devices[d.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range t.state.devices {
		if id != d.ID && strings.EqualFold(existing.SerialNumber, d.SerialNumber) {
			return ErrDuplicateSerial
		}
	}
	t.state.devices[d.ID] = cloneDevice(d)
	return nil
}

func (t *memoryTx) GetSim(ctx context.Context, id string) (SimCard, error) {
	s, ok := t.state.sims[id]
	if !ok {
		return SimCard{}, ErrNotFound
	}
	return cloneSim(s), nil
}

func (t *memoryTx) ListSims(ctx context.Context, filter SimFilter) ([]SimCard, error) {
	out := make([]SimCard, 0)
	for _, s := range t.state.sims {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.CurrentUserID != "" && derefString(s.CurrentUserID) != filter.CurrentUserID {
			continue
		}
		if filter.PhoneNumber != "" && s.PhoneNumber != filter.PhoneNumber {
			continue
		}
		out = append(out, cloneSim(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PhoneNumber != out[j].PhoneNumber {
			return out[i].PhoneNumber < out[j].PhoneNumber
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (t *memoryTx) InsertSim(ctx context.Context, s SimCard) error {
	for _, existing := range t.state.sims {
		if existing.PhoneNumber == s.PhoneNumber {
			return ErrDuplicatePhone
		}
	}
	t.state.sims[s.ID] = cloneSim(s)
	return nil
}

func (t *memoryTx) UpdateSim(ctx context.Context, s SimCard) error {
	if _, ok := t.state.sims[s.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range t.state.sims {
		if id != s.ID && existing.PhoneNumber == s.PhoneNumber {
			return ErrDuplicatePhone
		}
	}
	t.state.sims[s.ID] = cloneSim(s)
	return nil
}

func (t *memoryTx) DeleteSim(ctx context.Context, id string) error {
	if _, ok := t.state.sims[id]; !ok {
		return ErrNotFound
	}
	delete(t.state.sims, id)
	return nil
}

func (t *memoryTx) GetUser(ctx context.Context, id string) (User, error) {
	u, ok := t.state.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (t *memoryTx) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	out := make([]User, 0)
	for _, u := range t.state.users {
		if filter.CPF != "" && u.CPF != filter.CPF {
			continue
		}
		if filter.SectorID != "" && derefString(u.SectorID) != filter.SectorID {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (t *memoryTx) InsertUser(ctx context.Context, u User) error {
	for _, existing := range t.state.users {
		if existing.CPF == u.CPF {
			return ErrDuplicateCPF
		}
	}
	t.state.users[u.ID] = cloneUser(u)
	return nil
}

func (t *memoryTx) UpdateUser(ctx context.Context, u User) error {
	if _, ok := t.state.users[u.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range t.state.users {
		if id != u.ID && existing.CPF == u.CPF {
			return ErrDuplicateCPF
		}
	}
	t.state.users[u.ID] = cloneUser(u)
	return nil
}

func (t *memoryTx) CountHoldings(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, d := range t.state.devices {
		if derefString(d.CurrentUserID) == userID {
			count++
		}
	}
	for _, s := range t.state.sims {
		if derefString(s.CurrentUserID) == userID {
			count++
		}
	}
	return count, nil
}

func (t *memoryTx) GetTerm(ctx context.Context, id string) (Term, error) {
	for _, term := range t.state.terms {
		if term.ID == id {
			return term, nil
		}
	}
	return Term{}, ErrNotFound
}

func (t *memoryTx) ListTerms(ctx context.Context, userID string) ([]Term, error) {
	out := make([]Term, 0)
	for _, term := range t.state.terms {
		if term.UserID == userID {
			out = append(out, term)
		}
	}
	return out, nil
}

func (t *memoryTx) InsertTerm(ctx context.Context, term Term) error {
	t.state.terms = append(t.state.terms, term)
	return nil
}

func (t *memoryTx) UpdateTerm(ctx context.Context, term Term) error {
	for i := range t.state.terms {
		if t.state.terms[i].ID == term.ID {
			t.state.terms[i] = term
			return nil
		}
	}
	return ErrNotFound
}

func (t *memoryTx) GetAccount(ctx context.Context, id string) (SoftwareAccount, error) {
	a, ok := t.state.accounts[id]
	if !ok {
		return SoftwareAccount{}, ErrNotFound
	}
	return cloneAccount(a), nil
}

func (t *memoryTx) ListAccounts(ctx context.Context, filter AccountFilter) ([]SoftwareAccount, error) {
	out := make([]SoftwareAccount, 0)
	for _, a := range t.state.accounts {
		if filter.UserID != "" && derefString(a.UserID) != filter.UserID {
			continue
		}
		if filter.DeviceID != "" && derefString(a.DeviceID) != filter.DeviceID {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (t *memoryTx) InsertAccount(ctx context.Context, a SoftwareAccount) error {
	t.state.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (t *memoryTx) UpdateAccount(ctx context.Context, a SoftwareAccount) error {
	if _, ok := t.state.accounts[a.ID]; !ok {
		return ErrNotFound
	}
	t.state.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (t *memoryTx) DeleteAccount(ctx context.Context, id string) error {
	if _, ok := t.state.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(t.state.accounts, id)
	return nil
}

func (t *memoryTx) GetCatalogItem(ctx context.Context, kind CatalogKind, id string) (CatalogItem, error) {
	item, ok := t.state.catalog[kind][id]
	if !ok {
		return CatalogItem{}, ErrNotFound
	}
	return cloneCatalogItem(item), nil
}

func (t *memoryTx) ListCatalog(ctx context.Context, kind CatalogKind) ([]CatalogItem, error) {
	items := t.state.catalog[kind]
	out := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		out = append(out, cloneCatalogItem(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memoryTx) InsertCatalogItem(ctx context.Context, item CatalogItem) error {
	if t.state.catalog[item.Kind] == nil {
		t.state.catalog[item.Kind] = make(map[string]CatalogItem)
	}
	t.state.catalog[item.Kind][item.ID] = cloneCatalogItem(item)
	return nil
}

func (t *memoryTx) UpdateCatalogItem(ctx context.Context, item CatalogItem) error {
	if _, ok := t.state.catalog[item.Kind][item.ID]; !ok {
		return ErrNotFound
	}
	t.state.catalog[item.Kind][item.ID] = cloneCatalogItem(item)
	return nil
}

func (t *memoryTx) DeleteCatalogItem(ctx context.Context, kind CatalogKind, id string) error {
	if _, ok := t.state.catalog[kind][id]; !ok {
		return ErrNotFound
	}
	delete(t.state.catalog[kind], id)
	return nil
}

func (t *memoryTx) AppendLog(ctx context.Context, entry audit.Entry) error {
	t.state.seq++
	entry.Seq = t.state.seq
	t.state.logs = append(t.state.logs, entry)
	return nil
}

func (t *memoryTx) GetLog(ctx context.Context, id string) (audit.Entry, error) {
	for _, entry := range t.state.logs {
		if entry.ID == id {
			return entry, nil
		}
	}
	return audit.Entry{}, ErrNotFound
}

func (t *memoryTx) ListLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0)
	for _, entry := range t.state.logs {
		if filter.AssetID != "" && entry.AssetID != filter.AssetID {
			continue
		}
		if filter.AssetType != "" && entry.AssetType != filter.AssetType {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return audit.Newer(out[i], out[j]) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (t *memoryTx) ClearLogs(ctx context.Context) (int64, error) {
	n := int64(len(t.state.logs))
	t.state.logs = nil
	return n, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	limit, offset = normalizeLimit(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	if limit == NoLimit {
		return items[offset:]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
