package inventory

import (
	"context"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// Store é a porta de persistência. Toda sequência leitura-mutação-histórico
// roda dentro de WithTx; se fn retornar erro nada é gravado. ReadTx serve
// consultas: não bloqueia registros e nada do que fn fizer é gravado.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ReadTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx expõe as operações disponíveis dentro de uma transação. Em WithTx as
// leituras individuais (Get*) bloqueiam o registro até o fim da transação.
type Tx interface {
	GetDevice(ctx context.Context, id string) (Device, error)
	ListDevices(ctx context.Context, filter DeviceFilter) ([]Device, error)
	InsertDevice(ctx context.Context, d Device) error
	UpdateDevice(ctx context.Context, d Device) error

	GetSim(ctx context.Context, id string) (SimCard, error)
	ListSims(ctx context.Context, filter SimFilter) ([]SimCard, error)
	InsertSim(ctx context.Context, s SimCard) error
	UpdateSim(ctx context.Context, s SimCard) error
	DeleteSim(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
	InsertUser(ctx context.Context, u User) error
	UpdateUser(ctx context.Context, u User) error
	CountHoldings(ctx context.Context, userID string) (int, error)

	GetTerm(ctx context.Context, id string) (Term, error)
	ListTerms(ctx context.Context, userID string) ([]Term, error)
	InsertTerm(ctx context.Context, t Term) error
	UpdateTerm(ctx context.Context, t Term) error

	GetAccount(ctx context.Context, id string) (SoftwareAccount, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]SoftwareAccount, error)
	InsertAccount(ctx context.Context, a SoftwareAccount) error
	UpdateAccount(ctx context.Context, a SoftwareAccount) error
	DeleteAccount(ctx context.Context, id string) error

	GetCatalogItem(ctx context.Context, kind CatalogKind, id string) (CatalogItem, error)
	ListCatalog(ctx context.Context, kind CatalogKind) ([]CatalogItem, error)
	InsertCatalogItem(ctx context.Context, item CatalogItem) error
	UpdateCatalogItem(ctx context.Context, item CatalogItem) error
	DeleteCatalogItem(ctx context.Context, kind CatalogKind, id string) error

	AppendLog(ctx context.Context, entry audit.Entry) error
	GetLog(ctx context.Context, id string) (audit.Entry, error)
	ListLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
	ClearLogs(ctx context.Context) (int64, error)
}

// Actor identifica quem executa a operação e assina o histórico.
type Actor struct {
	Name string
}

// Validate exige um nome de responsável.
func (a Actor) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrInvalidActor
	}
	return nil
}

// NoLimit dispensa paginação em listagens internas.
const NoLimit = -1

func normalizeLimit(limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit == NoLimit {
		return NoLimit, offset
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return limit, offset
}
