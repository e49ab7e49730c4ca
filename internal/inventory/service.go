package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/util"
)

// Service concentra o motor de ciclo de vida, a coordenação de entregas e
// devoluções e o cadastro. Não guarda estado próprio: tudo passa pelo Store.
type Service struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	metrics  *Metrics
	logger   zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewService cria o serviço. cache e metrics podem ser nil.
func NewService(store Store, cache Cache, cacheTTL time.Duration, metrics *Metrics, logger zerolog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    util.NewID,
	}
}

// Ping verifica o armazenamento.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// txScope acompanha uma transação de mutação: assina os eventos com o
// responsável e garante timestamps estritamente crescentes.
type txScope struct {
	Tx
	svc     *Service
	actor   Actor
	last    time.Time
	entries []audit.Entry
	lookups bool
}

func (sc *txScope) stamp() time.Time {
	t := sc.svc.now().UTC()
	if !t.After(sc.last) {
		t = sc.last.Add(time.Microsecond)
	}
	sc.last = t
	return t
}

// record grava um evento com snapshots do estado anterior e posterior.
func (sc *txScope) record(ctx context.Context, kind audit.Kind, assetID string, action audit.Action, notes string, prev, next any) error {
	return sc.write(ctx, kind, assetID, action, notes, prev, next, nil)
}

// recordDeletion grava exclusão/descarte mantendo cópia integral em BackupData.
func (sc *txScope) recordDeletion(ctx context.Context, kind audit.Kind, assetID, notes string, prev, next any) error {
	return sc.write(ctx, kind, assetID, audit.ActionDelete, notes, prev, next, prev)
}

func (sc *txScope) write(ctx context.Context, kind audit.Kind, assetID string, action audit.Action, notes string, prev, next, backup any) error {
	prevData, err := audit.Snapshot(prev)
	if err != nil {
		return err
	}
	newData, err := audit.Snapshot(next)
	if err != nil {
		return err
	}
	backupData, err := audit.Snapshot(backup)
	if err != nil {
		return err
	}

	entry := audit.Entry{
		ID:           sc.svc.newID(),
		AssetID:      assetID,
		AssetType:    kind,
		Action:       action,
		Timestamp:    sc.stamp(),
		AdminUser:    sc.actor.Name,
		Notes:        notes,
		PreviousData: prevData,
		NewData:      newData,
		BackupData:   backupData,
	}
	if err := sc.AppendLog(ctx, entry); err != nil {
		return err
	}
	sc.entries = append(sc.entries, entry)
	return nil
}

// touchLookups marca que nomes usados na resolução do histórico mudaram.
func (sc *txScope) touchLookups() { sc.lookups = true }

// mutate valida o responsável e executa fn numa única transação.
func (s *Service) mutate(ctx context.Context, actor Actor, operation string, fn func(ctx context.Context, sc *txScope) error) error {
	if err := actor.Validate(); err != nil {
		s.metrics.observe(operation, err)
		return err
	}

	var scope *txScope
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		scope = &txScope{Tx: tx, svc: s, actor: actor}
		return fn(ctx, scope)
	})
	s.metrics.observe(operation, err)

	if err != nil {
		event := s.logger.Warn()
		if KindOf(err) == 0 {
			event = s.logger.Error()
		}
		event.Err(err).Str("operation", operation).Str("actor", actor.Name).Msg("inventário: operação rejeitada")
		return err
	}

	s.metrics.recorded(scope.entries)
	if scope.lookups {
		s.invalidateLookups(ctx)
	}
	s.logger.Info().Str("operation", operation).Str("actor", actor.Name).Int("events", len(scope.entries)).Msg("inventário: operação concluída")
	return nil
}

// read executa consultas numa transação somente leitura.
func (s *Service) read(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.store.ReadTx(ctx, fn)
}
