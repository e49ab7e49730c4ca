package inventory

import (
	"context"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// HistoryItem é um evento acompanhado das alterações já resolvidas para
// exibição.
type HistoryItem struct {
	audit.Entry
	ActionLabel string         `json:"actionLabel"`
	Changes     []audit.Change `json:"changes"`
}

// ListHistory devolve os eventos de um registro, do mais recente ao mais
// antigo.
func (s *Service) ListHistory(ctx context.Context, assetID string) ([]audit.Entry, error) {
	return s.ListLogs(ctx, audit.Filter{AssetID: assetID, Limit: NoLimit})
}

// HistoryView devolve o histórico com as diferenças resolvidas. Um evento com
// snapshot corrompido não impede a exibição dos demais.
func (s *Service) HistoryView(ctx context.Context, filter audit.Filter) ([]HistoryItem, error) {
	entries, err := s.ListLogs(ctx, filter)
	if err != nil {
		return nil, err
	}
	lk, err := s.Lookups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryItem, 0, len(entries))
	for _, entry := range entries {
		out = append(out, present(entry, lk))
	}
	return out, nil
}

// ListLogs consulta o histórico com filtros.
func (s *Service) ListLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	if filter.Action != "" && !audit.IsValidAction(filter.Action) {
		return nil, ErrInvalidAction
	}
	var out []audit.Entry
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListLogs(ctx, filter)
		return err
	})
	return out, err
}

// GetLog devolve o detalhe de um evento, com as diferenças resolvidas.
func (s *Service) GetLog(ctx context.Context, id string) (HistoryItem, error) {
	var entry audit.Entry
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		entry, err = tx.GetLog(ctx, id)
		return err
	})
	if err != nil {
		return HistoryItem{}, err
	}
	lk, err := s.Lookups(ctx)
	if err != nil {
		return HistoryItem{}, err
	}
	return present(entry, lk), nil
}

// ClearLogs remove todo o histórico. Ação administrativa registrada apenas no
// log da aplicação.
func (s *Service) ClearLogs(ctx context.Context, actor Actor) (int64, error) {
	if err := actor.Validate(); err != nil {
		return 0, err
	}
	var removed int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		removed, err = tx.ClearLogs(ctx)
		return err
	})
	s.metrics.observe("clear_logs", err)
	if err != nil {
		s.logger.Error().Err(err).Str("actor", actor.Name).Msg("inventário: falha ao limpar histórico")
		return 0, err
	}
	s.logger.Warn().Str("actor", actor.Name).Int64("removed", removed).Msg("inventário: histórico apagado")
	return removed, nil
}

func present(entry audit.Entry, lk audit.Lookups) HistoryItem {
	prev := entry.PreviousData
	if len(prev) == 0 && entry.Action == audit.ActionDelete {
		prev = entry.BackupData
	}
	return HistoryItem{
		Entry:       entry,
		ActionLabel: audit.ActionLabel(entry.Action),
		Changes:     audit.ResolveEntry(entry.Action, prev, entry.NewData, lk),
	}
}
