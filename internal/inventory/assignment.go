package inventory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// CheckoutRequest descreve uma entrega de ativo a um colaborador.
type CheckoutRequest struct {
	Kind    AssetKind
	AssetID string
	UserID  string
	Notes   string
	// Accessories substitui a lista de acessórios do dispositivo quando não nil.
	Accessories []Accessory
}

// CheckinRequest descreve a devolução de um ativo pelo responsável atual.
type CheckinRequest struct {
	Kind    AssetKind
	AssetID string
	Notes   string
	// Checklist marca, por item, o que foi fisicamente devolvido. Itens
	// ausentes ficam registrados como pendência, sem bloquear a devolução.
	Checklist      map[string]bool
	InactivateUser bool
}

// Checkout entrega o ativo ao colaborador e gera o termo de entrega.
func (s *Service) Checkout(ctx context.Context, actor Actor, req CheckoutRequest) (Term, error) {
	var term Term
	err := s.mutate(ctx, actor, "checkout", func(ctx context.Context, sc *txScope) error {
		user, err := sc.GetUser(ctx, req.UserID)
		if err != nil {
			return err
		}

		switch req.Kind {
		case AssetDevice:
			term, err = sc.checkoutDevice(ctx, req, user)
		case AssetSimCard:
			term, err = sc.checkoutSim(ctx, req, user)
		default:
			return ErrInvalidAssetKind
		}
		return err
	})
	if err != nil {
		return Term{}, err
	}
	return term, nil
}

func (sc *txScope) checkoutDevice(ctx context.Context, req CheckoutRequest, user User) (Term, error) {
	device, err := sc.GetDevice(ctx, req.AssetID)
	if err != nil {
		return Term{}, err
	}
	if device.Status != StatusAvailable {
		return Term{}, ErrAssetNotAvailable
	}
	if !user.Active {
		return Term{}, ErrUserInactive
	}

	details, err := deviceDetails(ctx, sc, device)
	if err != nil {
		return Term{}, err
	}

	if device.LinkedSimID != nil {
		sim, err := sc.GetSim(ctx, *device.LinkedSimID)
		if err != nil {
			return Term{}, err
		}
		if sim.Status != StatusAvailable {
			return Term{}, ErrAssetNotAvailable
		}
		prev := cloneSim(sim)
		sim.Status = StatusInUse
		sim.CurrentUserID = strPtr(user.ID)
		if err := sc.UpdateSim(ctx, sim); err != nil {
			return Term{}, err
		}
		if err := sc.record(ctx, audit.KindSimCard, sim.ID, audit.ActionCheckout, "Entregue junto com "+details, prev, assignmentSnapshot(sim.Status, sim.CurrentUserID, user.FullName)); err != nil {
			return Term{}, err
		}
	}

	prev := cloneDevice(device)
	device.Status = StatusInUse
	device.CurrentUserID = strPtr(user.ID)
	next := assignmentSnapshot(device.Status, device.CurrentUserID, user.FullName)
	if req.Accessories != nil {
		device.Accessories = mintAccessories(req.Accessories, sc.svc.newID)
		next["accessories"] = device.Accessories
	}
	if err := sc.UpdateDevice(ctx, device); err != nil {
		return Term{}, err
	}
	if err := sc.record(ctx, audit.KindDevice, device.ID, audit.ActionCheckout, req.Notes, prev, next); err != nil {
		return Term{}, err
	}
	return sc.appendTerm(ctx, user.ID, TermDelivery, details)
}

func (sc *txScope) checkoutSim(ctx context.Context, req CheckoutRequest, user User) (Term, error) {
	sim, err := sc.GetSim(ctx, req.AssetID)
	if err != nil {
		return Term{}, err
	}
	if sim.Status != StatusAvailable {
		return Term{}, ErrAssetNotAvailable
	}
	if err := sc.ensureUnlinked(ctx, sim.ID); err != nil {
		return Term{}, err
	}
	if !user.Active {
		return Term{}, ErrUserInactive
	}

	prev := cloneSim(sim)
	sim.Status = StatusInUse
	sim.CurrentUserID = strPtr(user.ID)
	if err := sc.UpdateSim(ctx, sim); err != nil {
		return Term{}, err
	}
	if err := sc.record(ctx, audit.KindSimCard, sim.ID, audit.ActionCheckout, req.Notes, prev, assignmentSnapshot(sim.Status, sim.CurrentUserID, user.FullName)); err != nil {
		return Term{}, err
	}
	return sc.appendTerm(ctx, user.ID, TermDelivery, describeSim(sim))
}

// Checkin recebe o ativo de volta do responsável atual e gera o termo de
// devolução. Com InactivateUser o colaborador é inativado depois que o ativo
// deixa de estar com ele, em evento separado.
func (s *Service) Checkin(ctx context.Context, actor Actor, req CheckinRequest) (Term, error) {
	var term Term
	err := s.mutate(ctx, actor, "checkin", func(ctx context.Context, sc *txScope) error {
		var (
			holderID string
			err      error
		)
		switch req.Kind {
		case AssetDevice:
			term, holderID, err = sc.checkinDevice(ctx, req)
		case AssetSimCard:
			term, holderID, err = sc.checkinSim(ctx, req)
		default:
			return ErrInvalidAssetKind
		}
		if err != nil {
			return err
		}

		if !req.InactivateUser {
			return nil
		}
		user, err := sc.GetUser(ctx, holderID)
		if err != nil {
			return err
		}
		if !user.Active {
			return nil
		}
		return sc.inactivateUser(ctx, user, inactivationNote(req.Notes))
	})
	if err != nil {
		return Term{}, err
	}
	return term, nil
}

func (sc *txScope) checkinDevice(ctx context.Context, req CheckinRequest) (Term, string, error) {
	device, err := sc.GetDevice(ctx, req.AssetID)
	if err != nil {
		return Term{}, "", err
	}
	if device.Status != StatusInUse || device.CurrentUserID == nil {
		return Term{}, "", ErrAssetNotInUse
	}
	holderID := *device.CurrentUserID

	details, err := deviceDetails(ctx, sc, device)
	if err != nil {
		return Term{}, "", err
	}

	if device.LinkedSimID != nil {
		if err := sc.releaseSim(ctx, *device.LinkedSimID, audit.ActionCheckin, "Devolvido junto com "+details); err != nil {
			return Term{}, "", err
		}
	}

	prev := cloneDevice(device)
	device.Status = StatusAvailable
	device.CurrentUserID = nil
	if err := sc.UpdateDevice(ctx, device); err != nil {
		return Term{}, "", err
	}
	if err := sc.record(ctx, audit.KindDevice, device.ID, audit.ActionCheckin, req.Notes, prev, returnSnapshot(device.Status, req.Checklist)); err != nil {
		return Term{}, "", err
	}
	term, err := sc.appendTerm(ctx, holderID, TermReturn, details)
	return term, holderID, err
}

func (sc *txScope) checkinSim(ctx context.Context, req CheckinRequest) (Term, string, error) {
	sim, err := sc.GetSim(ctx, req.AssetID)
	if err != nil {
		return Term{}, "", err
	}
	if sim.Status != StatusInUse || sim.CurrentUserID == nil {
		return Term{}, "", ErrAssetNotInUse
	}
	if err := sc.ensureUnlinked(ctx, sim.ID); err != nil {
		return Term{}, "", err
	}
	holderID := *sim.CurrentUserID

	prev := cloneSim(sim)
	sim.Status = StatusAvailable
	sim.CurrentUserID = nil
	if err := sc.UpdateSim(ctx, sim); err != nil {
		return Term{}, "", err
	}
	if err := sc.record(ctx, audit.KindSimCard, sim.ID, audit.ActionCheckin, req.Notes, prev, returnSnapshot(sim.Status, req.Checklist)); err != nil {
		return Term{}, "", err
	}
	term, err := sc.appendTerm(ctx, holderID, TermReturn, describeSim(sim))
	return term, holderID, err
}

// ensureUnlinked impede movimentar diretamente um chip que acompanha um
// dispositivo.
func (sc *txScope) ensureUnlinked(ctx context.Context, simID string) error {
	linked, err := sc.ListDevices(ctx, DeviceFilter{LinkedSimID: simID, Limit: 1})
	if err != nil {
		return err
	}
	if len(linked) > 0 {
		return ErrSimLinked
	}
	return nil
}

func (sc *txScope) appendTerm(ctx context.Context, userID string, kind TermType, details string) (Term, error) {
	term := Term{
		ID:           sc.svc.newID(),
		UserID:       userID,
		Type:         kind,
		AssetDetails: details,
		Date:         sc.svc.now().UTC(),
	}
	if err := sc.InsertTerm(ctx, term); err != nil {
		return Term{}, err
	}
	return term, nil
}

func mintAccessories(items []Accessory, newID func() string) []Accessory {
	out := make([]Accessory, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" && item.AccessoryTypeID == "" {
			continue
		}
		out = append(out, Accessory{ID: newID(), AccessoryTypeID: item.AccessoryTypeID, Name: name})
	}
	return out
}

func assignmentSnapshot(status Status, userID *string, holderName string) map[string]any {
	return map[string]any{
		"status":        status,
		"currentUserId": derefString(userID),
		"holderName":    holderName,
	}
}

func returnSnapshot(status Status, checklist map[string]bool) map[string]any {
	out := map[string]any{
		"status":        status,
		"currentUserId": nil,
	}
	if len(checklist) > 0 {
		out["returnedChecklist"] = checklist
		out["missingItems"] = missingItems(checklist)
	}
	return out
}

func missingItems(checklist map[string]bool) []string {
	missing := make([]string, 0)
	for item, returned := range checklist {
		if !returned {
			missing = append(missing, item)
		}
	}
	sort.Strings(missing)
	return missing
}

func inactivationNote(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return "Inativado na devolução"
	}
	return "Inativado na devolução: " + notes
}

// pendencySnapshot é o trecho de newData lido para achar pendências.
type pendencySnapshot struct {
	MissingItems []string `json:"missingItems"`
}

// Pendencies lista os itens ainda não devolvidos desde a última devolução.
func (s *Service) Pendencies(ctx context.Context, kind AssetKind, assetID string) ([]string, error) {
	var open []string
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		if err := assetExists(ctx, tx, kind, assetID); err != nil {
			return err
		}
		var err error
		open, err = openPendencies(ctx, tx, kind, assetID)
		return err
	})
	return open, err
}

// ResolvePendency registra a devolução posterior de itens que faltaram na
// última devolução. items vazio resolve todos.
func (s *Service) ResolvePendency(ctx context.Context, actor Actor, kind AssetKind, assetID string, items []string, notes string) ([]string, error) {
	var remaining []string
	err := s.mutate(ctx, actor, "resolve_pendency", func(ctx context.Context, sc *txScope) error {
		if err := assetExists(ctx, sc, kind, assetID); err != nil {
			return err
		}
		open, err := openPendencies(ctx, sc, kind, assetID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			return ErrNoPendency
		}

		wanted := make(map[string]struct{}, len(items))
		for _, item := range items {
			wanted[strings.TrimSpace(item)] = struct{}{}
		}
		resolved := make([]string, 0)
		remaining = make([]string, 0)
		for _, item := range open {
			if _, ok := wanted[item]; ok || len(items) == 0 {
				resolved = append(resolved, item)
			} else {
				remaining = append(remaining, item)
			}
		}
		if len(resolved) == 0 {
			return ErrNoPendency
		}

		prev := map[string]any{"missingItems": open}
		next := map[string]any{"missingItems": remaining, "resolvedItems": resolved}
		return sc.record(ctx, auditKind(kind), assetID, audit.ActionResolvePendency, notes, prev, next)
	})
	if err != nil {
		return nil, err
	}
	return remaining, nil
}

func openPendencies(ctx context.Context, tx Tx, kind AssetKind, assetID string) ([]string, error) {
	checkins, err := tx.ListLogs(ctx, audit.Filter{AssetID: assetID, AssetType: auditKind(kind), Action: audit.ActionCheckin, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(checkins) == 0 {
		return nil, nil
	}
	latest := checkins[0]

	resolutions, err := tx.ListLogs(ctx, audit.Filter{AssetID: assetID, AssetType: auditKind(kind), Action: audit.ActionResolvePendency, Limit: 1})
	if err != nil {
		return nil, err
	}
	source := latest
	if len(resolutions) > 0 && audit.Newer(resolutions[0], latest) {
		source = resolutions[0]
	}

	var snap pendencySnapshot
	if len(source.NewData) > 0 {
		if err := json.Unmarshal(source.NewData, &snap); err != nil {
			return nil, nil
		}
	}
	return snap.MissingItems, nil
}

func assetExists(ctx context.Context, tx Tx, kind AssetKind, assetID string) error {
	switch kind {
	case AssetDevice:
		_, err := tx.GetDevice(ctx, assetID)
		return err
	case AssetSimCard:
		_, err := tx.GetSim(ctx, assetID)
		return err
	}
	return ErrInvalidAssetKind
}

func auditKind(kind AssetKind) audit.Kind {
	if kind == AssetSimCard {
		return audit.KindSimCard
	}
	return audit.KindDevice
}
