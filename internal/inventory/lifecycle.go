package inventory

import (
	"context"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// RetireDevice descarta o dispositivo. O chip vinculado é liberado e o
// registro completo anterior fica guardado no evento de exclusão.
func (s *Service) RetireDevice(ctx context.Context, actor Actor, deviceID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return s.mutate(ctx, actor, "retire_device", func(ctx context.Context, sc *txScope) error {
		device, err := sc.GetDevice(ctx, deviceID)
		if err != nil {
			return err
		}
		if device.Status == StatusRetired {
			return ErrAlreadyRetired
		}

		if device.LinkedSimID != nil {
			if err := sc.releaseSim(ctx, *device.LinkedSimID, audit.ActionUpdate, "Chip desvinculado: dispositivo descartado"); err != nil {
				return err
			}
		}

		prev := cloneDevice(device)
		device.Status = StatusRetired
		device.CurrentUserID = nil
		device.LinkedSimID = nil
		if err := sc.UpdateDevice(ctx, device); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.recordDeletion(ctx, audit.KindDevice, device.ID, reason, prev, device)
	})
}

// RestoreDevice devolve um dispositivo descartado ao estoque.
func (s *Service) RestoreDevice(ctx context.Context, actor Actor, deviceID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return s.mutate(ctx, actor, "restore_device", func(ctx context.Context, sc *txScope) error {
		device, err := sc.GetDevice(ctx, deviceID)
		if err != nil {
			return err
		}
		if device.Status != StatusRetired {
			return ErrNotRetired
		}

		prev := cloneDevice(device)
		device.Status = StatusAvailable
		device.CurrentUserID = nil
		if err := sc.UpdateDevice(ctx, device); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindDevice, device.ID, audit.ActionRestore, reason, prev, device)
	})
}

// ToggleMaintenance alterna entre Disponível e Manutenção e devolve o novo
// status. Dispositivos em uso precisam ser devolvidos antes.
func (s *Service) ToggleMaintenance(ctx context.Context, actor Actor, deviceID, notes string) (Status, error) {
	var next Status
	err := s.mutate(ctx, actor, "toggle_maintenance", func(ctx context.Context, sc *txScope) error {
		device, err := sc.GetDevice(ctx, deviceID)
		if err != nil {
			return err
		}

		var action audit.Action
		switch device.Status {
		case StatusAvailable:
			next, action = StatusMaintenance, audit.ActionMaintenanceStart
		case StatusMaintenance:
			next, action = StatusAvailable, audit.ActionMaintenanceEnd
		case StatusInUse:
			return ErrStillInUse
		default:
			return ErrAlreadyRetired
		}

		prev := cloneDevice(device)
		device.Status = next
		if err := sc.UpdateDevice(ctx, device); err != nil {
			return err
		}
		return sc.record(ctx, audit.KindDevice, device.ID, action, notes, prev, device)
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// SetLinkedSim troca o chip vinculado ao dispositivo. simID nil desvincula.
// O chip novo só é atribuído ao responsável quando o dispositivo está em uso.
func (s *Service) SetLinkedSim(ctx context.Context, actor Actor, deviceID string, simID *string) error {
	if simID != nil && strings.TrimSpace(*simID) == "" {
		simID = nil
	}
	return s.mutate(ctx, actor, "set_linked_sim", func(ctx context.Context, sc *txScope) error {
		device, err := sc.GetDevice(ctx, deviceID)
		if err != nil {
			return err
		}
		if device.Status == StatusRetired {
			return ErrAlreadyRetired
		}
		if sameRef(device.LinkedSimID, simID) {
			return nil
		}

		var claimed *SimCard
		if simID != nil {
			sim, err := sc.GetSim(ctx, *simID)
			if err != nil {
				return err
			}
			linked, err := sc.ListDevices(ctx, DeviceFilter{LinkedSimID: sim.ID, Limit: NoLimit})
			if err != nil {
				return err
			}
			for _, other := range linked {
				if other.ID != device.ID {
					return ErrSimAlreadyLinked
				}
			}
			if sim.Status == StatusInUse && !(device.Status == StatusInUse && sameRef(sim.CurrentUserID, device.CurrentUserID)) {
				return ErrAssetNotAvailable
			}
			claimed = &sim
		}

		if device.LinkedSimID != nil {
			if err := sc.releaseSim(ctx, *device.LinkedSimID, audit.ActionUpdate, "Chip desvinculado do dispositivo"); err != nil {
				return err
			}
		}

		if claimed != nil && device.Status == StatusInUse && claimed.Status != StatusInUse {
			prev := cloneSim(*claimed)
			claimed.Status = StatusInUse
			claimed.CurrentUserID = strPtr(*device.CurrentUserID)
			if err := sc.UpdateSim(ctx, *claimed); err != nil {
				return err
			}
			if err := sc.record(ctx, audit.KindSimCard, claimed.ID, audit.ActionUpdate, "Chip vinculado a dispositivo em uso", prev, *claimed); err != nil {
				return err
			}
		}

		prev := cloneDevice(device)
		device.LinkedSimID = simID
		if err := sc.UpdateDevice(ctx, device); err != nil {
			return err
		}
		return sc.record(ctx, audit.KindDevice, device.ID, audit.ActionUpdate, "", prev, device)
	})
}

// ToggleUserActive inverte a situação do colaborador e devolve o novo valor.
func (s *Service) ToggleUserActive(ctx context.Context, actor Actor, userID, reason string) (bool, error) {
	var active bool
	err := s.mutate(ctx, actor, "toggle_user_active", func(ctx context.Context, sc *txScope) error {
		user, err := sc.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.Active {
			active = false
			return sc.inactivateUser(ctx, user, reason)
		}
		active = true
		return sc.reactivateUser(ctx, user, reason)
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// InactivateUser inativa o colaborador, que não pode ter ativos em uso.
func (s *Service) InactivateUser(ctx context.Context, actor Actor, userID, reason string) error {
	return s.mutate(ctx, actor, "inactivate_user", func(ctx context.Context, sc *txScope) error {
		user, err := sc.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Active {
			return ErrAlreadyInactive
		}
		return sc.inactivateUser(ctx, user, reason)
	})
}

// ReactivateUser reativa o colaborador; o motivo é obrigatório.
func (s *Service) ReactivateUser(ctx context.Context, actor Actor, userID, reason string) error {
	return s.mutate(ctx, actor, "reactivate_user", func(ctx context.Context, sc *txScope) error {
		user, err := sc.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.Active {
			return ErrAlreadyActive
		}
		return sc.reactivateUser(ctx, user, reason)
	})
}

func (sc *txScope) inactivateUser(ctx context.Context, user User, reason string) error {
	held, err := sc.CountHoldings(ctx, user.ID)
	if err != nil {
		return err
	}
	if held > 0 {
		return ErrHasActiveAssets
	}
	prev := cloneUser(user)
	user.Active = false
	if err := sc.UpdateUser(ctx, user); err != nil {
		return err
	}
	return sc.record(ctx, audit.KindUser, user.ID, audit.ActionInactivate, reason, prev, cloneUser(user))
}

func (sc *txScope) reactivateUser(ctx context.Context, user User, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	prev := cloneUser(user)
	user.Active = true
	if err := sc.UpdateUser(ctx, user); err != nil {
		return err
	}
	return sc.record(ctx, audit.KindUser, user.ID, audit.ActionActivate, reason, prev, cloneUser(user))
}

// releaseSim devolve o chip ao estoque, sem responsável.
func (sc *txScope) releaseSim(ctx context.Context, simID string, action audit.Action, notes string) error {
	sim, err := sc.GetSim(ctx, simID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil
		}
		return err
	}
	if sim.Status == StatusAvailable && sim.CurrentUserID == nil {
		return nil
	}
	prev := cloneSim(sim)
	sim.Status = StatusAvailable
	sim.CurrentUserID = nil
	if err := sc.UpdateSim(ctx, sim); err != nil {
		return err
	}
	return sc.record(ctx, audit.KindSimCard, sim.ID, action, notes, prev, sim)
}
