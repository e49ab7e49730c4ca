package inventory

import (
	"context"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/util"
)

// Dispositivos

// CreateDevice cadastra um dispositivo disponível. Status, responsável e chip
// vinculado só mudam pelas operações de ciclo de vida.
func (s *Service) CreateDevice(ctx context.Context, actor Actor, d Device) (Device, error) {
	err := s.mutate(ctx, actor, "create_device", func(ctx context.Context, sc *txScope) error {
		d.ID = sc.svc.newID()
		d.Status = StatusAvailable
		d.CurrentUserID = nil
		d.LinkedSimID = nil
		d.Accessories = mintAccessories(d.Accessories, sc.svc.newID)
		if err := sc.validateDevice(ctx, &d); err != nil {
			return err
		}
		if err := sc.InsertDevice(ctx, d); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindDevice, d.ID, audit.ActionCreate, "", nil, d)
	})
	if err != nil {
		return Device{}, err
	}
	return d, nil
}

// UpdateDevice altera dados cadastrais preservando o estado de ciclo de vida.
func (s *Service) UpdateDevice(ctx context.Context, actor Actor, id string, d Device) (Device, error) {
	var updated Device
	err := s.mutate(ctx, actor, "update_device", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetDevice(ctx, id)
		if err != nil {
			return err
		}
		updated = d
		updated.ID = current.ID
		updated.Status = current.Status
		updated.CurrentUserID = current.CurrentUserID
		updated.LinkedSimID = current.LinkedSimID
		updated.Accessories = current.Accessories
		updated.InvoiceFile = current.InvoiceFile
		if err := sc.validateDevice(ctx, &updated); err != nil {
			return err
		}
		if err := sc.UpdateDevice(ctx, updated); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindDevice, id, audit.ActionUpdate, "", current, updated)
	})
	if err != nil {
		return Device{}, err
	}
	return updated, nil
}

func (sc *txScope) validateDevice(ctx context.Context, d *Device) error {
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	d.SectorID = blankToNil(d.SectorID)
	if d.SerialNumber == "" {
		return ErrMissingIdentifier
	}
	dupes, err := sc.ListDevices(ctx, DeviceFilter{SerialNumber: d.SerialNumber, Limit: NoLimit})
	if err != nil {
		return err
	}
	for _, other := range dupes {
		if other.ID != d.ID {
			return ErrDuplicateSerial
		}
	}

	model, err := sc.GetCatalogItem(ctx, CatalogModel, d.ModelID)
	if err != nil {
		return asReference(err)
	}
	if d.SectorID != nil {
		if _, err := sc.GetCatalogItem(ctx, CatalogSector, *d.SectorID); err != nil {
			return asReference(err)
		}
	}
	if len(d.CustomData) == 0 {
		return nil
	}

	allowed := map[string]struct{}{}
	if model.AssetTypeID != nil {
		assetType, err := sc.GetCatalogItem(ctx, CatalogAssetType, *model.AssetTypeID)
		if err != nil {
			return asReference(err)
		}
		for _, fieldID := range assetType.CustomFieldIDs {
			allowed[fieldID] = struct{}{}
		}
	}
	for fieldID := range d.CustomData {
		if _, ok := allowed[fieldID]; !ok {
			return ErrInvalidCustomField
		}
	}
	return nil
}

// AttachInvoice registra a nota fiscal do dispositivo. fileKey é a chave do
// arquivo já enviado ao armazenamento de anexos.
func (s *Service) AttachInvoice(ctx context.Context, actor Actor, deviceID, invoiceNumber, fileKey string) (Device, error) {
	var device Device
	err := s.mutate(ctx, actor, "attach_invoice", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetDevice(ctx, deviceID)
		if err != nil {
			return err
		}
		device = cloneDevice(current)
		if strings.TrimSpace(invoiceNumber) != "" {
			device.InvoiceNumber = invoiceNumber
		}
		device.InvoiceFile = fileKey
		if err := sc.UpdateDevice(ctx, device); err != nil {
			return err
		}
		return sc.record(ctx, audit.KindDevice, deviceID, audit.ActionUpdate, "Nota fiscal anexada", current, device)
	})
	if err != nil {
		return Device{}, err
	}
	return device, nil
}

// GetDevice busca um dispositivo.
func (s *Service) GetDevice(ctx context.Context, id string) (Device, error) {
	var d Device
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		d, err = tx.GetDevice(ctx, id)
		return err
	})
	return d, err
}

// ListDevices lista dispositivos.
func (s *Service) ListDevices(ctx context.Context, filter DeviceFilter) ([]Device, error) {
	var out []Device
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListDevices(ctx, filter)
		return err
	})
	return out, err
}

// Chips

// CreateSim cadastra um chip disponível.
func (s *Service) CreateSim(ctx context.Context, actor Actor, sim SimCard) (SimCard, error) {
	err := s.mutate(ctx, actor, "create_sim", func(ctx context.Context, sc *txScope) error {
		sim.ID = sc.svc.newID()
		sim.PhoneNumber = strings.TrimSpace(sim.PhoneNumber)
		sim.Status = StatusAvailable
		sim.CurrentUserID = nil
		if err := sc.validateSim(ctx, sim); err != nil {
			return err
		}
		if err := sc.InsertSim(ctx, sim); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindSimCard, sim.ID, audit.ActionCreate, "", nil, sim)
	})
	if err != nil {
		return SimCard{}, err
	}
	return sim, nil
}

// UpdateSim altera dados cadastrais do chip.
func (s *Service) UpdateSim(ctx context.Context, actor Actor, id string, sim SimCard) (SimCard, error) {
	var updated SimCard
	err := s.mutate(ctx, actor, "update_sim", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetSim(ctx, id)
		if err != nil {
			return err
		}
		updated = sim
		updated.ID = current.ID
		updated.PhoneNumber = strings.TrimSpace(sim.PhoneNumber)
		updated.Status = current.Status
		updated.CurrentUserID = current.CurrentUserID
		if err := sc.validateSim(ctx, updated); err != nil {
			return err
		}
		if err := sc.UpdateSim(ctx, updated); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindSimCard, id, audit.ActionUpdate, "", current, updated)
	})
	if err != nil {
		return SimCard{}, err
	}
	return updated, nil
}

// DeleteSim exclui um chip disponível e desvinculado, guardando cópia integral
// no histórico.
func (s *Service) DeleteSim(ctx context.Context, actor Actor, id, reason string) error {
	return s.mutate(ctx, actor, "delete_sim", func(ctx context.Context, sc *txScope) error {
		sim, err := sc.GetSim(ctx, id)
		if err != nil {
			return err
		}
		if sim.Status != StatusAvailable {
			return ErrStillInUse
		}
		if err := sc.ensureUnlinked(ctx, id); err != nil {
			return err
		}
		if err := sc.DeleteSim(ctx, id); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.recordDeletion(ctx, audit.KindSimCard, id, reason, sim, nil)
	})
}

func (sc *txScope) validateSim(ctx context.Context, sim SimCard) error {
	if sim.PhoneNumber == "" {
		return ErrMissingIdentifier
	}
	dupes, err := sc.ListSims(ctx, SimFilter{PhoneNumber: sim.PhoneNumber, Limit: NoLimit})
	if err != nil {
		return err
	}
	for _, other := range dupes {
		if other.ID != sim.ID {
			return ErrDuplicatePhone
		}
	}
	return nil
}

// GetSim busca um chip.
func (s *Service) GetSim(ctx context.Context, id string) (SimCard, error) {
	var sim SimCard
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		sim, err = tx.GetSim(ctx, id)
		return err
	})
	return sim, err
}

// ListSims lista chips.
func (s *Service) ListSims(ctx context.Context, filter SimFilter) ([]SimCard, error) {
	var out []SimCard
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListSims(ctx, filter)
		return err
	})
	return out, err
}

// Colaboradores

// CreateUser cadastra um colaborador ativo.
func (s *Service) CreateUser(ctx context.Context, actor Actor, u User) (User, error) {
	err := s.mutate(ctx, actor, "create_user", func(ctx context.Context, sc *txScope) error {
		u.ID = sc.svc.newID()
		u.Active = true
		u.Terms = nil
		if err := sc.validateUser(ctx, &u); err != nil {
			return err
		}
		if err := sc.InsertUser(ctx, u); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindUser, u.ID, audit.ActionCreate, "", nil, u)
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateUser altera dados cadastrais. A situação só muda por ativação ou
// inativação.
func (s *Service) UpdateUser(ctx context.Context, actor Actor, id string, u User) (User, error) {
	var updated User
	err := s.mutate(ctx, actor, "update_user", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetUser(ctx, id)
		if err != nil {
			return err
		}
		updated = u
		updated.ID = current.ID
		updated.Active = current.Active
		updated.Terms = nil
		if err := sc.validateUser(ctx, &updated); err != nil {
			return err
		}
		if err := sc.UpdateUser(ctx, updated); err != nil {
			return err
		}
		sc.touchLookups()
		return sc.record(ctx, audit.KindUser, id, audit.ActionUpdate, "", current, updated)
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

func (sc *txScope) validateUser(ctx context.Context, u *User) error {
	u.FullName = strings.TrimSpace(u.FullName)
	u.SectorID = blankToNil(u.SectorID)
	if u.FullName == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(u.CPF) == "" {
		return ErrMissingIdentifier
	}
	cpf, err := util.NormalizeCPF(u.CPF)
	if err != nil {
		return ErrInvalidCPF
	}
	u.CPF = cpf
	if err := util.ValidateEmail(u.Email); err != nil {
		return ErrInvalidEmail
	}
	u.Email = strings.TrimSpace(u.Email)

	dupes, err := sc.ListUsers(ctx, UserFilter{CPF: cpf, Limit: NoLimit})
	if err != nil {
		return err
	}
	for _, other := range dupes {
		if other.ID != u.ID {
			return ErrDuplicateCPF
		}
	}
	if u.SectorID != nil {
		if _, err := sc.GetCatalogItem(ctx, CatalogSector, *u.SectorID); err != nil {
			return asReference(err)
		}
	}
	return nil
}

// GetUser busca o colaborador com seus termos em ordem cronológica.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if u, err = tx.GetUser(ctx, id); err != nil {
			return err
		}
		u.Terms, err = tx.ListTerms(ctx, id)
		return err
	})
	return u, err
}

// ListUsers lista colaboradores sem os termos.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	var out []User
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListUsers(ctx, filter)
		return err
	})
	return out, err
}

// Termos

// GetTerm busca um termo.
func (s *Service) GetTerm(ctx context.Context, id string) (Term, error) {
	var term Term
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		term, err = tx.GetTerm(ctx, id)
		return err
	})
	return term, err
}

// ListTerms lista os termos do colaborador.
func (s *Service) ListTerms(ctx context.Context, userID string) ([]Term, error) {
	var out []Term
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListTerms(ctx, userID)
		return err
	})
	return out, err
}

// AttachTermFile associa a cópia assinada ao termo. A descrição do ativo no
// termo não é alterada.
func (s *Service) AttachTermFile(ctx context.Context, actor Actor, termID, fileKey string) (Term, error) {
	var term Term
	err := s.mutate(ctx, actor, "attach_term_file", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetTerm(ctx, termID)
		if err != nil {
			return err
		}
		term = current
		term.FileURL = fileKey
		if err := sc.UpdateTerm(ctx, term); err != nil {
			return err
		}
		return sc.record(ctx, audit.KindTerm, termID, audit.ActionUpdate, "Termo assinado anexado", current, term)
	})
	if err != nil {
		return Term{}, err
	}
	return term, nil
}

// Contas de software

// CreateAccount cadastra uma conta ou licença.
func (s *Service) CreateAccount(ctx context.Context, actor Actor, a SoftwareAccount) (SoftwareAccount, error) {
	err := s.mutate(ctx, actor, "create_account", func(ctx context.Context, sc *txScope) error {
		a.ID = sc.svc.newID()
		if err := sc.validateAccount(ctx, &a); err != nil {
			return err
		}
		if err := sc.InsertAccount(ctx, a); err != nil {
			return err
		}
		return sc.record(ctx, audit.KindSoftwareAccount, a.ID, audit.ActionCreate, "", nil, accountAudit(a, nil))
	})
	if err != nil {
		return SoftwareAccount{}, err
	}
	return a, nil
}

// UpdateAccount altera uma conta existente.
func (s *Service) UpdateAccount(ctx context.Context, actor Actor, id string, a SoftwareAccount) (SoftwareAccount, error) {
	err := s.mutate(ctx, actor, "update_account", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		a.ID = current.ID
		if err := sc.validateAccount(ctx, &a); err != nil {
			return err
		}
		if err := sc.UpdateAccount(ctx, a); err != nil {
			return err
		}
		return sc.record(ctx, audit.KindSoftwareAccount, id, audit.ActionUpdate, "", accountAudit(current, nil), accountAudit(a, &current))
	})
	if err != nil {
		return SoftwareAccount{}, err
	}
	return a, nil
}

// DeleteAccount exclui a conta guardando cópia no histórico, sem segredos.
func (s *Service) DeleteAccount(ctx context.Context, actor Actor, id, reason string) error {
	return s.mutate(ctx, actor, "delete_account", func(ctx context.Context, sc *txScope) error {
		current, err := sc.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		if err := sc.DeleteAccount(ctx, id); err != nil {
			return err
		}
		return sc.recordDeletion(ctx, audit.KindSoftwareAccount, id, reason, accountAudit(current, nil), nil)
	})
}

const (
	secretMask    = "********"
	secretChanged = "******** (alterada)"
)

// accountAudit é a conta como gravada no histórico: senha e chave de licença
// nunca aparecem, só a indicação de que existem ou mudaram em relação a
// before.
func accountAudit(a SoftwareAccount, before *SoftwareAccount) SoftwareAccount {
	out := a
	out.Password = maskSecret(a.Password, before != nil && before.Password != a.Password)
	out.LicenseKey = maskSecret(a.LicenseKey, before != nil && before.LicenseKey != a.LicenseKey)
	return out
}

func maskSecret(value string, changed bool) string {
	switch {
	case value == "":
		return ""
	case changed:
		return secretChanged
	default:
		return secretMask
	}
}

func (sc *txScope) validateAccount(ctx context.Context, a *SoftwareAccount) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return ErrNameRequired
	}
	a.UserID = blankToNil(a.UserID)
	a.DeviceID = blankToNil(a.DeviceID)
	if a.UserID != nil && a.DeviceID != nil {
		return ErrInvalidOwner
	}
	if a.UserID != nil {
		if _, err := sc.GetUser(ctx, *a.UserID); err != nil {
			return asReference(err)
		}
	}
	if a.DeviceID != nil {
		if _, err := sc.GetDevice(ctx, *a.DeviceID); err != nil {
			return asReference(err)
		}
	}
	return nil
}

// GetAccount busca uma conta.
func (s *Service) GetAccount(ctx context.Context, id string) (SoftwareAccount, error) {
	var a SoftwareAccount
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		a, err = tx.GetAccount(ctx, id)
		return err
	})
	return a, err
}

// ListAccounts lista contas de software.
func (s *Service) ListAccounts(ctx context.Context, filter AccountFilter) ([]SoftwareAccount, error) {
	var out []SoftwareAccount
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListAccounts(ctx, filter)
		return err
	})
	return out, err
}

// asReference converte "não encontrado" de um registro referenciado em erro
// de integridade do registro que o referencia.
func asReference(err error) error {
	if KindOf(err) == KindNotFound {
		return ErrInvalidReference
	}
	return err
}
