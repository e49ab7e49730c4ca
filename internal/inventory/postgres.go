package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/db"
)

var _ Store = (*PostgresStore)(nil)

const dbTimeout = 5 * time.Second

// PostgresStore persiste o inventário no Postgres. Cada WithTx é uma
// transação em que leituras individuais usam SELECT ... FOR UPDATE; ReadTx
// abre uma transação somente leitura, sem bloqueios.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore cria o store sobre um pool já aberto.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithTx executa fn numa transação; qualquer erro desfaz tudo.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.run(ctx, pgx.TxOptions{}, false, fn)
}

// ReadTx executa consultas numa transação somente leitura.
func (s *PostgresStore) ReadTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.run(ctx, db.ReadOnly, true, fn)
}

func (s *PostgresStore) run(ctx context.Context, opts pgx.TxOptions, readOnly bool, fn func(ctx context.Context, tx Tx) error) error {
	err := db.WithTx(ctx, s.pool, opts, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx, readOnly: readOnly})
	})
	if err != nil && KindOf(err) == 0 && !IsStorage(err) {
		return &StorageError{Op: "transação", Err: err}
	}
	return err
}

// Ping verifica a conexão.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

type pgTx struct {
	tx       pgx.Tx
	readOnly bool
}

// lock completa SELECTs de registro único conforme o modo da transação.
func (t *pgTx) lock() string {
	if t.readOnly {
		return ""
	}
	return " FOR UPDATE"
}

var uniqueViolations = map[string]error{
	"users_cpf_key":              ErrDuplicateCPF,
	"sim_cards_phone_number_key": ErrDuplicatePhone,
	"devices_serial_number_key":  ErrDuplicateSerial,
	"devices_linked_sim_id_key":  ErrSimAlreadyLinked,
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if mapped, ok := uniqueViolations[pgErr.ConstraintName]; ok {
				return mapped
			}
		case "23503":
			return ErrInvalidReference
		}
	}
	return &StorageError{Op: op, Err: err}
}

func requireRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// where monta cláusulas com placeholders numerados.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) page(limit, offset int) string {
	limit, offset = normalizeLimit(limit, offset)
	w.args = append(w.args, offset)
	out := fmt.Sprintf(" OFFSET $%d", len(w.args))
	if limit != NoLimit {
		w.args = append(w.args, limit)
		out += fmt.Sprintf(" LIMIT $%d", len(w.args))
	}
	return out
}

// Dispositivos

const deviceColumns = `id, model_id, serial_number, asset_tag, imei, pulsus_id, status, current_user_id,
	sector_id, linked_sim_id, accessories, purchase_date, purchase_cost, invoice_number, invoice_file,
	custom_data, notes`

func scanDevice(row pgx.Row) (Device, error) {
	var (
		d           Device
		status      string
		accessories []byte
		customData  []byte
	)
	err := row.Scan(&d.ID, &d.ModelID, &d.SerialNumber, &d.AssetTag, &d.IMEI, &d.PulsusID, &status,
		&d.CurrentUserID, &d.SectorID, &d.LinkedSimID, &accessories, &d.PurchaseDate, &d.PurchaseCost,
		&d.InvoiceNumber, &d.InvoiceFile, &customData, &d.Notes)
	if err != nil {
		return Device{}, err
	}
	d.Status = Status(status)
	if len(accessories) > 0 {
		if err := json.Unmarshal(accessories, &d.Accessories); err != nil {
			return Device{}, err
		}
	}
	if len(customData) > 0 {
		if err := json.Unmarshal(customData, &d.CustomData); err != nil {
			return Device{}, err
		}
	}
	return d, nil
}

func deviceArgs(d Device) ([]any, error) {
	accessories := d.Accessories
	if accessories == nil {
		accessories = []Accessory{}
	}
	accJSON, err := json.Marshal(accessories)
	if err != nil {
		return nil, err
	}
	customData := d.CustomData
	if customData == nil {
		customData = map[string]string{}
	}
	customJSON, err := json.Marshal(customData)
	if err != nil {
		return nil, err
	}
	return []any{d.ID, d.ModelID, d.SerialNumber, d.AssetTag, d.IMEI, d.PulsusID, string(d.Status),
		d.CurrentUserID, d.SectorID, d.LinkedSimID, accJSON, d.PurchaseDate, d.PurchaseCost,
		d.InvoiceNumber, d.InvoiceFile, customJSON, d.Notes}, nil
}

func (t *pgTx) GetDevice(ctx context.Context, id string) (Device, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`+t.lock(), id)
	d, err := scanDevice(row)
	return d, mapError("buscar dispositivo", err)
}

func (t *pgTx) ListDevices(ctx context.Context, filter DeviceFilter) ([]Device, error) {
	var w where
	if filter.Status != "" {
		w.add("status = $%d", string(filter.Status))
	}
	if filter.CurrentUserID != "" {
		w.add("current_user_id = $%d", filter.CurrentUserID)
	}
	if filter.LinkedSimID != "" {
		w.add("linked_sim_id = $%d", filter.LinkedSimID)
	}
	if filter.SerialNumber != "" {
		w.add("lower(serial_number) = lower($%d)", filter.SerialNumber)
	}
	if filter.ModelID != "" {
		w.add("model_id = $%d", filter.ModelID)
	}
	query := `SELECT ` + deviceColumns + ` FROM devices` + w.sql() + ` ORDER BY serial_number, id` + w.page(filter.Limit, filter.Offset)

	rows, err := t.tx.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("listar dispositivos", err)
	}
	defer rows.Close()

	out := make([]Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, mapError("listar dispositivos", err)
		}
		out = append(out, d)
	}
	return out, mapError("listar dispositivos", rows.Err())
}

func (t *pgTx) InsertDevice(ctx context.Context, d Device) error {
	args, err := deviceArgs(d)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, args...)
	return mapError("inserir dispositivo", err)
}

func (t *pgTx) UpdateDevice(ctx context.Context, d Device) error {
	args, err := deviceArgs(d)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE devices SET model_id = $2, serial_number = $3, asset_tag = $4, imei = $5, pulsus_id = $6,
			status = $7, current_user_id = $8, sector_id = $9, linked_sim_id = $10, accessories = $11,
			purchase_date = $12, purchase_cost = $13, invoice_number = $14, invoice_file = $15,
			custom_data = $16, notes = $17
		WHERE id = $1
	`, args...)
	if err != nil {
		return mapError("atualizar dispositivo", err)
	}
	return requireRow(tag)
}

// Chips

const simColumns = `id, phone_number, iccid, operator, plan_details, status, current_user_id, notes`

func scanSim(row pgx.Row) (SimCard, error) {
	var (
		s      SimCard
		status string
	)
	if err := row.Scan(&s.ID, &s.PhoneNumber, &s.ICCID, &s.Operator, &s.PlanDetails, &status, &s.CurrentUserID, &s.Notes); err != nil {
		return SimCard{}, err
	}
	s.Status = Status(status)
	return s, nil
}

func (t *pgTx) GetSim(ctx context.Context, id string) (SimCard, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+simColumns+` FROM sim_cards WHERE id = $1`+t.lock(), id)
	s, err := scanSim(row)
	return s, mapError("buscar chip", err)
}

func (t *pgTx) ListSims(ctx context.Context, filter SimFilter) ([]SimCard, error) {
	var w where
	if filter.Status != "" {
		w.add("status = $%d", string(filter.Status))
	}
	if filter.CurrentUserID != "" {
		w.add("current_user_id = $%d", filter.CurrentUserID)
	}
	if filter.PhoneNumber != "" {
		w.add("phone_number = $%d", filter.PhoneNumber)
	}
	query := `SELECT ` + simColumns + ` FROM sim_cards` + w.sql() + ` ORDER BY phone_number, id` + w.page(filter.Limit, filter.Offset)

	rows, err := t.tx.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("listar chips", err)
	}
	defer rows.Close()

	out := make([]SimCard, 0)
	for rows.Next() {
		s, err := scanSim(rows)
		if err != nil {
			return nil, mapError("listar chips", err)
		}
		out = append(out, s)
	}
	return out, mapError("listar chips", rows.Err())
}

func (t *pgTx) InsertSim(ctx context.Context, s SimCard) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sim_cards (`+simColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, s.PhoneNumber, s.ICCID, s.Operator, s.PlanDetails, string(s.Status), s.CurrentUserID, s.Notes)
	return mapError("inserir chip", err)
}

func (t *pgTx) UpdateSim(ctx context.Context, s SimCard) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE sim_cards SET phone_number = $2, iccid = $3, operator = $4, plan_details = $5,
			status = $6, current_user_id = $7, notes = $8
		WHERE id = $1
	`, s.ID, s.PhoneNumber, s.ICCID, s.Operator, s.PlanDetails, string(s.Status), s.CurrentUserID, s.Notes)
	if err != nil {
		return mapError("atualizar chip", err)
	}
	return requireRow(tag)
}

func (t *pgTx) DeleteSim(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM sim_cards WHERE id = $1`, id)
	if err != nil {
		return mapError("excluir chip", err)
	}
	return requireRow(tag)
}

// Colaboradores

const userColumns = `id, full_name, email, cpf, rg, pis, job_title, sector_id, active`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.CPF, &u.RG, &u.PIS, &u.JobTitle, &u.SectorID, &u.Active)
	return u, err
}

func (t *pgTx) GetUser(ctx context.Context, id string) (User, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`+t.lock(), id)
	u, err := scanUser(row)
	return u, mapError("buscar colaborador", err)
}

func (t *pgTx) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	var w where
	if filter.CPF != "" {
		w.add("cpf = $%d", filter.CPF)
	}
	if filter.SectorID != "" {
		w.add("sector_id = $%d", filter.SectorID)
	}
	if filter.Active != nil {
		w.add("active = $%d", *filter.Active)
	}
	query := `SELECT ` + userColumns + ` FROM users` + w.sql() + ` ORDER BY full_name, id` + w.page(filter.Limit, filter.Offset)

	rows, err := t.tx.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("listar colaboradores", err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("listar colaboradores", err)
		}
		out = append(out, u)
	}
	return out, mapError("listar colaboradores", rows.Err())
}

func (t *pgTx) InsertUser(ctx context.Context, u User) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.FullName, u.Email, u.CPF, u.RG, u.PIS, u.JobTitle, u.SectorID, u.Active)
	return mapError("inserir colaborador", err)
}

func (t *pgTx) UpdateUser(ctx context.Context, u User) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE users SET full_name = $2, email = $3, cpf = $4, rg = $5, pis = $6, job_title = $7,
			sector_id = $8, active = $9
		WHERE id = $1
	`, u.ID, u.FullName, u.Email, u.CPF, u.RG, u.PIS, u.JobTitle, u.SectorID, u.Active)
	if err != nil {
		return mapError("atualizar colaborador", err)
	}
	return requireRow(tag)
}

func (t *pgTx) CountHoldings(ctx context.Context, userID string) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM devices WHERE current_user_id = $1)
		     + (SELECT count(*) FROM sim_cards WHERE current_user_id = $1)
	`, userID).Scan(&count)
	return count, mapError("contar ativos do colaborador", err)
}

// Termos

const termColumns = `id, user_id, type, asset_details, issued_at, file_url`

func scanTerm(row pgx.Row) (Term, error) {
	var (
		term Term
		kind string
	)
	if err := row.Scan(&term.ID, &term.UserID, &kind, &term.AssetDetails, &term.Date, &term.FileURL); err != nil {
		return Term{}, err
	}
	term.Type = TermType(kind)
	term.Date = term.Date.UTC()
	return term, nil
}

func (t *pgTx) GetTerm(ctx context.Context, id string) (Term, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+termColumns+` FROM terms WHERE id = $1`+t.lock(), id)
	term, err := scanTerm(row)
	return term, mapError("buscar termo", err)
}

func (t *pgTx) ListTerms(ctx context.Context, userID string) ([]Term, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+termColumns+` FROM terms WHERE user_id = $1 ORDER BY issued_at, seq`, userID)
	if err != nil {
		return nil, mapError("listar termos", err)
	}
	defer rows.Close()

	out := make([]Term, 0)
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, mapError("listar termos", err)
		}
		out = append(out, term)
	}
	return out, mapError("listar termos", rows.Err())
}

func (t *pgTx) InsertTerm(ctx context.Context, term Term) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO terms (`+termColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, term.ID, term.UserID, string(term.Type), term.AssetDetails, term.Date, term.FileURL)
	return mapError("inserir termo", err)
}

func (t *pgTx) UpdateTerm(ctx context.Context, term Term) error {
	tag, err := t.tx.Exec(ctx, `UPDATE terms SET file_url = $2 WHERE id = $1`, term.ID, term.FileURL)
	if err != nil {
		return mapError("atualizar termo", err)
	}
	return requireRow(tag)
}

// Contas de software

const accountColumns = `id, name, type, login, password, access_url, license_key, user_id, device_id, notes`

func scanAccount(row pgx.Row) (SoftwareAccount, error) {
	var a SoftwareAccount
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Login, &a.Password, &a.AccessURL, &a.LicenseKey, &a.UserID, &a.DeviceID, &a.Notes)
	return a, err
}

func (t *pgTx) GetAccount(ctx context.Context, id string) (SoftwareAccount, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM software_accounts WHERE id = $1`+t.lock(), id)
	a, err := scanAccount(row)
	return a, mapError("buscar conta", err)
}

func (t *pgTx) ListAccounts(ctx context.Context, filter AccountFilter) ([]SoftwareAccount, error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = $%d", filter.UserID)
	}
	if filter.DeviceID != "" {
		w.add("device_id = $%d", filter.DeviceID)
	}
	query := `SELECT ` + accountColumns + ` FROM software_accounts` + w.sql() + ` ORDER BY name, id` + w.page(filter.Limit, filter.Offset)

	rows, err := t.tx.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("listar contas", err)
	}
	defer rows.Close()

	out := make([]SoftwareAccount, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapError("listar contas", err)
		}
		out = append(out, a)
	}
	return out, mapError("listar contas", rows.Err())
}

func (t *pgTx) InsertAccount(ctx context.Context, a SoftwareAccount) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO software_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.Name, a.Type, a.Login, a.Password, a.AccessURL, a.LicenseKey, a.UserID, a.DeviceID, a.Notes)
	return mapError("inserir conta", err)
}

func (t *pgTx) UpdateAccount(ctx context.Context, a SoftwareAccount) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE software_accounts SET name = $2, type = $3, login = $4, password = $5, access_url = $6,
			license_key = $7, user_id = $8, device_id = $9, notes = $10
		WHERE id = $1
	`, a.ID, a.Name, a.Type, a.Login, a.Password, a.AccessURL, a.LicenseKey, a.UserID, a.DeviceID, a.Notes)
	if err != nil {
		return mapError("atualizar conta", err)
	}
	return requireRow(tag)
}

func (t *pgTx) DeleteAccount(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM software_accounts WHERE id = $1`, id)
	if err != nil {
		return mapError("excluir conta", err)
	}
	return requireRow(tag)
}

// Tabelas auxiliares

const catalogColumns = `kind, id, name, brand_id, asset_type_id, custom_field_ids`

func scanCatalogItem(row pgx.Row) (CatalogItem, error) {
	var (
		item CatalogItem
		kind string
	)
	if err := row.Scan(&kind, &item.ID, &item.Name, &item.BrandID, &item.AssetTypeID, &item.CustomFieldIDs); err != nil {
		return CatalogItem{}, err
	}
	item.Kind = CatalogKind(kind)
	if len(item.CustomFieldIDs) == 0 {
		item.CustomFieldIDs = nil
	}
	return item, nil
}

func (t *pgTx) GetCatalogItem(ctx context.Context, kind CatalogKind, id string) (CatalogItem, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+catalogColumns+` FROM catalog_items WHERE kind = $1 AND id = $2`+t.lock(), string(kind), id)
	item, err := scanCatalogItem(row)
	return item, mapError("buscar cadastro auxiliar", err)
}

func (t *pgTx) ListCatalog(ctx context.Context, kind CatalogKind) ([]CatalogItem, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+catalogColumns+` FROM catalog_items WHERE kind = $1 ORDER BY name, id`, string(kind))
	if err != nil {
		return nil, mapError("listar cadastro auxiliar", err)
	}
	defer rows.Close()

	out := make([]CatalogItem, 0)
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, mapError("listar cadastro auxiliar", err)
		}
		out = append(out, item)
	}
	return out, mapError("listar cadastro auxiliar", rows.Err())
}

func customFieldIDs(item CatalogItem) []string {
	if item.CustomFieldIDs == nil {
		return []string{}
	}
	return item.CustomFieldIDs
}

func (t *pgTx) InsertCatalogItem(ctx context.Context, item CatalogItem) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO catalog_items (`+catalogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(item.Kind), item.ID, item.Name, item.BrandID, item.AssetTypeID, customFieldIDs(item))
	return mapError("inserir cadastro auxiliar", err)
}

func (t *pgTx) UpdateCatalogItem(ctx context.Context, item CatalogItem) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE catalog_items SET name = $3, brand_id = $4, asset_type_id = $5, custom_field_ids = $6
		WHERE kind = $1 AND id = $2
	`, string(item.Kind), item.ID, item.Name, item.BrandID, item.AssetTypeID, customFieldIDs(item))
	if err != nil {
		return mapError("atualizar cadastro auxiliar", err)
	}
	return requireRow(tag)
}

func (t *pgTx) DeleteCatalogItem(ctx context.Context, kind CatalogKind, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM catalog_items WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return mapError("excluir cadastro auxiliar", err)
	}
	return requireRow(tag)
}

// Histórico

const logColumns = `seq, id, asset_id, asset_type, action, ts, admin_user, notes, previous_data, new_data, backup_data`

func scanLog(row pgx.Row) (audit.Entry, error) {
	var (
		e                  audit.Entry
		kind, action       string
		prev, next, backup []byte
	)
	if err := row.Scan(&e.Seq, &e.ID, &e.AssetID, &kind, &action, &e.Timestamp, &e.AdminUser, &e.Notes, &prev, &next, &backup); err != nil {
		return audit.Entry{}, err
	}
	e.AssetType = audit.Kind(kind)
	e.Action = audit.Action(action)
	e.Timestamp = e.Timestamp.UTC()
	e.PreviousData, e.NewData, e.BackupData = prev, next, backup
	return e, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (t *pgTx) AppendLog(ctx context.Context, e audit.Entry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO audit_logs (id, asset_id, asset_type, action, ts, admin_user, notes, previous_data, new_data, backup_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.AssetID, string(e.AssetType), string(e.Action), e.Timestamp, e.AdminUser, e.Notes,
		nullableJSON(e.PreviousData), nullableJSON(e.NewData), nullableJSON(e.BackupData))
	return mapError("gravar histórico", err)
}

func (t *pgTx) GetLog(ctx context.Context, id string) (audit.Entry, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+logColumns+` FROM audit_logs WHERE id = $1`, id)
	e, err := scanLog(row)
	return e, mapError("buscar histórico", err)
}

func (t *pgTx) ListLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var w where
	if filter.AssetID != "" {
		w.add("asset_id = $%d", filter.AssetID)
	}
	if filter.AssetType != "" {
		w.add("asset_type = $%d", string(filter.AssetType))
	}
	if filter.Action != "" {
		w.add("action = $%d", string(filter.Action))
	}
	query := `SELECT ` + logColumns + ` FROM audit_logs` + w.sql() + ` ORDER BY ts DESC, seq DESC` + w.page(filter.Limit, filter.Offset)

	rows, err := t.tx.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("listar histórico", err)
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, mapError("listar histórico", err)
		}
		out = append(out, e)
	}
	return out, mapError("listar histórico", rows.Err())
}

func (t *pgTx) ClearLogs(ctx context.Context) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM audit_logs`)
	if err != nil {
		return 0, mapError("limpar histórico", err)
	}
	return tag.RowsAffected(), nil
}
