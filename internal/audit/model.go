package audit

import (
	"encoding/json"
	"time"
)

// Action identifica o tipo de evento registrado no histórico.
type Action string

const (
	ActionCreate           Action = "CREATE"
	ActionUpdate           Action = "UPDATE"
	ActionDelete           Action = "DELETE"
	ActionRestore          Action = "RESTORE"
	ActionCheckout         Action = "CHECKOUT"
	ActionCheckin          Action = "CHECKIN"
	ActionActivate         Action = "ACTIVATE"
	ActionInactivate       Action = "INACTIVATE"
	ActionMaintenanceStart Action = "MAINTENANCE_START"
	ActionMaintenanceEnd   Action = "MAINTENANCE_END"
	ActionResolvePendency  Action = "RESOLVE_PENDENCY"
)

// Kind identifica a entidade afetada por um evento.
type Kind string

const (
	KindDevice          Kind = "Device"
	KindSimCard         Kind = "SimCard"
	KindUser            Kind = "User"
	KindSoftwareAccount Kind = "SoftwareAccount"
	KindTerm            Kind = "Term"
	KindBrand           Kind = "Brand"
	KindAssetType       Kind = "AssetType"
	KindModel           Kind = "Model"
	KindSector          Kind = "Sector"
	KindAccessoryType   Kind = "AccessoryType"
	KindCustomField     Kind = "CustomField"
)

var validActions = map[Action]struct{}{
	ActionCreate:           {},
	ActionUpdate:           {},
	ActionDelete:           {},
	ActionRestore:          {},
	ActionCheckout:         {},
	ActionCheckin:          {},
	ActionActivate:         {},
	ActionInactivate:       {},
	ActionMaintenanceStart: {},
	ActionMaintenanceEnd:   {},
	ActionResolvePendency:  {},
}

// IsValidAction indica se a ação é conhecida.
func IsValidAction(a Action) bool {
	_, ok := validActions[a]
	return ok
}

// Entry é uma linha imutável do histórico. PreviousData e NewData guardam o
// registro antes e depois da mutação; BackupData só é preenchido em exclusões.
type Entry struct {
	ID           string          `json:"id"`
	AssetID      string          `json:"assetId"`
	AssetType    Kind            `json:"assetType"`
	Action       Action          `json:"action"`
	Timestamp    time.Time       `json:"timestamp"`
	AdminUser    string          `json:"adminUser"`
	Notes        string          `json:"notes,omitempty"`
	PreviousData json.RawMessage `json:"previousData,omitempty"`
	NewData      json.RawMessage `json:"newData,omitempty"`
	BackupData   json.RawMessage `json:"backupData,omitempty"`

	// Seq desempata eventos gravados no mesmo instante.
	Seq int64 `json:"-"`
}

// Filter restringe listagens do histórico.
type Filter struct {
	AssetID   string
	AssetType Kind
	Action    Action
	Limit     int
	Offset    int
}

// Snapshot serializa o registro no formato gravado no histórico. Valores nil
// produzem snapshot nulo (criações não têm estado anterior).
func Snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

// Newer ordena do mais recente para o mais antigo.
func Newer(a, b Entry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.Seq > b.Seq
}
