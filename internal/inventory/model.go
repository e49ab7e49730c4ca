package inventory

import (
	"strings"
	"time"
)

// Status é o estado de ciclo de vida de um dispositivo ou chip.
type Status string

const (
	StatusAvailable   Status = "DISPONIVEL"
	StatusInUse       Status = "EM_USO"
	StatusMaintenance Status = "MANUTENCAO"
	StatusRetired     Status = "DESCARTADO"
)

// AssetKind identifica o tipo de ativo movimentado em entregas e devoluções.
type AssetKind string

const (
	AssetDevice  AssetKind = "DEVICE"
	AssetSimCard AssetKind = "SIM"
)

// TermType diferencia termos de entrega e devolução.
type TermType string

const (
	TermDelivery TermType = "ENTREGA"
	TermReturn   TermType = "DEVOLUCAO"
)

// CatalogKind identifica as tabelas auxiliares.
type CatalogKind string

const (
	CatalogBrand         CatalogKind = "brands"
	CatalogAssetType     CatalogKind = "asset-types"
	CatalogModel         CatalogKind = "models"
	CatalogSector        CatalogKind = "sectors"
	CatalogAccessoryType CatalogKind = "accessory-types"
	CatalogCustomField   CatalogKind = "custom-fields"
)

var validCatalogKinds = map[CatalogKind]struct{}{
	CatalogBrand:         {},
	CatalogAssetType:     {},
	CatalogModel:         {},
	CatalogSector:        {},
	CatalogAccessoryType: {},
	CatalogCustomField:   {},
}

// IsValidCatalogKind indica se o tipo de catálogo existe.
func IsValidCatalogKind(kind CatalogKind) bool {
	_, ok := validCatalogKinds[kind]
	return ok
}

// ParseAssetKind normaliza o tipo de ativo recebido externamente.
func ParseAssetKind(raw string) (AssetKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEVICE", "DEVICES", "DISPOSITIVO":
		return AssetDevice, nil
	case "SIM", "SIMS", "SIMCARD", "CHIP":
		return AssetSimCard, nil
	}
	return "", ErrInvalidAssetKind
}

// Accessory é um item entregue junto com o dispositivo.
type Accessory struct {
	ID              string `json:"id"`
	AccessoryTypeID string `json:"accessoryTypeId"`
	Name            string `json:"name"`
}

// Device representa um equipamento físico.
type Device struct {
	ID            string            `json:"id"`
	ModelID       string            `json:"modelId"`
	SerialNumber  string            `json:"serialNumber"`
	AssetTag      string            `json:"assetTag"`
	IMEI          string            `json:"imei"`
	PulsusID      string            `json:"pulsusId"`
	Status        Status            `json:"status"`
	CurrentUserID *string           `json:"currentUserId"`
	SectorID      *string           `json:"sectorId"`
	LinkedSimID   *string           `json:"linkedSimId"`
	Accessories   []Accessory       `json:"accessories"`
	PurchaseDate  *time.Time        `json:"purchaseDate"`
	PurchaseCost  float64           `json:"purchaseCost"`
	InvoiceNumber string            `json:"invoiceNumber"`
	InvoiceFile   string            `json:"invoiceFile"`
	CustomData    map[string]string `json:"customData"`
	Notes         string            `json:"notes"`
}

// SimCard representa uma linha telefônica.
type SimCard struct {
	ID            string  `json:"id"`
	PhoneNumber   string  `json:"phoneNumber"`
	ICCID         string  `json:"iccid"`
	Operator      string  `json:"operator"`
	PlanDetails   string  `json:"planDetails"`
	Status        Status  `json:"status"`
	CurrentUserID *string `json:"currentUserId"`
	Notes         string  `json:"notes"`
}

// User representa um colaborador que pode receber ativos.
type User struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	CPF      string  `json:"cpf"`
	RG       string  `json:"rg"`
	PIS      string  `json:"pis"`
	JobTitle string  `json:"jobTitle"`
	SectorID *string `json:"sectorId"`
	Active   bool    `json:"active"`
	Terms    []Term  `json:"terms,omitempty"`
}

// Term é o recibo de entrega ou devolução. AssetDetails é capturado no momento
// do evento e nunca recalculado.
type Term struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Type         TermType  `json:"type"`
	AssetDetails string    `json:"assetDetails"`
	Date         time.Time `json:"date"`
	FileURL      string    `json:"fileUrl"`
}

// SoftwareAccount guarda credenciais e licenças, vinculadas a no máximo um
// colaborador ou dispositivo.
type SoftwareAccount struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Login      string  `json:"login"`
	Password   string  `json:"password"`
	AccessURL  string  `json:"accessUrl"`
	LicenseKey string  `json:"licenseKey"`
	UserID     *string `json:"userId"`
	DeviceID   *string `json:"deviceId"`
	Notes      string  `json:"notes"`
}

// CatalogItem cobre marcas, tipos, modelos, setores, tipos de acessório e
// campos personalizados.
type CatalogItem struct {
	ID             string      `json:"id"`
	Kind           CatalogKind `json:"kind"`
	Name           string      `json:"name"`
	BrandID        *string     `json:"brandId,omitempty"`
	AssetTypeID    *string     `json:"assetTypeId,omitempty"`
	CustomFieldIDs []string    `json:"customFieldIds,omitempty"`
}

// DeviceFilter restringe listagens de dispositivos.
type DeviceFilter struct {
	Status        Status
	CurrentUserID string
	LinkedSimID   string
	SerialNumber  string
	ModelID       string
	Limit         int
	Offset        int
}

// SimFilter restringe listagens de chips.
type SimFilter struct {
	Status        Status
	CurrentUserID string
	PhoneNumber   string
	Limit         int
	Offset        int
}

// UserFilter restringe listagens de colaboradores.
type UserFilter struct {
	CPF      string
	SectorID string
	Active   *bool
	Limit    int
	Offset   int
}

// AccountFilter restringe listagens de contas de software.
type AccountFilter struct {
	UserID   string
	DeviceID string
	Limit    int
	Offset   int
}

func strPtr(s string) *string { return &s }

// blankToNil trata referência vazia como ausente.
func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func sameRef(a, b *string) bool {
	return derefString(a) == derefString(b)
}

func cloneDevice(d Device) Device {
	out := d
	if d.CurrentUserID != nil {
		out.CurrentUserID = strPtr(*d.CurrentUserID)
	}
	if d.SectorID != nil {
		out.SectorID = strPtr(*d.SectorID)
	}
	if d.LinkedSimID != nil {
		out.LinkedSimID = strPtr(*d.LinkedSimID)
	}
	if d.PurchaseDate != nil {
		t := *d.PurchaseDate
		out.PurchaseDate = &t
	}
	if d.Accessories != nil {
		out.Accessories = append([]Accessory(nil), d.Accessories...)
	}
	if d.CustomData != nil {
		out.CustomData = make(map[string]string, len(d.CustomData))
		for k, v := range d.CustomData {
			out.CustomData[k] = v
		}
	}
	return out
}

func cloneSim(s SimCard) SimCard {
	out := s
	if s.CurrentUserID != nil {
		out.CurrentUserID = strPtr(*s.CurrentUserID)
	}
	return out
}

func cloneUser(u User) User {
	out := u
	if u.SectorID != nil {
		out.SectorID = strPtr(*u.SectorID)
	}
	out.Terms = nil
	return out
}

func cloneAccount(a SoftwareAccount) SoftwareAccount {
	out := a
	if a.UserID != nil {
		out.UserID = strPtr(*a.UserID)
	}
	if a.DeviceID != nil {
		out.DeviceID = strPtr(*a.DeviceID)
	}
	return out
}

func cloneCatalogItem(c CatalogItem) CatalogItem {
	out := c
	if c.BrandID != nil {
		out.BrandID = strPtr(*c.BrandID)
	}
	if c.AssetTypeID != nil {
		out.AssetTypeID = strPtr(*c.AssetTypeID)
	}
	if c.CustomFieldIDs != nil {
		out.CustomFieldIDs = append([]string(nil), c.CustomFieldIDs...)
	}
	return out
}
