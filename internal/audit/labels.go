package audit

// fieldLabels traduz chaves dos snapshots para rótulos exibidos no histórico.
var fieldLabels = map[string]string{
	"modelId":           "Modelo",
	"brandId":           "Marca",
	"assetTypeId":       "Tipo de Ativo",
	"accessoryTypeId":   "Tipo de Acessório",
	"customFieldIds":    "Campos Personalizados",
	"serialNumber":      "Número de Série",
	"assetTag":          "Patrimônio",
	"imei":              "IMEI",
	"pulsusId":          "ID Pulsus",
	"status":            "Status",
	"currentUserId":     "Responsável",
	"userId":            "Colaborador",
	"deviceId":          "Dispositivo",
	"sectorId":          "Setor",
	"linkedSimId":       "Chip Vinculado",
	"accessories":       "Acessórios",
	"purchaseDate":      "Data de Compra",
	"purchaseCost":      "Valor de Compra",
	"invoiceNumber":     "Nota Fiscal",
	"invoiceFile":       "Arquivo da Nota",
	"customData":        "Dados Personalizados",
	"phoneNumber":       "Número",
	"iccid":             "ICCID",
	"operator":          "Operadora",
	"planDetails":       "Plano",
	"fullName":          "Nome Completo",
	"email":             "E-mail",
	"cpf":               "CPF",
	"rg":                "RG",
	"pis":               "PIS",
	"jobTitle":          "Cargo",
	"active":            "Situação",
	"name":              "Nome",
	"type":              "Tipo",
	"login":             "Login",
	"password":          "Senha",
	"accessUrl":         "URL de Acesso",
	"licenseKey":        "Chave de Licença",
	"notes":             "Observações",
	"holderName":        "Nome do Responsável",
	"returnedChecklist": "Checklist de Devolução",
	"missingItems":      "Itens Pendentes",
	"resolvedItems":     "Itens Regularizados",
	"fileUrl":           "Arquivo",
	"assetDetails":      "Ativo",
	"date":              "Data",
}

// statusLabels traduz os valores de status persistidos.
var statusLabels = map[string]string{
	"DISPONIVEL": "Disponível",
	"EM_USO":     "Em Uso",
	"MANUTENCAO": "Manutenção",
	"DESCARTADO": "Descartado",
	"ENTREGA":    "Entrega",
	"DEVOLUCAO":  "Devolução",
}

var actionLabels = map[Action]string{
	ActionCreate:           "Criação",
	ActionUpdate:           "Atualização",
	ActionDelete:           "Descarte/Exclusão",
	ActionRestore:          "Restauração",
	ActionCheckout:         "Entrega",
	ActionCheckin:          "Devolução",
	ActionActivate:         "Reativação",
	ActionInactivate:       "Inativação",
	ActionMaintenanceStart: "Entrada em Manutenção",
	ActionMaintenanceEnd:   "Saída de Manutenção",
	ActionResolvePendency:  "Pendência Resolvida",
}

// Label devolve o rótulo da chave ou a própria chave quando desconhecida.
func Label(rawKey string) string {
	if label, ok := fieldLabels[rawKey]; ok {
		return label
	}
	return rawKey
}

// ActionLabel devolve o rótulo da ação.
func ActionLabel(a Action) string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}
