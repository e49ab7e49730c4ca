package audit

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EmptyMarker substitui valores vazios para que nunca apareçam em branco.
const EmptyMarker = "(vazio)"

// Lookups são índices id -> nome usados para resolver chaves estrangeiras.
// Ids ausentes (registros excluídos depois do evento) caem no próprio id.
type Lookups struct {
	Sectors        map[string]string `json:"sectors"`
	Users          map[string]string `json:"users"`
	SimCards       map[string]string `json:"simCards"`
	Devices        map[string]string `json:"devices"`
	Models         map[string]string `json:"models"`
	Brands         map[string]string `json:"brands"`
	AssetTypes     map[string]string `json:"assetTypes"`
	AccessoryTypes map[string]string `json:"accessoryTypes"`
	CustomFields   map[string]string `json:"customFields"`
}

var foreignKeys = map[string]func(Lookups) map[string]string{
	"sectorId":        func(l Lookups) map[string]string { return l.Sectors },
	"linkedSimId":     func(l Lookups) map[string]string { return l.SimCards },
	"currentUserId":   func(l Lookups) map[string]string { return l.Users },
	"userId":          func(l Lookups) map[string]string { return l.Users },
	"modelId":         func(l Lookups) map[string]string { return l.Models },
	"deviceId":        func(l Lookups) map[string]string { return l.Devices },
	"brandId":         func(l Lookups) map[string]string { return l.Brands },
	"assetTypeId":     func(l Lookups) map[string]string { return l.AssetTypes },
	"accessoryTypeId": func(l Lookups) map[string]string { return l.AccessoryTypes },
}

var currencyFields = map[string]struct{}{
	"purchaseCost": {},
	"cost":         {},
	"monthlyCost":  {},
}

var activeFields = map[string]struct{}{
	"active":   {},
	"isActive": {},
}

var emptySentinels = map[string]struct{}{
	"":          {},
	"null":      {},
	"undefined": {},
	"-":         {},
	"N/A":       {},
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// brt é o fuso usado na exibição (Brasil sem horário de verão).
var brt = time.FixedZone("BRT", -3*60*60)

// ResolveValue converte um valor bruto do snapshot em texto legível.
func ResolveValue(rawKey string, value any, lk Lookups) string {
	if isEmpty(value) {
		return EmptyMarker
	}

	if s, ok := value.(string); ok && (strings.Contains(strings.ToLower(rawKey), "date") || isoDatePrefix.MatchString(s)) {
		if formatted, ok := formatDate(s); ok {
			return formatted
		}
	}

	if _, ok := currencyFields[rawKey]; ok {
		if f, ok := toFloat(value); ok {
			return FormatBRL(f)
		}
	}

	if tableFn, ok := foreignKeys[rawKey]; ok {
		id := stringify(value)
		if name, found := tableFn(lk)[id]; found && strings.TrimSpace(name) != "" {
			return name
		}
		return id
	}

	if _, ok := activeFields[rawKey]; ok {
		if b, ok := toBool(value); ok {
			if b {
				return "Ativo"
			}
			return "Inativo"
		}
	}

	if rawKey == "customData" {
		return resolveCustomData(value, lk)
	}

	if s, ok := value.(string); ok {
		if label, found := statusLabels[s]; found {
			return label
		}
	}

	return stringify(value)
}

// FormatBRL formata valores monetários no padrão brasileiro (R$ 1.234,56).
func FormatBRL(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), cents%100)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		_, ok := emptySentinels[strings.TrimSpace(v)]
		return ok
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func formatDate(s string) (string, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("02/01/2006"), true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		utc := t.UTC()
		if utc.Hour() == 0 && utc.Minute() == 0 && utc.Second() == 0 {
			return utc.Format("02/01/2006"), true
		}
		return t.In(brt).Format("02/01/2006 15:04"), true
	}
	return "", false
}

func resolveCustomData(value any, lk Lookups) string {
	var fields map[string]any
	switch v := value.(type) {
	case map[string]any:
		fields = v
	case string:
		if err := json.Unmarshal([]byte(v), &fields); err != nil {
			return v
		}
	default:
		return stringify(value)
	}
	if len(fields) == 0 {
		return EmptyMarker
	}

	parts := make([]string, 0, len(fields))
	for id, raw := range fields {
		name := id
		if resolved, ok := lk.CustomFields[id]; ok && resolved != "" {
			name = resolved
		}
		val := stringify(raw)
		if isEmpty(raw) {
			val = EmptyMarker
		}
		parts = append(parts, name+": "+val)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "Sim"
		}
		return "Não"
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if name, ok := m["name"].(string); ok {
					parts = append(parts, name)
					continue
				}
			}
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Unresolvable
		}
		return string(data)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}
