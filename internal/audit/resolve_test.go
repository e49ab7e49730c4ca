package audit

import "testing"

func TestResolveValue(t *testing.T) {
	lk := Lookups{
		Sectors:      map[string]string{"s1": "TI"},
		Models:       map[string]string{"m1": "Galaxy A54"},
		SimCards:     map[string]string{"c1": "(11) 99999-0000"},
		CustomFields: map[string]string{"f1": "Cor", "f2": "Memória"},
	}

	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"nil", "serialNumber", nil, EmptyMarker},
		{"empty string", "assetTag", "", EmptyMarker},
		{"sentinel", "imei", "N/A", EmptyMarker},
		{"empty list", "accessories", []any{}, EmptyMarker},
		{"date key", "purchaseDate", "2024-03-05", "05/03/2024"},
		{"date midnight utc", "purchaseDate", "2024-03-05T00:00:00Z", "05/03/2024"},
		{"iso value", "returnedAt", "2024-03-05T13:30:00Z", "05/03/2024 10:30"},
		{"currency", "purchaseCost", float64(1234.5), "R$ 1.234,50"},
		{"currency string", "cost", "10", "R$ 10,00"},
		{"sector fk", "sectorId", "s1", "TI"},
		{"model fk", "modelId", "m1", "Galaxy A54"},
		{"sim fk", "linkedSimId", "c1", "(11) 99999-0000"},
		{"missing fk falls back", "currentUserId", "deleted-user", "deleted-user"},
		{"active true", "active", true, "Ativo"},
		{"active false", "active", false, "Inativo"},
		{"custom data", "customData", map[string]any{"f1": "Preto", "f2": "128GB"}, "Cor: Preto; Memória: 128GB"},
		{"custom data json string", "customData", `{"f1":"Azul"}`, "Cor: Azul"},
		{"custom data unknown field", "customData", map[string]any{"zz": "1"}, "zz: 1"},
		{"accessories", "accessories", []any{map[string]any{"id": "a", "name": "Capa"}, map[string]any{"id": "b", "name": "Carregador"}}, "Capa, Carregador"},
		{"number", "quantity", float64(3), "3"},
		{"bool", "flag", true, "Sim"},
		{"plain", "notes", "texto", "texto"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveValue(tc.key, tc.value, lk); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	tests := map[float64]string{
		0:          "R$ 0,00",
		9.99:       "R$ 9,99",
		1000:       "R$ 1.000,00",
		1234567.89: "R$ 1.234.567,89",
		-15.5:      "-R$ 15,50",
	}
	for in, want := range tests {
		if got := FormatBRL(in); got != want {
			t.Fatalf("FormatBRL(%v): expected %q got %q", in, want, got)
		}
	}
}

func TestLabelFallback(t *testing.T) {
	if Label("serialNumber") != "Número de Série" {
		t.Fatalf("unexpected label %q", Label("serialNumber"))
	}
	if Label("campoNovo") != "campoNovo" {
		t.Fatalf("unknown key must return raw key")
	}
}
