package audit

import (
	"testing"
)

func TestDiffOnlyChangedFields(t *testing.T) {
	diffs, err := Diff([]byte(`{"name":"A","cost":10}`), []byte(`{"name":"A","cost":20}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diffs) != 1 {
		t.Fatalf("expected 1 diff got %d", len(diffs))
	}
	if diffs[0].RawKey != "cost" {
		t.Fatalf("expected cost got %s", diffs[0].RawKey)
	}
	if diffs[0].Old != float64(10) || diffs[0].New != float64(20) {
		t.Fatalf("unexpected values %v -> %v", diffs[0].Old, diffs[0].New)
	}
}

func TestDiffIsStructural(t *testing.T) {
	prev := []byte(`{"customData":{"a":"1","b":"2"},"accessories":[{"id":"x","name":"Capa"}]}`)
	next := []byte(`{"accessories":[{"name":"Capa","id":"x"}],"customData":{"b":"2","a":"1"}}`)

	diffs, err := Diff(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diffs) != 0 {
		t.Fatalf("expected no diff for reordered keys, got %+v", diffs)
	}
}

func TestDiffUnionOfKeys(t *testing.T) {
	diffs, err := Diff([]byte(`{"a":"1"}`), []byte(`{"b":"2"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs got %d", len(diffs))
	}
	if diffs[0].RawKey != "a" || diffs[0].New != nil {
		t.Fatalf("unexpected first diff %+v", diffs[0])
	}
	if diffs[1].RawKey != "b" || diffs[1].Old != nil {
		t.Fatalf("unexpected second diff %+v", diffs[1])
	}
}

func TestDiffNullPrevious(t *testing.T) {
	diffs, err := Diff(nil, []byte(`{"id":"1","serialNumber":"SN1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diffs) != 1 || diffs[0].RawKey != "serialNumber" {
		t.Fatalf("expected only serialNumber, got %+v", diffs)
	}
}

func TestDiffMalformed(t *testing.T) {
	if _, err := Diff([]byte(`{broken`), []byte(`{}`)); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
}

func TestResolveNeverFails(t *testing.T) {
	changes := Resolve([]byte(`[1,2`), []byte(`{"a":1}`), Lookups{})
	if len(changes) != 1 {
		t.Fatalf("expected a single unresolvable row, got %d", len(changes))
	}
	if changes[0].Old != Unresolvable || changes[0].New != Unresolvable {
		t.Fatalf("unexpected row %+v", changes[0])
	}
}

func TestResolveLabelsAndLookups(t *testing.T) {
	lk := Lookups{
		Sectors: map[string]string{"s1": "Financeiro", "s2": "Comercial"},
		Users:   map[string]string{"u1": "Maria Souza"},
	}
	prev := []byte(`{"sectorId":"s1","currentUserId":null,"status":"DISPONIVEL","foo":"x"}`)
	next := []byte(`{"sectorId":"s2","currentUserId":"u1","status":"EM_USO","foo":"y"}`)

	changes := Resolve(prev, next, lk)
	got := make(map[string]Change, len(changes))
	for _, c := range changes {
		got[c.RawKey] = c
	}

	if c := got["sectorId"]; c.Field != "Setor" || c.Old != "Financeiro" || c.New != "Comercial" {
		t.Fatalf("unexpected sector row %+v", c)
	}
	if c := got["currentUserId"]; c.Old != EmptyMarker || c.New != "Maria Souza" {
		t.Fatalf("unexpected holder row %+v", c)
	}
	if c := got["status"]; c.Old != "Disponível" || c.New != "Em Uso" {
		t.Fatalf("unexpected status row %+v", c)
	}
	if c := got["foo"]; c.Field != "foo" {
		t.Fatalf("unknown keys must fall back to raw key, got %+v", c)
	}
}

func TestDiffDeltaOnlyComparesNewKeys(t *testing.T) {
	prev := []byte(`{"serialNumber":"SN-1","assetTag":"PAT-1","purchaseCost":0,"status":"DISPONIVEL","currentUserId":null}`)
	next := []byte(`{"status":"EM_USO","currentUserId":"u1","holderName":"Carla Dias"}`)

	full, err := Diff(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full) != 6 {
		t.Fatalf("full diff must report the union of keys, got %+v", full)
	}

	delta, err := DiffDelta(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := make([]string, 0, len(delta))
	for _, d := range delta {
		keys = append(keys, d.RawKey)
	}
	if len(keys) != 3 || keys[0] != "currentUserId" || keys[1] != "holderName" || keys[2] != "status" {
		t.Fatalf("unexpected delta keys %v", keys)
	}

	if _, err := DiffDelta([]byte(`{broken`), next); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
}

func TestDiffTreatsEmptyValuesAsEqual(t *testing.T) {
	prev := []byte(`{"imei":"","invoiceNumber":null,"accessories":[],"notes":"-","pulsusId":""}`)
	next := []byte(`{"customData":{},"pulsusId":"P-9"}`)

	diffs, err := Diff(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diffs) != 1 || diffs[0].RawKey != "pulsusId" {
		t.Fatalf("expected only pulsusId, got %+v", diffs)
	}
}

func TestResolveEntryByAction(t *testing.T) {
	lk := Lookups{Users: map[string]string{"u1": "Carla Dias"}}
	prev := []byte(`{"serialNumber":"SN-1","status":"DISPONIVEL"}`)
	next := []byte(`{"status":"EM_USO","currentUserId":"u1","holderName":"Carla Dias"}`)

	tests := []struct {
		action Action
		rows   int
	}{
		{ActionCheckout, 3},
		{ActionCheckin, 3},
		{ActionResolvePendency, 3},
		{ActionUpdate, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			changes := ResolveEntry(tt.action, prev, next, lk)
			if len(changes) != tt.rows {
				t.Fatalf("expected %d rows, got %+v", tt.rows, changes)
			}
			labels := map[string]bool{}
			for _, c := range changes {
				if labels[c.Field] {
					t.Fatalf("duplicate label %q in %+v", c.Field, changes)
				}
				labels[c.Field] = true
			}
		})
	}
}

func TestLabelsAreUnique(t *testing.T) {
	seen := make(map[string]string, len(fieldLabels))
	for key, label := range fieldLabels {
		if other, ok := seen[label]; ok {
			t.Fatalf("keys %q and %q share label %q", key, other, label)
		}
		seen[label] = key
	}
}
