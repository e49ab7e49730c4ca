package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrMalformedSnapshot indica snapshot que não é um objeto JSON.
var ErrMalformedSnapshot = errors.New("snapshot malformado")

// Unresolvable é exibido quando o snapshot não pode ser interpretado.
const Unresolvable = "(não resolvível)"

// FieldDiff é uma alteração bruta entre dois snapshots.
type FieldDiff struct {
	RawKey string
	Old    any
	New    any
}

// Change é uma linha de alteração pronta para exibição.
type Change struct {
	Field  string `json:"field"`
	RawKey string `json:"rawKey"`
	Old    string `json:"old"`
	New    string `json:"new"`
}

var ignoredKeys = map[string]struct{}{
	"id":    {},
	"terms": {},
}

// Diff compara dois snapshots completos campo a campo, sobre a união das
// chaves. A comparação é estrutural: objetos iguais com chaves em ordem
// diferente não geram linha. Snapshot nulo ou vazio equivale a objeto vazio.
func Diff(prev, next []byte) ([]FieldDiff, error) {
	before, after, err := decodePair(prev, next)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(before)+len(after))
	for k := range before {
		keys = append(keys, k)
	}
	for k := range after {
		if _, ok := before[k]; !ok {
			keys = append(keys, k)
		}
	}
	return compare(before, after, keys), nil
}

// DiffDelta compara apenas as chaves presentes em next. Serve para eventos
// cujo newData registra só os campos alterados.
func DiffDelta(prev, next []byte) ([]FieldDiff, error) {
	before, after, err := decodePair(prev, next)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(after))
	for k := range after {
		keys = append(keys, k)
	}
	return compare(before, after, keys), nil
}

// IsDelta indica ações gravadas com newData parcial.
func IsDelta(a Action) bool {
	switch a {
	case ActionCheckout, ActionCheckin, ActionResolvePendency:
		return true
	}
	return false
}

func compare(before, after map[string]any, keys []string) []FieldDiff {
	sort.Strings(keys)
	var diffs []FieldDiff
	for _, key := range keys {
		if _, skip := ignoredKeys[key]; skip {
			continue
		}
		oldVal, newVal := before[key], after[key]
		if sameValue(oldVal, newVal) {
			continue
		}
		diffs = append(diffs, FieldDiff{RawKey: key, Old: oldVal, New: newVal})
	}
	return diffs
}

// sameValue trata ausência, null, "" e coleções vazias como o mesmo valor.
func sameValue(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Resolve calcula o diff e resolve rótulos e valores. Nunca falha: snapshots
// ilegíveis viram uma única linha marcada como não resolvível.
func Resolve(prev, next []byte, lk Lookups) []Change {
	return resolveWith(Diff, prev, next, lk)
}

// ResolveDelta é o Resolve dos eventos com newData parcial.
func ResolveDelta(prev, next []byte, lk Lookups) []Change {
	return resolveWith(DiffDelta, prev, next, lk)
}

// ResolveEntry escolhe o diff adequado à ação do evento.
func ResolveEntry(action Action, prev, next []byte, lk Lookups) []Change {
	if IsDelta(action) {
		return ResolveDelta(prev, next, lk)
	}
	return Resolve(prev, next, lk)
}

func resolveWith(diff func(prev, next []byte) ([]FieldDiff, error), prev, next []byte, lk Lookups) []Change {
	diffs, err := diff(prev, next)
	if err != nil {
		return []Change{{Field: "Registro", Old: Unresolvable, New: Unresolvable}}
	}

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		changes = append(changes, Change{
			Field:  Label(d.RawKey),
			RawKey: d.RawKey,
			Old:    ResolveValue(d.RawKey, d.Old, lk),
			New:    ResolveValue(d.RawKey, d.New, lk),
		})
	}
	return changes
}

func decodePair(prev, next []byte) (map[string]any, map[string]any, error) {
	before, err := decodeSnapshot(prev)
	if err != nil {
		return nil, nil, err
	}
	after, err := decodeSnapshot(next)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func decodeSnapshot(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
