package auth

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidCredentials é retornado para operador desconhecido ou senha incorreta.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// Directory guarda os operadores autorizados e seus hashes Argon2id.
type Directory struct {
	hashes map[string]operatorEntry
}

type operatorEntry struct {
	name string
	hash string
}

// NewDirectory indexa operadores por nome, sem diferenciar maiúsculas.
func NewDirectory(hashes map[string]string) *Directory {
	d := &Directory{hashes: make(map[string]operatorEntry, len(hashes))}
	for name, hash := range hashes {
		d.hashes[strings.ToLower(strings.TrimSpace(name))] = operatorEntry{name: strings.TrimSpace(name), hash: hash}
	}
	return d
}

// Authenticate confere a senha e devolve o nome canônico do operador.
func (d *Directory) Authenticate(name, password string) (string, error) {
	entry, ok := d.hashes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", ErrInvalidCredentials
	}
	match, err := Verify(password, entry.hash)
	if err != nil || !match {
		return "", ErrInvalidCredentials
	}
	return entry.name, nil
}

// Weak lista, em ordem alfabética, os operadores cujo hash precisa ser
// regerado.
func (d *Directory) Weak() []string {
	var out []string
	for _, entry := range d.hashes {
		if Weak(entry.hash) {
			out = append(out, entry.name)
		}
	}
	sort.Strings(out)
	return out
}

// Len informa quantos operadores estão cadastrados.
func (d *Directory) Len() int { return len(d.hashes) }
