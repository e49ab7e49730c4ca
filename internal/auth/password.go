package auth

import (
	"github.com/alexedwards/argon2id"
)

// OperatorParams são os parâmetros Argon2id usados nos hashes de OPERATORS.
var OperatorParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera o hash de um operador com OperatorParams.
func Hash(password string) (string, error) {
	return HashWith(password, OperatorParams)
}

// HashWith gera o hash com parâmetros explícitos; os parâmetros ficam
// gravados no próprio hash.
func HashWith(password string, p *argon2id.Params) (string, error) {
	return argon2id.CreateHash(password, p)
}

// Verify compara a senha com o hash, lendo os parâmetros do próprio hash.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}

// Weak indica hash ilegível ou gerado com custo abaixo de OperatorParams.
// Esses operadores devem gerar nova entrada com cmd/hashpass.
func Weak(encodedHash string) bool {
	p, _, _, err := argon2id.DecodeHash(encodedHash)
	if err != nil {
		return true
	}
	return p.Memory < OperatorParams.Memory || p.Iterations < OperatorParams.Iterations || p.KeyLength < OperatorParams.KeyLength
}
