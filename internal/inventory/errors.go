package inventory

import (
	"errors"
	"fmt"
)

// ErrorKind classifica falhas de domínio para quem chama o serviço.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindPrecondition
	KindIntegrity
)

// Error é um erro de domínio tipado. Sentinelas são comparadas com errors.Is
// mesmo depois de embrulhadas com contexto.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// Pré-condições do ciclo de vida.
	ErrAssetNotAvailable = newError(KindPrecondition, "ASSET_NOT_AVAILABLE", "ativo não está disponível")
	ErrAssetNotInUse     = newError(KindPrecondition, "ASSET_NOT_IN_USE", "ativo não está em uso")
	ErrHasActiveAssets   = newError(KindPrecondition, "HAS_ACTIVE_ASSETS", "colaborador possui ativos em uso")
	ErrAlreadyInactive   = newError(KindPrecondition, "ALREADY_INACTIVE", "colaborador já está inativo")
	ErrAlreadyActive     = newError(KindPrecondition, "ALREADY_ACTIVE", "colaborador já está ativo")
	ErrAlreadyRetired    = newError(KindPrecondition, "ALREADY_RETIRED", "dispositivo já descartado")
	ErrNotRetired        = newError(KindPrecondition, "NOT_RETIRED", "dispositivo não está descartado")
	ErrStillInUse        = newError(KindPrecondition, "STILL_IN_USE", "ativo em uso, realize a devolução primeiro")
	ErrUserInactive      = newError(KindPrecondition, "USER_INACTIVE", "colaborador inativo")
	ErrSimLinked         = newError(KindPrecondition, "SIM_LINKED", "chip vinculado a dispositivo, movimente pelo dispositivo")
	ErrSimAlreadyLinked  = newError(KindPrecondition, "SIM_ALREADY_LINKED", "chip já vinculado a outro dispositivo")
	ErrNoPendency        = newError(KindPrecondition, "NO_PENDENCY", "nenhuma pendência em aberto")
	ErrReferenced        = newError(KindPrecondition, "REFERENCED", "registro referenciado por outros cadastros")

	// Integridade: rejeitadas antes de qualquer escrita.
	ErrDuplicateCPF       = newError(KindIntegrity, "DUPLICATE_CPF", "CPF já cadastrado")
	ErrDuplicatePhone     = newError(KindIntegrity, "DUPLICATE_PHONE", "número de telefone já cadastrado")
	ErrDuplicateSerial    = newError(KindIntegrity, "DUPLICATE_SERIAL", "número de série já cadastrado")
	ErrMissingIdentifier  = newError(KindIntegrity, "MISSING_IDENTIFIER", "identificador obrigatório ausente")
	ErrInvalidOwner       = newError(KindIntegrity, "INVALID_OWNER", "conta deve pertencer a um colaborador ou a um dispositivo, não ambos")
	ErrInvalidCustomField = newError(KindIntegrity, "INVALID_CUSTOM_FIELD", "campo personalizado não pertence ao tipo do ativo")
	ErrInvalidReference   = newError(KindIntegrity, "INVALID_REFERENCE", "referência inexistente")

	// Validação de entrada.
	ErrInvalidActor     = newError(KindValidation, "INVALID_ACTOR", "responsável pela operação obrigatório")
	ErrReasonRequired   = newError(KindValidation, "REASON_REQUIRED", "motivo obrigatório")
	ErrInvalidAssetKind = newError(KindValidation, "INVALID_ASSET_KIND", "tipo de ativo inválido")
	ErrInvalidCatalog   = newError(KindValidation, "INVALID_CATALOG", "tipo de cadastro inválido")
	ErrInvalidCPF       = newError(KindValidation, "INVALID_CPF", "cpf deve conter 11 dígitos")
	ErrInvalidEmail     = newError(KindValidation, "INVALID_EMAIL", "email inválido")
	ErrNameRequired     = newError(KindValidation, "NAME_REQUIRED", "nome obrigatório")
	ErrInvalidAction    = newError(KindValidation, "INVALID_ACTION", "ação de histórico inválida")

	ErrNotFound = newError(KindNotFound, "NOT_FOUND", "registro não encontrado")
)

// StorageError embrulha falhas de infraestrutura do armazenamento.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("armazenamento: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// KindOf devolve a classe do erro de domínio, ou zero quando não houver.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return 0
}

// IsPrecondition indica violação de pré-condição do ciclo de vida.
func IsPrecondition(err error) bool { return KindOf(err) == KindPrecondition }

// IsIntegrity indica violação de integridade de cadastro.
func IsIntegrity(err error) bool { return KindOf(err) == KindIntegrity }

// IsStorage indica falha de infraestrutura.
func IsStorage(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
