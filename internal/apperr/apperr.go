// Package apperr define a taxonomia de erros da aplicação. Os handlers
// decidem status HTTP e mensagem ao usuário pelo Kind, nunca por substring
// da mensagem do erro original.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidCPF         Kind = "invalid_cpf"
	KindNotAuthorized      Kind = "not_authorized"
	KindCredentialExists   Kind = "credential_exists"
	KindCredentialNotFound Kind = "credential_not_found"
	KindInvalidCredential  Kind = "invalid_credential"
	KindBlocked            Kind = "access_ended"
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindInternal           Kind = "internal"
)

// Error carrega o tipo do erro, uma mensagem voltada ao usuário (pt-BR) e a
// causa original para diagnóstico.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Erros de domínio com as mensagens das telas originais.
var (
	ErrInvalidCPF         = New(KindInvalidCPF, "Digite um CPF válido com 11 dígitos.")
	ErrNotAuthorized      = New(KindNotAuthorized, "CPF não autorizado. Entre em contato com a administração.")
	ErrCredentialExists   = New(KindCredentialExists, "Este CPF já tem uma conta associada.")
	ErrInvalidCredential  = New(KindInvalidCredential, "CPF não encontrado ou senha incorreta.")
	ErrBlocked            = New(KindBlocked, "Seu processo já foi finalizado. Se precisar de mais informações, entre em contato com nossa equipe.")
	ErrCPFAlreadyListed   = New(KindCredentialExists, "Este CPF já está cadastrado.")
	ErrSubmissionNotFound = New(KindNotFound, "Formulário não encontrado.")
	ErrCPFNotListed       = New(KindNotFound, "CPF não encontrado.")
)

// KindOf extrai o Kind de qualquer erro da cadeia; erros desconhecidos são
// tratados como internos.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// UserMessage devolve a mensagem apresentável ao usuário. Erros fora da
// taxonomia caem na mensagem genérica.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Erro ao processar a solicitação. Tente novamente."
}

// HTTPStatus mapeia o Kind para o status de resposta.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidCPF, KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredential:
		return http.StatusUnauthorized
	case KindNotAuthorized, KindBlocked:
		return http.StatusForbidden
	case KindCredentialExists:
		return http.StatusConflict
	case KindNotFound, KindCredentialNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
