package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type SubmissionStatus string

const (
	StatusPendente   SubmissionStatus = "pendente"
	StatusProcessado SubmissionStatus = "processado"
)

// User é a conta no provedor de identidade interno. O papel é imutável após a
// criação no fluxo normal.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CPF          string    `json:"cpf"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthorizedCPF é a entrada da lista de autorização, chaveada pelo CPF limpo
// (sempre 11 dígitos). Upsert por chave: no máximo uma entrada por CPF.
type AuthorizedCPF struct {
	CPF        string     `json:"cpf"`
	AddedBy    uuid.UUID  `json:"added_by"`
	AddedAt    time.Time  `json:"added_at"`
	HasAccount bool       `json:"has_account"`
	Email      string     `json:"email"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Blocked    bool       `json:"blocked"`
}

// Submission é um formulário enviado, vinculado à conta e ao CPF por chave
// fraca (sem integridade referencial no banco, igual ao comportamento
// documentado do sistema).
type Submission struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	CPF       string           `json:"cpf"`
	Dados     FormPayload      `json:"dados"`
	Status    SubmissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// FormPayload é o payload estruturado do formulário de passaporte. Os campos
// são texto livre; a camada de apresentação é quem impõe obrigatoriedade.
// Persistido como JSONB.
type FormPayload struct {
	FullName         string `json:"fullName"`
	PreviousName     string `json:"previousName,omitempty"`
	NameChangeReason string `json:"nameChangeReason,omitempty"`
	MotherName       string `json:"motherName"`
	FatherName       string `json:"fatherName,omitempty"`
	BirthDate        string `json:"birthDate"`
	BirthCity        string `json:"birthCity"`
	BirthState       string `json:"birthState"`
	Gender           string `json:"gender"`
	SkinColor        string `json:"skinColor"`
	MaritalStatus    string `json:"maritalStatus"`
	ResponsibleCPF   string `json:"responsibleCpf,omitempty"`

	CPF              string `json:"cpf"`
	RG               string `json:"rg"`
	RGIssuer         string `json:"rgIssuer"`
	RGIssueDate      string `json:"rgIssueDate"`
	PreviousPassport string `json:"previousPassport"`
	PassportSeries   string `json:"passportSeries,omitempty"`
	PassportNumber   string `json:"passportNumber,omitempty"`
	PassportStatus   string `json:"passportStatus,omitempty"`

	CertificateType      string `json:"certificateType"`
	CertificateModel     string `json:"certificateModel"`
	CertificateNumberNew string `json:"certificateNumberNew,omitempty"`
	CertificateNumberOld string `json:"certificateNumberOld,omitempty"`
	CertificateBook      string `json:"certificateBook,omitempty"`
	CertificatePage      string `json:"certificatePage,omitempty"`

	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Profession   string `json:"profession"`

	TravelAuthorization string `json:"travelAuthorization,omitempty"`
	PassportType        string `json:"passportType"`
}

// DTOs de request/response

type RegisterRequest struct {
	CPF             string `json:"cpf" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	// Login aceita o CPF (convertido para o email derivado) ou o email
	// completo do administrador.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		CPF   string    `json:"cpf"`
		Role  Role      `json:"role"`
	} `json:"user"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AddCPFRequest struct {
	CPF string `json:"cpf" binding:"required"`
}

type AddCPFResponse struct {
	CPF               string `json:"cpf"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password"`
}

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

type SetStatusRequest struct {
	Status SubmissionStatus `json:"status" binding:"required"`
}

type SubmitRequest struct {
	Dados FormPayload `json:"dados" binding:"required"`
}

// SubmissionFilter é o filtro aplicado no banco, não no cliente.
type SubmissionFilter struct {
	Search string
	Status SubmissionStatus
}

// SubmissionEvent é publicado no Redis a cada criação ou mudança de status,
// alimentando o stream dos administradores.
type SubmissionEvent struct {
	Type         string           `json:"type"` // "created" | "status"
	SubmissionID uuid.UUID        `json:"submission_id"`
	CPF          string           `json:"cpf"`
	Status       SubmissionStatus `json:"status"`
	Timestamp    time.Time        `json:"timestamp"`
}

// NotifyEvent é o item da fila consumida pelo worker de notificações.
type NotifyEvent struct {
	Type      string    `json:"type"` // "password_reset" | "submission_received"
	Email     string    `json:"email"`
	CPF       string    `json:"cpf,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
