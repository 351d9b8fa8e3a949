package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbaisi200/passaporte-sistema/internal/cpf"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

// ExportFileName monta o nome do arquivo de exportação a partir do nome do
// cliente.
func ExportFileName(sub *models.Submission) string {
	name := sub.Dados.FullName
	if name == "" {
		name = "CLIENTE"
	}
	return fmt.Sprintf("PASSAPORTE_%s.txt", strings.Join(strings.Fields(name), "_"))
}

// ExportText gera o dossiê em texto do formulário, no layout usado pela
// equipe para dar entrada no pedido de passaporte.
func ExportText(sub *models.Submission, now time.Time) string {
	d := sub.Dados
	var b strings.Builder

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	orDash := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}

	line("FORMULÁRIO PARA EMISSÃO DE PASSAPORTE BRASILEIRO")
	line("Gerado em: %s", now.Format("02/01/2006 15:04:05"))
	line("==================================================")
	line("")

	line("1. DADOS PESSOAIS")
	line("------------------")
	line("NOME COMPLETO: %s", orDash(d.FullName))
	if d.PreviousName != "" {
		line("NOME ANTERIOR: %s", d.PreviousName)
	}
	if d.NameChangeReason != "" {
		line("MOTIVO ALTERAÇÃO: %s", d.NameChangeReason)
	}
	line("NOME DA MÃE: %s", orDash(d.MotherName))
	if d.FatherName != "" {
		line("NOME DO PAI: %s", d.FatherName)
	}
	line("DATA DE NASCIMENTO: %s", formatDateBR(d.BirthDate))
	naturalidade := orDash(d.BirthCity)
	if d.BirthState != "" {
		naturalidade += "/" + d.BirthState
	}
	line("NATURALIDADE: %s", naturalidade)
	line("SEXO: %s", genderLabel(d.Gender))
	line("COR/RAÇA: %s", orDash(d.SkinColor))
	line("ESTADO CIVIL: %s", orDash(d.MaritalStatus))
	if d.ResponsibleCPF != "" {
		line("CPF DO RESPONSÁVEL: %s", d.ResponsibleCPF)
	}

	line("")
	line("2. DOCUMENTAÇÃO")
	line("----------------")
	line("CPF: %s", cpf.Format(sub.CPF))
	line("RG: %s", orDash(d.RG))
	line("ÓRGÃO EXPEDIDOR: %s", orDash(d.RGIssuer))
	line("DATA EXPEDIÇÃO RG: %s", formatDateBR(d.RGIssueDate))
	line("POSSUI PASSAPORTE ANTERIOR: %s", orDash(d.PreviousPassport))
	if d.PreviousPassport == "SIM" {
		line("SÉRIE PASSAPORTE: %s", orDash(d.PassportSeries))
		line("NÚMERO PASSAPORTE: %s", orDash(d.PassportNumber))
		line("SITUAÇÃO: %s", orDash(d.PassportStatus))
	}

	line("")
	line("3. CERTIDÃO")
	line("-----------")
	line("TIPO: %s", orDash(d.CertificateType))
	line("MODELO: %s", certificateModelLabel(d.CertificateModel))
	switch d.CertificateModel {
	case "NOVO":
		line("NÚMERO CERTIDÃO: %s", orDash(d.CertificateNumberNew))
	case "ANTIGO":
		line("NÚMERO: %s", orDash(d.CertificateNumberOld))
		line("LIVRO: %s", orDash(d.CertificateBook))
		line("FOLHA: %s", orDash(d.CertificatePage))
	}

	line("")
	line("4. CONTATO E ENDEREÇO")
	line("----------------------")
	line("ENDEREÇO: %s", orDash(d.Address))
	line("BAIRRO: %s", orDash(d.Neighborhood))
	line("CIDADE: %s", orDash(d.City))
	line("ESTADO: %s", orDash(d.State))
	line("CEP: %s", orDash(d.ZipCode))
	line("TELEFONE: %s", orDash(d.Phone))
	line("E-MAIL: %s", orDash(d.Email))
	line("PROFISSÃO: %s", orDash(d.Profession))

	if d.TravelAuthorization != "" {
		line("")
		line("5. AUTORIZAÇÃO DE VIAGEM (MENOR)")
		line("----------------------------------")
		line("%s", d.TravelAuthorization)
	}

	line("")
	line("6. INFORMAÇÕES ADICIONAIS")
	line("----------------------------")
	line("TIPO PASSAPORTE: %s", orDash(d.PassportType))

	line("")
	line("==================================================")
	line("SB TURISMO E VIAGENS")

	return b.String()
}

// formatDateBR converte AAAA-MM-DD para DD/MM/AAAA; outros formatos passam
// como estão.
func formatDateBR(date string) string {
	if date == "" {
		return "-"
	}
	parts := strings.Split(date, "-")
	if len(parts) == 3 {
		return parts[2] + "/" + parts[1] + "/" + parts[0]
	}
	return date
}

func genderLabel(g string) string {
	switch g {
	case "M":
		return "MASCULINO"
	case "F":
		return "FEMININO"
	default:
		return "-"
	}
}

func certificateModelLabel(m string) string {
	switch m {
	case "NOVO":
		return "MODELO NOVO"
	case "ANTIGO":
		return "MODELO ANTIGO"
	default:
		return "-"
	}
}
