package cpf

import "strings"

// Domínio fixo usado para gerar o login sintético dos clientes.
const LoginDomain = "passaporte.com"

// SentinelAdmin é o CPF reservado da conta administrativa.
const SentinelAdmin = "00000000000"

// Clean remove tudo que não for dígito. É a forma canônica usada como chave
// de armazenamento e comparação em todo o sistema.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LoginEmail deriva o credencial de login a partir de um CPF: os dígitos
// concatenados com o domínio fixo. Função total, não valida o CPF.
func LoginEmail(s string) string {
	return Clean(s) + "@" + LoginDomain
}

// Format aplica a máscara de exibição 000.000.000-00. Entradas que não tenham
// 11 dígitos são devolvidas como estão.
func Format(s string) string {
	c := Clean(s)
	if len(c) != 11 {
		return s
	}
	return c[0:3] + "." + c[3:6] + "." + c[6:9] + "-" + c[9:11]
}

// IsWellFormed verifica apenas o tamanho: 11 dígitos após a limpeza.
// É o único critério aplicado no cadastro feito pelo administrador.
func IsWellFormed(s string) bool {
	return len(Clean(s)) == 11
}

// IsValid aplica a validação completa de CPF: 11 dígitos, não pode ser uma
// sequência de um único dígito repetido e os dois dígitos verificadores devem
// conferir (módulo 11 com pesos decrescentes a partir de 10 e 11).
func IsValid(s string) bool {
	c := Clean(s)
	if len(c) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < 11; i++ {
		if c[i] != c[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	if checkDigit(c, 9) != int(c[9]-'0') {
		return false
	}
	if checkDigit(c, 10) != int(c[10]-'0') {
		return false
	}
	return true
}

// checkDigit calcula o dígito verificador na posição pos (9 ou 10) a partir
// dos dígitos anteriores. Resto 10 ou 11 é mapeado para 0.
func checkDigit(c string, pos int) int {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(c[i]-'0') * (pos + 1 - i)
	}
	rem := (sum * 10) % 11
	if rem == 10 || rem == 11 {
		rem = 0
	}
	return rem
}
