package domain

import (
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)

// Client is the owner of portfolios. Authentication credentials live
// outside this service; only the profile is kept here.
type Client struct {
	ID        string
	Name      string
	CPF       string // 11 digits, no punctuation
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientSummary is the client view embedded in portfolio snapshots.
type ClientSummary struct {
	ID    string
	Name  string
	Email string
	CPF   string
}

// Summary returns the snapshot view of c.
func (c *Client) Summary() ClientSummary {
	return ClientSummary{ID: c.ID, Name: c.Name, Email: c.Email, CPF: c.CPF}
}

// NormalizeCPF strips every non-digit from s.
func NormalizeCPF(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether s (punctuation allowed) is a well-formed
// Brazilian CPF: 11 digits, not all equal, with matching check digits.
func ValidCPF(s string) bool {
	cpf := NormalizeCPF(s)
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == 11 {
		return false
	}
	return cpf[9] == cpfCheckDigit(cpf[:9]) && cpf[10] == cpfCheckDigit(cpf[:10])
}

// cpfCheckDigit computes the next check digit for the given prefix.
func cpfCheckDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * weight
		weight--
	}
	r := 11 - sum%11
	if r >= 10 {
		return '0'
	}
	return byte('0' + r)
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}
