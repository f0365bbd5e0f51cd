package leads

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/studioleads/leadcapture/internal/phone"
)

// SourceOrganic is stored when a submission carries no explicit source and
// no ad-platform click id.
const SourceOrganic = "organico"

// Lead represents one captured form submission. Rows are insert-only.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message,omitempty"`
	Source    string    `json:"source,omitempty"`
	Medium    string    `json:"medium,omitempty"`
	Campaign  string    `json:"campaign,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLeadRequest is the public form payload, including the attribution
// fields the landing page collects from the URL and Facebook cookies.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`

	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	FBClid   string `json:"fbclid"`
	GClid    string `json:"gclid"`
	FBC      string `json:"fbc"`
	FBP      string `json:"fbp"`

	// Request metadata, filled by the handler, never by the client.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the payload field by field and reports the first violated
// constraint. Messages are the ones the landing page shows to visitors.
func (r *CreateLeadRequest) Validate() error {
	// Length limits count characters, not bytes: accented names are the
	// common case in this locale.
	if utf8.RuneCountInString(r.Name) < 2 {
		return &ValidationError{Field: "name", Message: "Nome deve ter pelo menos 2 caracteres"}
	}
	if utf8.RuneCountInString(r.Name) > 100 {
		return &ValidationError{Field: "name", Message: "Nome muito longo"}
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return &ValidationError{Field: "email", Message: "E-mail inválido"}
	}
	if strings.TrimSpace(r.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "Por favor, forneça seu número de WhatsApp"}
	}
	if digits := phone.Normalize(r.Phone); len(digits) < 7 || len(digits) > 15 {
		return &ValidationError{Field: "phone", Message: "WhatsApp inválido. Digite com código do país: +55 11 98765-4321"}
	}
	if utf8.RuneCountInString(r.Message) > 1000 {
		return &ValidationError{Field: "message", Message: "Mensagem muito longa"}
	}
	return nil
}

// ResolveSource applies the attribution precedence rule: an explicit source
// always wins; a submission carrying a click id keeps its source empty (the
// click id attributes the traffic); everything else is organic.
func (r *CreateLeadRequest) ResolveSource() string {
	if r.Source != "" {
		return r.Source
	}
	if r.FBClid != "" || r.GClid != "" {
		return ""
	}
	return SourceOrganic
}

// ToLead builds the row to persist: phone normalized to canonical digits,
// source resolved, metadata carried over.
func (r *CreateLeadRequest) ToLead() *Lead {
	return &Lead{
		Name:      r.Name,
		Email:     strings.TrimSpace(r.Email),
		Phone:     phone.Normalize(r.Phone),
		Message:   r.Message,
		Source:    r.ResolveSource(),
		Medium:    r.Medium,
		Campaign:  r.Campaign,
		IPAddress: r.IPAddress,
		UserAgent: r.UserAgent,
	}
}
