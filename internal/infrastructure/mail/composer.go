package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strconv"
	texttemplate "text/template"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

const verificationSubject = "Witaj na Online Marketplace, potwierdź swój adres email."

//go:embed templates/*
var templates embed.FS

var (
	verificationText = texttemplate.Must(texttemplate.ParseFS(templates, "templates/verification.txt"))
	verificationHTML = htmltemplate.Must(htmltemplate.ParseFS(templates, "templates/verification.html"))
)

type verificationData struct {
	Subject  string
	Username string
	Link     string
}

// Composer renders outgoing messages. PublicDomain is the host the
// verification link points at, e.g. "onlinemarketplace.pl".
type Composer struct {
	PublicDomain string
}

// VerificationLink builds https://<domain>/auth/email-verification/verify/?hash=..&id=..
func (c Composer) VerificationLink(account *domain.Account) string {
	q := url.Values{}
	q.Set("hash", account.EmailVerificationHash)
	q.Set("id", strconv.FormatInt(account.ID, 10))
	u := url.URL{
		Scheme:   "https",
		Host:     c.PublicDomain,
		Path:     "/auth/email-verification/verify/",
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (c Composer) Verification(account *domain.Account) (ports.Email, error) {
	data := verificationData{
		Subject:  verificationSubject,
		Username: account.Username,
		Link:     c.VerificationLink(account),
	}

	var text, html bytes.Buffer
	if err := verificationText.Execute(&text, data); err != nil {
		return ports.Email{}, fmt.Errorf("render verification text: %w", err)
	}
	if err := verificationHTML.Execute(&html, data); err != nil {
		return ports.Email{}, fmt.Errorf("render verification html: %w", err)
	}

	return ports.Email{
		To:       account.Email,
		Subject:  verificationSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
