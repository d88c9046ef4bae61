package mail

import (
	"context"
	"errors"
	"mime"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

func testAccount() *domain.Account {
	return &domain.Account{
		ID:                    4711,
		Username:              "jan",
		Email:                 "jan@example.com",
		EmailVerificationHash: "Ab3dEfGh1jKlMn0",
	}
}

func TestComposer_VerificationLink(t *testing.T) {
	link := Composer{PublicDomain: "onlinemarketplace.pl"}.VerificationLink(testAccount())

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "onlinemarketplace.pl", u.Host)
	assert.Equal(t, "/auth/email-verification/verify/", u.Path)
	assert.Equal(t, "Ab3dEfGh1jKlMn0", u.Query().Get("hash"))
	assert.Equal(t, "4711", u.Query().Get("id"))
}

func TestComposer_Verification(t *testing.T) {
	email, err := Composer{PublicDomain: "onlinemarketplace.pl"}.Verification(testAccount())
	require.NoError(t, err)

	assert.Equal(t, "jan@example.com", email.To)
	assert.Equal(t, verificationSubject, email.Subject)
	assert.Contains(t, email.TextBody, "Cześć jan!")
	assert.Contains(t, email.TextBody, "https://onlinemarketplace.pl/auth/email-verification/verify/?hash=Ab3dEfGh1jKlMn0&id=4711")
	// html/template escapes the ampersand inside the attribute
	assert.Contains(t, email.HTMLBody, "hash=Ab3dEfGh1jKlMn0&amp;id=4711")
}

func TestComposer_EscapesUsernameInHTML(t *testing.T) {
	account := testAccount()
	account.Username = "<b>jan</b>"

	email, err := Composer{PublicDomain: "onlinemarketplace.pl"}.Verification(account)
	require.NoError(t, err)
	assert.False(t, strings.Contains(email.HTMLBody, "<b>jan</b>"))
	assert.Contains(t, email.HTMLBody, "&lt;b&gt;jan&lt;/b&gt;")
}

type fakeQueue struct {
	queued []ports.Email
	err    error
}

func (q *fakeQueue) Enqueue(e ports.Email) error {
	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, e)
	return nil
}

func TestVerificationNotifier(t *testing.T) {
	q := &fakeQueue{}
	n := NewVerificationNotifier(Composer{PublicDomain: "onlinemarketplace.pl"}, q)

	require.NoError(t, n.SendVerification(context.Background(), testAccount()))
	require.Len(t, q.queued, 1)
	assert.Equal(t, "jan@example.com", q.queued[0].To)

	q.err = errors.New("mail queue is full")
	assert.Error(t, n.SendVerification(context.Background(), testAccount()))
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("no-reply@onlinemarketplace.pl", ports.Email{
		To:       "jan@example.com",
		Subject:  verificationSubject,
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})
	require.NoError(t, err)

	to, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"jan@example.com"}, to)
	subject := msg.GetGenHeader(gomail.HeaderSubject)
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, verificationSubject, decoded)
	assert.Len(t, msg.GetParts(), 2)
}

func TestBuildMessage_InvalidRecipient(t *testing.T) {
	_, err := buildMessage("no-reply@onlinemarketplace.pl", ports.Email{To: "not an address"})
	assert.Error(t, err)
}

func TestSMTPSender_ClientPerSend(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: port, From: "no-reply@onlinemarketplace.pl"})
	require.NoError(t, err)

	var built int32
	newClient := sender.newClient
	sender.newClient = func() (*gomail.Client, error) {
		atomic.AddInt32(&built, 1)
		return newClient()
	}

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = sender.Send(context.Background(), ports.Email{To: "jan@example.com", Subject: "hi", TextBody: "x"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(workers), atomic.LoadInt32(&built))
	for _, err := range errs {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp send to jan@example.com")
	}
}
