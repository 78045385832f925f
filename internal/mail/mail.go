// Package mail sends verification e-mail over SMTP with TLS.
package mail

import (
	"crypto/tls"
	"io"
	"net/smtp"
	"strings"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/config"
)

// Mailer dispatches verification e-mail. The engine treats dispatch as
// fire-and-forget, but a failure still aborts the enclosing
// registration transaction.
type Mailer interface {
	SendVerification(address, tokenString string) error
}

type SMTPMailer struct {
	settings    *config.SMTP
	externalURL string
}

func NewSMTPMailer(settings *config.Config) *SMTPMailer {
	return &SMTPMailer{
		settings:    &settings.SMTP,
		externalURL: strings.TrimSuffix(settings.ExternalURL, "/"),
	}
}

var messageTemplate = `To: {to}
From: {from}
Subject: Verify your account
Content-Type: text/plain; charset=UTF-8; format=flowed
Content-Transfer-Encoding: 7bit

Please click on the following link to verify your account:

{link}
`

// SendVerification mails a verification link containing the token.
func (mailer *SMTPMailer) SendVerification(address, tokenString string) error {
	message := strings.Replace(messageTemplate, "{to}", address, 1)
	message = strings.Replace(message, "{from}", mailer.settings.From, 1)
	message = strings.Replace(message, "{link}", mailer.externalURL+"/validate/"+tokenString, 1)

	if err := mailer.send(address, message); err != nil {
		return apperror.Infrastructure("sending verification mail failed", err)
	}

	return nil
}

func (mailer *SMTPMailer) send(to string, message string) error {
	host := mailer.settings.Host
	tlsconfig := &tls.Config{ServerName: host}
	auth := smtp.PlainAuth("", mailer.settings.Username, mailer.settings.Password, host)

	var conn *tls.Conn
	var err error

	if conn, err = tls.Dial("tcp", host+":"+mailer.settings.Port, tlsconfig); err != nil {
		return err
	}

	defer conn.Close()

	var client *smtp.Client

	if client, err = smtp.NewClient(conn, host); err != nil {
		return err
	}

	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return err
	}

	if err = client.Mail(mailer.settings.From); err != nil {
		return err
	}

	if err = client.Rcpt(to); err != nil {
		return err
	}

	var writer io.WriteCloser

	if writer, err = client.Data(); err != nil {
		return err
	}

	if _, err = writer.Write([]byte(message)); err != nil {
		return err
	}

	if err = writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}
