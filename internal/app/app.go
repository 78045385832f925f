// Package app bundles the long-lived dependencies handlers need:
// settings, the logger, the price feed, the mailer, the token codec,
// and session storage. Database connections are opened per request and
// deliberately not held here.
package app

import (
	"go.uber.org/zap"

	"github.com/dense-analysis/tradewarp/internal/config"
	"github.com/dense-analysis/tradewarp/internal/mail"
	"github.com/dense-analysis/tradewarp/internal/pricing"
	"github.com/dense-analysis/tradewarp/internal/session"
	"github.com/dense-analysis/tradewarp/internal/token"
)

type App struct {
	Config   *config.Config
	Log      *zap.SugaredLogger
	Prices   *pricing.Client
	Mailer   mail.Mailer
	Tokens   *token.Codec
	Sessions *session.Store
}

// New wires an App from settings. The zap logger is passed in so main
// can flush it on shutdown.
func New(settings *config.Config, log *zap.SugaredLogger) *App {
	return &App{
		Config:   settings,
		Log:      log,
		Prices:   pricing.NewClient(settings),
		Mailer:   mail.NewSMTPMailer(settings),
		Tokens:   token.NewCodec(settings.TokenKey),
		Sessions: session.NewStore(settings.SecretKey),
	}
}
