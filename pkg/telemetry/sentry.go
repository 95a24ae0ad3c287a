package telemetry

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/bizdir/pkg/config"
)

// probePaths are polled by orchestrators and never worth an event.
var probePaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: cfg.SentryTracesSampleRate,
		BeforeSend:       dropProbeEvents,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

func dropProbeEvents(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil && probePaths[requestPath(event.Request.URL)] {
		return nil
	}
	return event
}

func requestPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware captures panics and reports them to Sentry.
// Repanic lets the outer Recovery middleware still write the 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true, WaitForDelivery: false})
	return h.Handle
}
