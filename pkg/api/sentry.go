package api

import (
	"github.com/getsentry/sentry-go"

	"github.com/james-see/codecomposer/pkg/config"
)

// InitSentry configures the Sentry client from cfg. It reports false when no DSN is set.
// Callers that get true should defer sentry.Flush.
func InitSentry(cfg *config.Config, release string) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "codecomposer@" + release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            !cfg.IsProduction(),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				// uploaded source stays out of error reports
				event.Request.Data = ""
			}
			return event
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flush waits for buffered Sentry events to be sent
func Flush() {
	sentry.Flush(sentryFlushTimeout)
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for k, v := range headers {
		switch k {
		case "authorization", "Authorization", "cookie", "Cookie", "x-api-key", "X-Api-Key":
			filtered[k] = "[REDACTED]"
		default:
			filtered[k] = v
		}
	}
	return filtered
}
