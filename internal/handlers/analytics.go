package handlers

import (
	"strings"

	"reachright.co.za/web/internal/config"
)

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// Enabled reports whether any tracking snippet should render.
func (a Analytics) Enabled() bool {
	return a.GA4MeasurementID != ""
}

// AnalyticsFromConfig builds Analytics from loaded configuration. Outside
// production events are tagged for GA4 DebugView.
func AnalyticsFromConfig(cfg config.Config) Analytics {
	a := Analytics{
		GA4MeasurementID: strings.TrimSpace(cfg.Site.GA4MeasurementID),
		Debug:            !cfg.Server.Production(),
	}
	return a
}
