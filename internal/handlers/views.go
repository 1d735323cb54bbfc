package handlers

import (
	"strings"

	"reachright.co.za/web/internal/cms"
	"reachright.co.za/web/internal/contact"
)

// HomeView is the landing page model.
type HomeView struct {
	Highlights   []cms.Highlight
	Services     []cms.Service
	Testimonials []cms.Testimonial
}

func BuildHomeView() HomeView {
	testimonials := cms.Testimonials()
	if len(testimonials) > 3 {
		testimonials = testimonials[:3]
	}
	services := cms.Services()
	if len(services) > 4 {
		services = services[:4]
	}
	return HomeView{
		Highlights:   cms.Highlights(),
		Services:     services,
		Testimonials: testimonials,
	}
}

// AboutView is the about page model.
type AboutView struct {
	Values   []cms.Feature
	Features []cms.Feature
}

func BuildAboutView() AboutView {
	return AboutView{Values: cms.Values(), Features: cms.Features()}
}

// ServicesView is the services catalog model.
type ServicesView struct {
	Services []cms.Service
}

func BuildServicesView() ServicesView {
	return ServicesView{Services: cms.Services()}
}

// PricingView is the pricing page model.
type PricingView struct {
	Plans []cms.Plan
	FAQs  []cms.Feature
}

func BuildPricingView() PricingView {
	return PricingView{Plans: cms.Plans(), FAQs: cms.FAQs()}
}

// TestimonialsView is the testimonials page model.
type TestimonialsView struct {
	Stats        []cms.Stat
	Testimonials []cms.Testimonial
	Average      float64
	Count        int
}

func BuildTestimonialsView() TestimonialsView {
	t := cms.Testimonials()
	return TestimonialsView{
		Stats:        cms.Stats(),
		Testimonials: t,
		Average:      cms.AverageRating(),
		Count:        len(t),
	}
}

// Alert is a one-shot status banner on the contact page.
type Alert struct {
	Kind  string // success | error
	Title string
	Body  string
}

// ContactView is the contact page model.
type ContactView struct {
	Form        contact.Submission
	Packages    []string
	FieldErrors map[string]string
	Alert       *Alert
}

const (
	alertMissingFields = "Please fill in your name, email, and message."
	alertSentTitle     = "Message Sent Successfully!"
	alertSentBody      = "We'll get back to you within 24 hours."
	alertRateLimited   = "You have sent several messages in a short time. Please wait a moment and try again."
)

// BuildContactView prepares the form. pkg comes from ?package= and preselects
// the package and the message body when it names a known option.
func BuildContactView(pkg string, sent bool) ContactView {
	view := ContactView{Packages: cms.Packages()}
	if pkg = strings.TrimSpace(pkg); pkg != "" {
		view.Form.Package = pkg
		view.Form.Message = contact.PrefillMessage(pkg)
		if !containsString(view.Packages, pkg) {
			view.Packages = append(view.Packages, pkg)
		}
	}
	if sent {
		view.Alert = SentAlert()
	}
	return view
}

// SentAlert is shown after a successful post-redirect-get.
func SentAlert() *Alert {
	return &Alert{Kind: "success", Title: alertSentTitle, Body: alertSentBody}
}

// ErrorAlert wraps msg as an error banner.
func ErrorAlert(msg string) *Alert {
	return &Alert{Kind: "error", Title: "Error", Body: msg}
}

// MissingFieldsAlert is shown when required fields are empty or invalid.
func MissingFieldsAlert() *Alert {
	return &Alert{Kind: "error", Title: "Missing fields", Body: alertMissingFields}
}

// RateLimitedAlert is shown when the visitor has posted too often.
func RateLimitedAlert() *Alert {
	return &Alert{Kind: "error", Title: "Slow down", Body: alertRateLimited}
}

// ThankYouView is the post-payment confirmation model.
type ThankYouView struct {
	PlanName string
}

// BuildThankYouView maps ?plan= to a plan name, echoing unknown values.
func BuildThankYouView(plan string) ThankYouView {
	plan = strings.TrimSpace(plan)
	if p, ok := cms.PlanByKey(plan); ok {
		return ThankYouView{PlanName: p.Name}
	}
	if plan == "" {
		return ThankYouView{PlanName: "your selected package"}
	}
	return ThankYouView{PlanName: plan}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
