package main

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"reachright.co.za/web/internal/contact"
	"reachright.co.za/web/internal/handlers"
	mw "reachright.co.za/web/internal/middleware"
	"reachright.co.za/web/internal/observability"
)

const contactSentLocation = "/contact?sent=1"

// contactPage renders the form, prefilled from ?package= and showing the
// success banner after a redirect with ?sent=1.
func (a *app) contactPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := handlers.BuildContactView(q.Get("package"), q.Get("sent") == "1")
	a.renderContact(w, r, http.StatusOK, view)
}

func (a *app) contactSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		view := handlers.BuildContactView("", false)
		view.Alert = handlers.MissingFieldsAlert()
		a.renderContact(w, r, http.StatusBadRequest, view)
		return
	}

	sub := contact.Submission{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Package: r.PostForm.Get("package"),
		Message: r.PostForm.Get("message"),
		Company: r.PostForm.Get("company"),
	}.Normalize()

	view := handlers.BuildContactView(sub.Package, false)
	view.Form = sub

	if err := sub.Validate(); err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			view.FieldErrors = verr.Fields
		}
		view.Alert = handlers.MissingFieldsAlert()
		a.renderContact(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	// Honeypot filled: pretend success without delivering anything.
	if sub.IsBot() {
		logger.Info("contact honeypot triggered")
		http.Redirect(w, r, contactSentLocation, http.StatusSeeOther)
		return
	}

	receipt, err := a.contact.Submit(r.Context(), sub)
	if err != nil {
		var rejected *contact.RejectedError
		if errors.As(err, &rejected) {
			logger.Warn("contact submission rejected", zap.Int("status", rejected.Status), zap.String("reason", rejected.Message))
			view.Alert = handlers.ErrorAlert(rejected.Message)
		} else {
			logger.Error("contact submission failed", zap.Error(err))
			view.Alert = handlers.ErrorAlert(contact.NetworkFailure)
		}
		a.renderContact(w, r, http.StatusBadGateway, view)
		return
	}

	logger.Info("contact submission accepted",
		zap.String("submissionId", receipt.ID),
		zap.String("package", sub.Package),
		zap.Bool("fake", receipt.Fake),
	)
	http.Redirect(w, r, contactSentLocation, http.StatusSeeOther)
}

// contactRateLimited re-renders the form with the visitor's input intact.
func (a *app) contactRateLimited(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	observability.FromContext(r.Context()).Warn("contact rate limited", zap.Duration("retryAfter", retryAfter))
	_ = r.ParseForm()
	view := handlers.BuildContactView(r.PostForm.Get("package"), false)
	view.Form = contact.Submission{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Package: r.PostForm.Get("package"),
		Message: r.PostForm.Get("message"),
	}.Normalize()
	view.Alert = handlers.RateLimitedAlert()
	a.renderContact(w, r, http.StatusTooManyRequests, view)
}

func (a *app) renderContact(w http.ResponseWriter, r *http.Request, status int, view handlers.ContactView) {
	data := a.pageData(r, contactPageDef, a.absoluteURL(r))
	data.CSRFToken = mw.CSRFToken(r)
	data.Page = view
	a.render(w, r, status, contactPageDef.Template, data)
}
