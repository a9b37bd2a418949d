package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"ecomagent/internal/content"
	"ecomagent/internal/middleware"
	"ecomagent/internal/providers/groq"
	"ecomagent/internal/usage"
)

const maxBodyBytes = 1 << 20

func (a *App) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req content.ProductRequest
	if !a.bind(w, r, &req) {
		return
	}
	a.generate(w, r, content.KindProductDescription, "description", req.Prompt())
}

func (a *App) GenerateTags(w http.ResponseWriter, r *http.Request) {
	var req content.SEORequest
	if !a.bind(w, r, &req) {
		return
	}
	a.generate(w, r, content.KindSEOTags, "tags", req.Prompt())
}

func (a *App) GenerateMarketingContent(w http.ResponseWriter, r *http.Request) {
	var req content.MarketingRequest
	if !a.bind(w, r, &req) {
		return
	}
	a.generate(w, r, content.KindMarketing, "marketing_content", req.Prompt())
}

// bind decodes and validates the body into dst, writing the client error
// itself when it returns false.
func (a *App) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "unexpected data after JSON body")
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return false
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		a.error(w, http.StatusUnprocessableEntity, "validation_failed", "missing required fields", fields...)
		return false
	}
	return true
}

// generate calls the provider and always answers 200; provider failures are
// reported as text in the single result field.
func (a *App) generate(w http.ResponseWriter, r *http.Request, kind content.Kind, field, prompt string) {
	// The provider call outlives a dropped client connection; only the
	// client timeout bounds it.
	ctx := context.WithoutCancel(r.Context())
	start := time.Now()
	text, err := a.Generator.Generate(ctx, prompt)
	latency := time.Since(start)

	ev := usage.Event{
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Kind:      kind,
		Model:     a.Generator.Model(),
		Success:   err == nil,
		Latency:   latency,
		Locale:    middleware.LocaleFromContext(r.Context()),
		Country:   middleware.CountryFromContext(r.Context()),
	}
	if err != nil {
		text = groq.Describe(err)
		ev.ErrorKind = groq.KindOf(err).String()
		var gerr *groq.Error
		if errors.As(err, &gerr) {
			ev.UpstreamStatus = gerr.StatusCode
		}
	}
	a.Usage.Record(ctx, ev)

	a.json(w, http.StatusOK, map[string]string{field: text})
}
