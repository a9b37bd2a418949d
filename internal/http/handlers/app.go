package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ecomagent/internal/infra"
	"ecomagent/internal/usage"
)

// Generator turns a prompt into text. *groq.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type App struct {
	Generator Generator
	Usage     usage.Recorder
	Logger    infra.Logger

	validate *validator.Validate
}

func NewApp(gen Generator, rec usage.Recorder, logger infra.Logger) *App {
	if rec == nil {
		rec = usage.NopRecorder{}
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &App{Generator: gen, Usage: rec, Logger: logger, validate: v}
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string, fields ...string) {
	a.json(w, code, map[string]errorBody{
		"error": {Code: errCode, Message: message, Fields: fields},
	})
}
