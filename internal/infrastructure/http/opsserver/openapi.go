package opsserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the API description
type OpenAPIHandler struct {
	logger  *zap.Logger
	spec    []byte
	version string
}

// NewOpenAPIHandler creates a new OpenAPI handler
func NewOpenAPIHandler(version string, logger *zap.Logger) *OpenAPIHandler {
	return &OpenAPIHandler{
		logger:  logger,
		spec:    openAPISpec,
		version: version,
	}
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.spec); err != nil {
		h.logger.Debug("Failed to write OpenAPI spec", zap.Error(err))
	}
}

// ServeOpenAPIIndex serves a JSON pointer to the specification
func (h *OpenAPIHandler) ServeOpenAPIIndex(w http.ResponseWriter, r *http.Request) {
	index := map[string]string{
		"openapi":  "3.0.3",
		"title":    "MealBuddy Meal Planning API",
		"version":  h.version,
		"spec_url": fmt.Sprintf("%s://%s/openapi.yaml", getScheme(r), r.Host),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(index); err != nil {
		h.logger.Debug("Failed to write OpenAPI index", zap.Error(err))
	}
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
