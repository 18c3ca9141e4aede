package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/catalogql/internal/domain"
	"github.com/rpattn/catalogql/internal/engine"
	"github.com/rpattn/catalogql/internal/export"
)

// Handler serves the catalog query operations as a JSON HTTP API.
type Handler struct {
	planner  *engine.Planner
	exporter *export.Service
	logger   *zap.Logger
}

func New(planner *engine.Planner, exporter *export.Service, logger *zap.Logger) *Handler {
	return &Handler{planner: planner, exporter: exporter, logger: logger}
}

// Register installs the operation routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /entities", h.entities)
	mux.HandleFunc("POST /entities/by-refs", h.entitiesBatch)
	mux.HandleFunc("POST /entities/by-query", h.queryEntities)
	mux.HandleFunc("DELETE /entities/by-uid/{uid}", h.removeEntityByUID)
	mux.HandleFunc("GET /entities/by-name/{kind}/{namespace}/{name}/ancestry", h.entityAncestry)
	mux.HandleFunc("POST /entity-facets", h.facets)
	mux.HandleFunc("POST /entities/export", h.exportEntities)
}

func (h *Handler) entities(w http.ResponseWriter, r *http.Request) {
	req, err := parseEntitiesRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.planner.Entities(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) entitiesBatch(w http.ResponseWriter, r *http.Request) {
	var req engine.EntitiesBatchRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.planner.EntitiesBatch(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) queryEntities(w http.ResponseWriter, r *http.Request) {
	var req engine.QueryEntitiesRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.planner.QueryEntities(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) removeEntityByUID(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(r.PathValue("uid"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid entity uid: %v", domain.ErrInvalidRequest, err))
		return
	}

	if err := h.planner.RemoveEntityByUID(r.Context(), uid); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) entityAncestry(w http.ResponseWriter, r *http.Request) {
	ref := domain.EntityRef{
		Kind:      r.PathValue("kind"),
		Namespace: r.PathValue("namespace"),
		Name:      r.PathValue("name"),
	}

	resp, err := h.planner.EntityAncestry(r.Context(), ref)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) facets(w http.ResponseWriter, r *http.Request) {
	var req engine.FacetsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.planner.Facets(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) exportEntities(w http.ResponseWriter, r *http.Request) {
	var req export.Request
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	contentType, fileName, err := h.exporter.ContentInfo(req.Format)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)

	if _, err := h.exporter.Export(r.Context(), req, w); err != nil {
		// Headers are already sent; log and drop the connection.
		h.logger.Error("export failed", zap.Error(err))
	}
}

func parseEntitiesRequest(r *http.Request) (engine.EntitiesRequest, error) {
	var req engine.EntitiesRequest
	q := r.URL.Query()

	if raw := q.Get("filter"); raw != "" {
		var filter domain.EntityFilter
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			return req, fmt.Errorf("%w: malformed filter: %v", domain.ErrInvalidFilter, err)
		}
		req.Filter = &filter
	}
	if raw := q.Get("order"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Order); err != nil {
			return req, fmt.Errorf("%w: malformed order: %v", domain.ErrInvalidRequest, err)
		}
	}
	if raw := q.Get("fields"); raw != "" {
		req.Fields = strings.Split(raw, ",")
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: malformed limit: %v", domain.ErrInvalidRequest, err)
		}
		req.Limit = &limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: malformed offset: %v", domain.ErrInvalidRequest, err)
		}
		req.Offset = &offset
	}
	if raw := q.Get("after"); raw != "" {
		req.After = &raw
	}
	return req, nil
}

func decodeBody(r *http.Request, into any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

type errorBody struct {
	Error struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	name, status := classify(err)

	var body errorBody
	body.Error.Name = name
	body.Error.Message = err.Error()
	h.writeJSON(w, status, body)
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "NotFound", http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCursor):
		return "InvalidCursor", http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidFilter):
		return "InvalidFilter", http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidRequest):
		return "InvalidRequest", http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized", http.StatusUnauthorized
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "StorageUnavailable", http.StatusServiceUnavailable
	default:
		return "InternalError", http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
