package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-order-notify/internal/records"
	"github.com/imrishuroy/go-order-notify/internal/validation"
)

type recordsHandler struct {
	store    records.Store
	validate *validatorv10.Validate
	log      *slog.Logger
}

// RegisterRecordRoutes mounts CRUD routes for every collection under r:
// GET/POST /:collection and GET/PUT/PATCH/DELETE /:collection/:id.
func RegisterRecordRoutes(r gin.IRouter, store records.Store, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	h := &recordsHandler{store: store, validate: validation.New(), log: log}

	r.GET("/:collection", h.list)
	r.POST("/:collection", h.create)
	r.GET("/:collection/:id", h.get)
	r.PUT("/:collection/:id", h.replace)
	r.PATCH("/:collection/:id", h.patch)
	r.DELETE("/:collection/:id", h.delete)
}

func (h *recordsHandler) uri(c *gin.Context) (validation.RecordURI, bool) {
	var uri validation.RecordURI
	if err := validation.BindURIAndValidate(c, &uri, h.validate); err != nil {
		return uri, false
	}
	return uri, true
}

func (h *recordsHandler) body(c *gin.Context) (records.Record, bool) {
	var rec records.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		return nil, false
	}
	return rec, true
}

// list filters on query parameters; "_"-prefixed parameters are reserved and ignored.
func (h *recordsHandler) list(c *gin.Context) {
	uri, ok := h.uri(c)
	if !ok {
		return
	}
	filter := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if strings.HasPrefix(k, "_") || len(v) == 0 {
			continue
		}
		filter[k] = v[0]
	}

	out, err := h.store.List(c.Request.Context(), uri.Collection, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *recordsHandler) get(c *gin.Context) {
	uri, ok := h.uri(c)
	if !ok {
		return
	}
	rec, err := h.store.Get(c.Request.Context(), uri.Collection, uri.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *recordsHandler) create(c *gin.Context) {
	uri, ok := h.uri(c)
	if !ok {
		return
	}
	rec, ok := h.body(c)
	if !ok {
		return
	}
	created, err := h.store.Create(c.Request.Context(), uri.Collection, rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *recordsHandler) replace(c *gin.Context) {
	uri, ok := h.uri(c)
	if !ok {
		return
	}
	rec, ok := h.body(c)
	if !ok {
		return
	}
	out, err := h.store.Replace(c.Request.Context(), uri.Collection, uri.ID, rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *recordsHandler) patch(c *gin.Context) {
	uri, ok := h.uri(c)
	if !ok {
		return
	}
	rec, ok := h.body(c)
	if !ok {
		return
	}
	out, err := h.store.Patch(c.Request.Context(), uri.Collection, uri.ID, rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *recordsHandler) delete(c *gin.Context) {
	uri, ok := h.uri(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), uri.Collection, uri.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *recordsHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, records.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, records.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record", "detail": err.Error()})
	default:
		h.log.ErrorContext(c.Request.Context(), "record store failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failed"})
	}
}
