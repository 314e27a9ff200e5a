package main

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/models"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("bitbucket.org/sxnics/sxnics_backend")

// Multipart forms are buffered in memory up to this size; larger parts spill
// to temp files. Episode audio can reach 200MB so keep the threshold modest.
const maxFormMemory = 32 << 20

// respondError maps model errors onto the admin API contract:
// ValidationError -> 422 with field messages, ParseError -> 400,
// missing records -> 404, everything else -> 500.
func respondError(c *gin.Context, moduleName string, funcName string, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, ve)
		return
	}
	var pe *models.ParseError
	if errors.As(err, &pe) {
		c.JSON(http.StatusBadRequest, gin.H{"message": pe.Error()})
		return
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "record not found"})
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), moduleName, funcName, cid, nil, err)
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func requestForm(c *gin.Context) (*multipart.Form, bool) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid multipart form: " + err.Error()})
		return nil, false
	}
	return c.Request.MultipartForm, true
}

func formString(form *multipart.Form, key string) string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

func formBool(form *multipart.Form, key string) bool {
	v := formString(form, key)
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "on") || v == "1"
}

// formFile reads an optional uploaded part. A missing part returns nil.
func formFile(form *multipart.Form, key string) (*models.FormFile, error) {
	headers, ok := form.File[key]
	if !ok || len(headers) == 0 {
		return nil, nil
	}
	return models.ReadFormFile(headers[0])
}
