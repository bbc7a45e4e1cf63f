package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docubase/internal/app"
	"docubase/internal/model"
	"docubase/internal/pkg/textextract"
	"docubase/internal/transport/http/response"
)

const maxUploadSize = 20 << 20 // 20 MB

type DocumentHandler struct {
	service *app.KnowledgeService
}

func NewDocumentHandler(service *app.KnowledgeService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload ingests a multipart upload: "file" plus form fields "kind",
// "collection", "name" and "uploaded_by".
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 20MB)")
		return
	}

	kind := model.SourceKind(strings.TrimSpace(c.PostForm("kind")))
	if kind == "" || kind == model.SourceTabularRemote {
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedKind, "kind must be one of: pdf, richtext, plaintext, tabular")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to open upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read upload")
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), app.IngestInput{
		Name:       c.PostForm("name"),
		SourceRef:  file.Filename,
		Kind:       kind,
		Collection: c.PostForm("collection"),
		UploadedBy: c.PostForm("uploaded_by"),
		Data:       data,
	})
	if err != nil {
		h.ingestError(c, err)
		return
	}
	if result.Placeholder {
		response.ErrorWithData(c, http.StatusUnprocessableEntity, response.CodeEmptyExtraction,
			"extraction produced no usable text; document recorded for retry", result)
		return
	}
	response.OK(c, result)
}

type IngestRemoteRequest struct {
	URL        string `json:"url" binding:"required"`
	Name       string `json:"name"`
	Collection string `json:"collection"`
	UploadedBy string `json:"uploaded_by"`
}

// IngestRemote ingests a published sheet by URL as a tabular source.
func (h *DocumentHandler) IngestRemote(c *gin.Context) {
	var req IngestRemoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), app.IngestInput{
		Name:       req.Name,
		Kind:       model.SourceTabularRemote,
		Collection: req.Collection,
		UploadedBy: req.UploadedBy,
		SourceURL:  req.URL,
	})
	if err != nil {
		h.ingestError(c, err)
		return
	}
	if result.Placeholder {
		response.ErrorWithData(c, http.StatusUnprocessableEntity, response.CodeEmptyExtraction,
			"remote sheet produced no usable rows; document recorded for retry", result)
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.ListDocuments(c.Request.Context(), c.Query("collection"))
	if err != nil {
		if errors.Is(err, app.ErrUnknownCollection) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

func (h *DocumentHandler) Reindex(c *gin.Context) {
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	taskID, err := h.service.Reindex(c.Request.Context(), docID, uuid.NewString())
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrNoStoredSource):
			response.Error(c, http.StatusConflict, response.CodeBadRequest, err.Error())
		default:
			h.ingestError(c, err)
		}
		return
	}
	response.OK(c, gin.H{"task_id": taskID, "document_id": docID})
}

func (h *DocumentHandler) ingestError(c *gin.Context, err error) {
	var fetchErr *textextract.FetchError
	switch {
	case errors.Is(err, app.ErrUnsupportedKind):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedKind, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.As(err, &fetchErr):
		response.Error(c, http.StatusBadGateway, response.CodeRemoteFetch, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	s := c.Param(key)
	u, err := strconv.ParseUint(s, 10, 64)
	return uint(u), err
}
