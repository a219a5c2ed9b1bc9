package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"earnly/internal/domain"
	"earnly/internal/middleware"
	"earnly/internal/service"
	"earnly/pkg/storage"

	"github.com/gin-gonic/gin"
)

const maxProofBytes = 10 << 20

type SubmissionHandler struct {
	submissionSvc *service.SubmissionService
	proofs        storage.ProofStore
}

func NewSubmissionHandler(submissionSvc *service.SubmissionService, proofs storage.ProofStore) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc, proofs: proofs}
}

// Create handles POST /me/submissions. It accepts JSON with proof_text or
// proof_ref, or a multipart form with task_id, proof_text and a "proof" file.
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req domain.CreateSubmissionRequest
	uploaded := ""
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		taskID, err := strconv.ParseUint(c.PostForm("task_id"), 10, 64)
		if err != nil {
			respondError(c, domain.Validationf("task_id is required"))
			return
		}
		req.TaskID = uint(taskID)
		req.ProofText = c.PostForm("proof_text")
		if fh, err := c.FormFile("proof"); err == nil {
			if h.proofs == nil {
				respondError(c, domain.Validationf("file proofs are not accepted"))
				return
			}
			if fh.Size > maxProofBytes {
				respondError(c, domain.Validationf("proof file exceeds %d bytes", maxProofBytes))
				return
			}
			f, err := fh.Open()
			if err != nil {
				respondError(c, domain.Validationf("could not read proof file"))
				return
			}
			defer f.Close()
			ct, err := storage.SniffContentType(f, storage.AllowProof...)
			if err != nil {
				respondError(c, domain.Validationf("%v", err))
				return
			}
			if uploaded, err = h.proofs.Upload(c.Request.Context(), f, fh.Filename, ct); err != nil {
				respondError(c, err)
				return
			}
			req.ProofRef = uploaded
		} else if !errors.Is(err, http.ErrMissingFile) {
			badRequest(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.submissionSvc.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		if uploaded != "" {
			if derr := h.proofs.Delete(c.Request.Context(), uploaded); derr != nil {
				slog.Warn("remove orphaned proof", "url", uploaded, "error", derr)
			}
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// ListMine handles GET /me/submissions.
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	p, l := parsePagination(c)
	list, total, err := h.submissionSvc.ListMine(c.Request.Context(), middleware.GetActor(c), p, l)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, p, l)
}

// List handles GET /admin/submissions?status=.
func (h *SubmissionHandler) List(c *gin.Context) {
	p, l := parsePagination(c)
	list, total, err := h.submissionSvc.List(c.Request.Context(), middleware.GetActor(c), c.Query("status"), p, l)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, p, l)
}

// Resolve handles POST /admin/submissions/:id/resolve.
func (h *SubmissionHandler) Resolve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Decision = strings.ToUpper(strings.TrimSpace(req.Decision))
	sub, err := h.submissionSvc.Resolve(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
