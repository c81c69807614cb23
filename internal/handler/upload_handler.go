package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"kultura.id/engagehub/pkg/response"
	"kultura.id/engagehub/pkg/storage"
)

// 10 MB cap on proof uploads.
const maxProofSize = 10 << 20

type UploadHandler struct {
	storage storage.ProofStorage
	folder  string
}

func NewUploadHandler(storage storage.ProofStorage, folder string) *UploadHandler {
	return &UploadHandler{storage: storage, folder: folder}
}

// UploadProof stores an evidence file and returns its file reference.
// Submitters call this first, then pass the returned file_ref when
// creating a submission.
func (h *UploadHandler) UploadProof(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if fileHeader.Size > maxProofSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 10MB limit"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	fileName := fmt.Sprintf("%s_%d_%s", userID.String(), time.Now().UnixNano(), fileHeader.Filename)

	fileRef, err := h.storage.UploadProof(c.Request.Context(), file, h.folder, fileName)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file_ref": fileRef})
}
