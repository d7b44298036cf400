package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// maxBackupSize caps the restore request body.
const maxBackupSize = 32 << 20

// BackupHandler downloads and restores encrypted transaction backups.
type BackupHandler struct {
	Svc        *service.TransactionService
	EncryptKey string
}

func NewBackupHandler(svc *service.TransactionService, encryptKey string) *BackupHandler {
	return &BackupHandler{Svc: svc, EncryptKey: encryptKey}
}

// DownloadBackup handles GET /api/transactions/backup.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	blob, err := h.Svc.Backup(c.Request.Context(), user.ID, h.EncryptKey)
	if err != nil {
		respondError(c, err, "Transaction", "creating backup")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"backup-%d-%s.bin\"",
		user.ID, time.Now().Format("20060102")))
	c.Data(http.StatusOK, "application/octet-stream", blob)
}

// RestoreBackup handles POST /api/transactions/backup/restore with the raw
// backup file as the request body.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	blob, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupSize+1))
	if err != nil {
		badBody(c)
		return
	}
	if len(blob) == 0 || len(blob) > maxBackupSize {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "backup file is empty or too large")
		return
	}

	n, err := h.Svc.Restore(c.Request.Context(), user.ID, h.EncryptKey, blob)
	if err != nil {
		respondError(c, err, "Transaction", "restoring backup")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{
		"message":  "Backup restored successfully",
		"restored": n,
	})
}
