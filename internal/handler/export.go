package handler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler streams a user's transactions as CSV or XLSX.
type ExportHandler struct {
	Svc *service.TransactionService
}

func NewExportHandler(svc *service.TransactionService) *ExportHandler {
	return &ExportHandler{Svc: svc}
}

var exportHeaders = []string{"Date", "Description", "Type", "Category", "Amount", "Payment method", "Note"}

func exportRow(t *models.Transaction) []string {
	return []string{
		t.Date.Format("2006-01-02"),
		t.Description,
		string(t.Type),
		t.Category,
		t.Amount.StringFixed(2),
		string(t.Metadata.PaymentMethod),
		t.Metadata.Note,
	}
}

func attachment(c *gin.Context, ext string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"",
		time.Now().Format("20060102"), ext))
}

func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.Svc.All(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Transaction", "exporting transactions")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	attachment(c, "csv")
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps detect the encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for i := range items {
		_ = w.Write(exportRow(&items[i]))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		slog.ErrorContext(c.Request.Context(), "write csv export", "user_id", user.ID, "err", err)
	}
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.Svc.All(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Transaction", "exporting transactions")
		return
	}

	f, err := buildWorkbook(items)
	if err != nil {
		respondError(c, err, "Transaction", "exporting transactions")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	attachment(c, "xlsx")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		slog.ErrorContext(c.Request.Context(), "write xlsx export", "user_id", user.ID, "err", err)
	}
}

const exportSheet = "Transactions"

func buildWorkbook(items []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for r := range items {
		t := &items[r]
		row := r + 2
		amount, _ := t.Amount.Float64()
		values := []any{
			t.Date.Format("2006-01-02"),
			t.Description,
			string(t.Type),
			t.Category,
			amount,
			string(t.Metadata.PaymentMethod),
			t.Metadata.Note,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "B", 30)
	_ = f.SetColWidth(exportSheet, "C", "D", 14)
	_ = f.SetColWidth(exportSheet, "E", "E", 12)
	_ = f.SetColWidth(exportSheet, "F", "F", 16)
	_ = f.SetColWidth(exportSheet, "G", "G", 30)
	return f, nil
}
