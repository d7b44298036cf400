package handler

import (
	"net/http"

	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves /api/transactions.
type TransactionHandler struct {
	Svc *service.TransactionService
}

func NewTransactionHandler(svc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{Svc: svc}
}

// ListTransactions handles GET /api/transactions?page&limit&sortBy&order&type&category.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var params service.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid query parameters")
		return
	}
	q, err := h.Svc.ParseList(params)
	if err != nil {
		respondError(c, err, "Transaction", "retrieving transactions")
		return
	}

	page, err := h.Svc.List(c.Request.Context(), user.ID, q)
	if err != nil {
		respondError(c, err, "Transaction", "retrieving transactions")
		return
	}
	util.JSON(c, http.StatusOK, page)
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var in service.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	tx, err := h.Svc.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err, "Transaction", "creating transaction")
		return
	}
	util.JSON(c, http.StatusCreated, util.Response{
		"message":     "Transaction created successfully",
		"transaction": tx,
	})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tx, err := h.Svc.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Transaction", "retrieving transaction")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{"transaction": tx})
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var in service.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	tx, err := h.Svc.Update(c.Request.Context(), user.ID, c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Transaction", "updating transaction")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{
		"message":     "Transaction updated successfully",
		"transaction": tx,
	})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err, "Transaction", "deleting transaction")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{"message": "Transaction deleted successfully"})
}

// TransactionsInRange handles POST /api/transactions/inRange {startDate, endDate}.
func (h *TransactionHandler) TransactionsInRange(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var r service.RangeInput
	if err := c.ShouldBindJSON(&r); err != nil {
		badBody(c)
		return
	}
	items, err := h.Svc.GetInRange(c.Request.Context(), user.ID, r)
	if err != nil {
		respondError(c, err, "Transaction", "retrieving transactions in range")
		return
	}
	util.JSON(c, http.StatusOK, items)
}

func (h *TransactionHandler) IncomeInRange(c *gin.Context) {
	h.sumInRange(c, models.TypeIncome, "calculating total income")
}

func (h *TransactionHandler) ExpensesInRange(c *gin.Context) {
	h.sumInRange(c, models.TypeExpense, "calculating total expenses")
}

func (h *TransactionHandler) sumInRange(c *gin.Context, typ models.TransactionType, action string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var r service.RangeInput
	if err := c.ShouldBindJSON(&r); err != nil {
		badBody(c)
		return
	}
	totals, err := h.Svc.SumByCategory(c.Request.Context(), user.ID, typ, r)
	if err != nil {
		respondError(c, err, "Transaction", action)
		return
	}
	util.JSON(c, http.StatusOK, totals)
}

type bulkInsertReq struct {
	Transactions []service.BulkItem `json:"transactions"`
}

type bulkUpdateReq struct {
	Filter     *service.BulkFilter  `json:"filter"`
	UpdateData *service.UpdateInput `json:"updateData"`
}

type bulkDeleteReq struct {
	Filter *service.BulkFilter `json:"filter"`
}

func (h *TransactionHandler) BulkInsert(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req bulkInsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "transactions must be an array")
		return
	}
	res, err := h.Svc.BulkInsert(c.Request.Context(), callerOf(user), req.Transactions)
	if err != nil {
		respondError(c, err, "Transaction", "inserting transactions")
		return
	}
	util.JSON(c, http.StatusCreated, util.Response{
		"message":      "Transactions inserted successfully",
		"transactions": res.Inserted,
		"failed":       res.Failed,
	})
}

func (h *TransactionHandler) BulkUpdate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req bulkUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if req.Filter == nil || req.UpdateData == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "filter and updateData are required")
		return
	}
	res, err := h.Svc.BulkUpdate(c.Request.Context(), callerOf(user), *req.Filter, *req.UpdateData)
	if err != nil {
		respondError(c, err, "Transaction", "updating transactions")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{
		"message": "Transactions updated successfully",
		"result":  res,
	})
}

func (h *TransactionHandler) BulkDelete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req bulkDeleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if req.Filter == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "filter is required")
		return
	}
	res, err := h.Svc.BulkDelete(c.Request.Context(), callerOf(user), *req.Filter)
	if err != nil {
		respondError(c, err, "Transaction", "deleting transactions")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{
		"message": "Transactions deleted successfully",
		"result":  res,
	})
}
