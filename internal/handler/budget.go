package handler

import (
	"net/http"
	"strconv"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// BudgetHandler serves /api/budgets.
type BudgetHandler struct {
	Svc *service.BudgetService
}

func NewBudgetHandler(svc *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{Svc: svc}
}

func budgetID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Budget not found or unauthorized")
		return 0, false
	}
	return uint(id), true
}

// ListBudgets handles GET /api/budgets?category=.
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), user.ID, c.Query("category"))
	if err != nil {
		respondError(c, err, "Budget", "retrieving budgets")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{"budgets": items})
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in service.BudgetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err, "Budget", "creating budget")
		return
	}
	util.JSON(c, http.StatusCreated, util.Response{"message": "Budget created successfully", "budget": b})
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := budgetID(c)
	if !ok {
		return
	}
	var in service.BudgetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		respondError(c, err, "Budget", "updating budget")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{"message": "Budget updated successfully", "budget": b})
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := budgetID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err, "Budget", "deleting budget")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{"message": "Budget deleted successfully"})
}
