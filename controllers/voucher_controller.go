package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
	"github.com/thinhchuht/ResiBuy-sub001/repository"
)

// VoucherController lists active vouchers for the client's picker.
type VoucherController struct {
	Repo   repository.VoucherRepository
	Logger *zap.Logger
}

// NewVoucherController creates a new VoucherController.
func NewVoucherController(repo repository.VoucherRepository, logger *zap.Logger) *VoucherController {
	return &VoucherController{Repo: repo, Logger: logger}
}

// ListActive handles GET /vouchers.
func (vc *VoucherController) ListActive(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	vouchers, total, err := vc.Repo.FindActive(c.Request.Context(), page, limit)
	if err != nil {
		vc.Logger.Error("Failed to list vouchers", zap.Error(err))
		c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vouchers": vouchers,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}
