// Package accountdelivery manages delivery layer of account balances.
package accountdelivery

import (
	"context"
	"net/http"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/middleware"
	"github.com/kodbank/kodbank/pkg/errorspkg"
	"github.com/kodbank/kodbank/pkg/web"

	"github.com/gin-gonic/gin"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Get(ctx context.Context, id int64) (domain.User, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type balanceData struct {
	Balance  string `json:"balance"`
	FullName string `json:"fullName"`
}

// Balance handles http request to get the caller's current balance.
func (h *Handler) Balance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	userID := middleware.AuthUserID(gctx)

	user, err := h.service.Get(ctx, userID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: balanceData{
			Balance:  user.Balance,
			FullName: user.FullName,
		},
	})
}
