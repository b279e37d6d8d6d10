// Package ledgerdelivery manages delivery layer of money movements and history.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/middleware"
	"github.com/kodbank/kodbank/pkg/errorspkg"
	"github.com/kodbank/kodbank/pkg/web"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Deposit(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error)
	Withdraw(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error)
	Transfer(ctx context.Context, senderID int64, recipientEmail, amount string) (domain.TransferTxResult, error)
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(ls Service) *Handler {
	return &Handler{service: ls}
}

func bindError(gctx *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		msg := field.Field() + web.GetErrorMsg(field)
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeInvalidRequest, errors.New(msg)))

		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(web.CodeInvalidRequest, err))
}

func writeError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrInvalidAmount:
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeInvalidAmount, err))
	case domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeInsufficientFunds, err))
	case domain.ErrRecipientNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(web.CodeRecipientNotFound, err))
	case domain.ErrSelfTransfer:
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeSelfTransfer, err))
	case domain.ErrUserNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, err))
	case errorspkg.ErrTransient:
		gctx.JSON(http.StatusServiceUnavailable, web.Error(web.CodeTransient, err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))
	}
}

type movementRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type movementData struct {
	Message    string `json:"message"`
	Amount     string `json:"amount"`
	NewBalance string `json:"newBalance"`
}

// Deposit handles http request to deposit money.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req movementRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	userID := middleware.AuthUserID(gctx)

	result, err := h.service.Deposit(ctx, userID, req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: movementData{
			Message:    "Deposit successful",
			Amount:     req.Amount,
			NewBalance: result.User.Balance,
		},
	})
}

// Withdraw handles http request to withdraw money.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req movementRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	userID := middleware.AuthUserID(gctx)

	result, err := h.service.Withdraw(ctx, userID, req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: movementData{
			Message:    "Withdrawal successful",
			Amount:     req.Amount,
			NewBalance: result.User.Balance,
		},
	})
}

type transferRequest struct {
	ToEmail string `json:"toEmail" binding:"required,email"`
	Amount  string `json:"amount" binding:"required"`
}

type transferData struct {
	Message    string `json:"message"`
	Amount     string `json:"amount"`
	Recipient  string `json:"recipient"`
	NewBalance string `json:"newBalance"`
}

// Transfer handles http request to transfer money to another user.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	userID := middleware.AuthUserID(gctx)

	result, err := h.service.Transfer(ctx, userID, req.ToEmail, req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: transferData{
			Message:    "Transfer successful",
			Amount:     req.Amount,
			Recipient:  result.Recipient.FullName,
			NewBalance: result.Sender.Balance,
		},
	})
}

// Limits above the supported maximum are not rejected here; the service
// clamps them.
type listRequest struct {
	Limit  int32 `form:"limit" binding:"omitempty,min=1"`
	Offset int32 `form:"offset" binding:"omitempty,min=0"`
}

type transactionsData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// List handles http request to page through the caller's ledger history.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	userID := middleware.AuthUserID(gctx)

	transactions, err := h.service.List(ctx, userID, req.Limit, req.Offset)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: transactionsData{Transactions: transactions},
	})
}
