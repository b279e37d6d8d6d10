// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/middleware"
	"github.com/kodbank/kodbank/pkg/errorspkg"
	"github.com/kodbank/kodbank/pkg/web"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, email, password, fullName string) (domain.UserWithoutPassword, error)
	CheckPassword(ctx context.Context, email, password string) (domain.UserWithoutPassword, error)
}

// SessionMaker facilitates session creation and revocation.
type SessionMaker interface {
	Create(ctx context.Context, userID int64) (string, time.Time, error)
	Revoke(ctx context.Context, token string) error
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns user handler.
func NewHandler(us Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      us,
		sessionMaker: sm,
	}
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

type createRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

type userData struct {
	User domain.UserWithoutPassword `json:"user"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	createdUser, err := h.service.Create(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		if err == domain.ErrEmailAlreadyExists {
			gctx.JSON(http.StatusConflict, web.Error(web.CodeConflict, err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))

		return
	}

	accessToken, accessTokenExpiresAt, err := h.sessionMaker.Create(ctx, createdUser.ID)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))

		return
	}

	setTokenCookie(gctx, accessToken, accessTokenExpiresAt)

	gctx.JSON(http.StatusCreated, web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessTokenExpiresAt.Format(time.RFC3339),
		Data:                 userData{User: createdUser},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login handles http login request and returns user and session data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	user, err := h.service.CheckPassword(ctx, req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound, domain.ErrWrongPassword:
			// One answer for both cases so the endpoint cannot be used to
			// probe which emails are registered.
			gctx.JSON(http.StatusUnauthorized, web.Error(web.CodeUnauthorized, errors.New("invalid email or password")))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))

		return
	}

	accessToken, accessTokenExpiresAt, err := h.sessionMaker.Create(ctx, user.ID)
	if err != nil {
		l.Warn().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))

		return
	}

	setTokenCookie(gctx, accessToken, accessTokenExpiresAt)

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessTokenExpiresAt.Format(time.RFC3339),
		Data:                 userData{User: user},
	})
}

type logoutData struct {
	Message string `json:"message"`
}

// Logout handles http request to revoke the caller's token.
func (h *Handler) Logout(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	token := middleware.AuthToken(gctx)

	if err := h.sessionMaker.Revoke(ctx, token); err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeInternal, errorspkg.ErrInternal))

		return
	}

	gctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)

	gctx.JSON(http.StatusOK, web.Response{Data: logoutData{Message: "Logged out"}})
}

func setTokenCookie(gctx *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	gctx.SetCookie(middleware.TokenCookieName, token, maxAge, "/", "", false, true)
}
