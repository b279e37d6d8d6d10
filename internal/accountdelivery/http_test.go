package accountdelivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/middleware"
	"github.com/kodbank/kodbank/pkg/errorspkg"
	"github.com/kodbank/kodbank/pkg/randompkg"
	"github.com/kodbank/kodbank/pkg/tokenpkg"
	"github.com/kodbank/kodbank/pkg/web"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func stubVerifier(userID int64) middleware.TokenVerifier {
	return middleware.VerifierFunc(func(_ context.Context, token string) (*tokenpkg.Payload, error) {
		if token != testToken {
			return nil, tokenpkg.ErrInvalidToken
		}

		return &tokenpkg.Payload{
			UserID:    userID,
			IssuedAt:  time.Now(),
			ExpiredAt: time.Now().Add(time.Minute),
		}, nil
	})
}

func TestBalance(t *testing.T) {
	user := domain.User{
		ID:       int64(randompkg.IntBetween(1, 1000)),
		Email:    randompkg.Email(),
		FullName: randompkg.FullName(),
		Balance:  randompkg.MoneyAmountBetween(100, 10000),
	}

	testCases := []struct {
		name           string
		setupAuth      func(r *http.Request)
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantErrorCode  string
	}{
		{
			name:      "NoAuthorization",
			setupAuth: func(r *http.Request) {},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  web.CodeUnauthorized,
		},
		{
			name: "InvalidToken",
			setupAuth: func(r *http.Request) {
				r.Header.Set(middleware.AuthorizationHeaderKey, "Bearer bogus")
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  web.CodeUnauthorized,
		},
		{
			name: "NotFound",
			setupAuth: func(r *http.Request) {
				r.Header.Set(middleware.AuthorizationHeaderKey, "Bearer "+testToken)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantErrorCode:  web.CodeNotFound,
		},
		{
			name: "Internal",
			setupAuth: func(r *http.Request) {
				r.Header.Set(middleware.AuthorizationHeaderKey, "Bearer "+testToken)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(domain.User{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantErrorCode:  web.CodeInternal,
		},
		{
			name: "OK",
			setupAuth: func(r *http.Request) {
				r.Header.Set(middleware.AuthorizationHeaderKey, "Bearer "+testToken)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			handler := NewHandler(service)

			router := gin.New()
			router.GET("/balance", middleware.Auth(stubVerifier(user.ID)), handler.Balance)

			req := httptest.NewRequest(http.MethodGet, "/balance", nil)
			tc.setupAuth(req)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantErrorCode != "" {
				var res struct {
					Error *web.JSONError `json:"error"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.NotNil(t, res.Error)
				require.Equal(t, tc.wantErrorCode, res.Error.Code)

				return
			}

			var res struct {
				Data balanceData `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.Equal(t, user.Balance, res.Data.Balance)
			require.Equal(t, user.FullName, res.Data.FullName)
		})
	}
}
