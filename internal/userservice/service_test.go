package userservice

import (
	"context"
	"testing"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/pkg/passpkg"
	"github.com/kodbank/kodbank/pkg/randompkg"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	email := randompkg.Email()
	fullName := randompkg.FullName()
	password := randompkg.String(10)

	stored := domain.User{
		ID:        1,
		Email:     email,
		FullName:  fullName,
		Balance:   "1000",
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(res domain.UserWithoutPassword, err error)
	}{
		{
			name: "EmailAlreadyExists",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.User{}, domain.ErrEmailAlreadyExists)
			},
			checkResponse: func(res domain.UserWithoutPassword, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
			},
		},
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateUserParams{})).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.CreateUserParams) (domain.User, error) {
						require.Equal(t, email, arg.Email)
						require.Equal(t, fullName, arg.FullName)
						// The service stores a hash, never the raw password.
						require.NotEqual(t, password, arg.HashedPassword)
						require.NoError(t, passpkg.Check(password, arg.HashedPassword))

						user := stored
						user.HashedPassword = arg.HashedPassword

						return user, nil
					})
			},
			checkResponse: func(res domain.UserWithoutPassword, err error) {
				require.NoError(t, err)
				require.Equal(t, NewUserWithoutPassword(stored), res)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			res, err := service.Create(context.Background(), email, password, fullName)
			tc.checkResponse(res, err)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	require.NoError(t, err)

	user := domain.User{
		ID:             1,
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.FullName(),
		Balance:        "1000",
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}

	testCases := []struct {
		name          string
		password      string
		buildStubs    func(repo *MockRepo)
		checkResponse func(res domain.UserWithoutPassword, err error)
	}{
		{
			name:     "UserNotFound",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(user.Email)).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
			},
			checkResponse: func(res domain.UserWithoutPassword, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrUserNotFound)
			},
		},
		{
			name:     "WrongPassword",
			password: "not-the-password",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(user.Email)).
					Times(1).
					Return(user, nil)
			},
			checkResponse: func(res domain.UserWithoutPassword, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrWrongPassword)
			},
		},
		{
			name:     "OK",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(user.Email)).
					Times(1).
					Return(user, nil)
			},
			checkResponse: func(res domain.UserWithoutPassword, err error) {
				require.NoError(t, err)
				require.Equal(t, NewUserWithoutPassword(user), res)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			res, err := service.CheckPassword(context.Background(), user.Email, tc.password)
			tc.checkResponse(res, err)
		})
	}
}
