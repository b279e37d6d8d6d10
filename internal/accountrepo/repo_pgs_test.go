package accountrepo

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/userrepo"
	"github.com/kodbank/kodbank/pkg/configpkg"
	"github.com/kodbank/kodbank/pkg/errorspkg"
	"github.com/kodbank/kodbank/pkg/passpkg"
	"github.com/kodbank/kodbank/pkg/randompkg"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testRepo     *RepoPGS
	testUserRepo *userrepo.RepoPGS
)

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB)
	testUserRepo = userrepo.NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func createRandomUser(t *testing.T) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	require.NoError(t, err)

	user, err := testUserRepo.Create(context.Background(), domain.CreateUserParams{
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.FullName(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, user)

	return user
}

func TestGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	user := createRandomUser(t)

	got, err := testRepo.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, user.Balance, got.Balance)

	_, err = testRepo.Get(context.Background(), -1)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAddBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	user := createRandomUser(t)

	got, err := testRepo.AddBalance(context.Background(), "250", user.ID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString(got.Balance).Equal(decimal.RequireFromString("1250")))

	got, err = testRepo.AddBalance(context.Background(), "-1250", user.ID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString(got.Balance).Equal(decimal.Zero))
}

func TestAddBalanceUnknownUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	_, err := testRepo.AddBalance(context.Background(), "100", -1)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAddBalanceRejectsNegativeResult(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	user := createRandomUser(t)

	_, err := testRepo.AddBalance(context.Background(), "-1500", user.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	got, err := testRepo.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Balance, got.Balance)
}

// Concurrent adjustments must all be applied: the relative update is
// evaluated by the database, so there is no lost-update window.
func TestAddBalanceConcurrentAdjustments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	user := createRandomUser(t)

	const workers = 20

	errs := make(chan error, workers)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := testRepo.AddBalance(context.Background(), "5", user.ID)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := testRepo.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString(got.Balance).Equal(decimal.RequireFromString("1100")))
}

func TestMapSQLError(t *testing.T) {
	require.ErrorIs(t, MapSQLError(sql.ErrConnDone), errorspkg.ErrInternal)
}
