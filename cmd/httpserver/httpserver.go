// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kodbank/kodbank/internal/accountdelivery"
	"github.com/kodbank/kodbank/internal/accountrepo"
	"github.com/kodbank/kodbank/internal/accountservice"
	"github.com/kodbank/kodbank/internal/events"
	"github.com/kodbank/kodbank/internal/ledgerdelivery"
	"github.com/kodbank/kodbank/internal/ledgerrepo"
	"github.com/kodbank/kodbank/internal/ledgerservice"
	"github.com/kodbank/kodbank/internal/middleware"
	"github.com/kodbank/kodbank/internal/sessionrepo"
	"github.com/kodbank/kodbank/internal/sessionservice"
	"github.com/kodbank/kodbank/internal/userdelivery"
	"github.com/kodbank/kodbank/internal/userrepo"
	"github.com/kodbank/kodbank/internal/userservice"
	"github.com/kodbank/kodbank/pkg/configpkg"
	"github.com/kodbank/kodbank/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB        *sql.DB
	Engine    *gin.Engine
	Config    configpkg.Config
	publisher events.Publisher
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the server's resources.
func (s *Server) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return err
		}
	}

	return s.DB.Close()
}

// New creates Server type with instantiated domains and routes. The publisher
// may be nil, which disables movement event publishing.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, publisher events.Publisher) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewJWTMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo)
	ledgerService := ledgerservice.New(ledgerRepo, userRepo, publisher)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.Auth(sessionService))

	authRoutes.POST("/users/logout", userHandler.Logout)

	authRoutes.GET("/balance", accountHandler.Balance)
	authRoutes.POST("/deposit", ledgerHandler.Deposit)
	authRoutes.POST("/withdraw", ledgerHandler.Withdraw)
	authRoutes.POST("/transfer", ledgerHandler.Transfer)
	authRoutes.GET("/transactions", ledgerHandler.List)

	server := &Server{
		DB:        conn,
		Engine:    engine,
		Config:    config,
		publisher: publisher,
	}

	return server, nil
}
