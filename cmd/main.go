// Package main runs the bank API: users, balances, money movements and the
// transaction ledger.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/kodbank/kodbank/cmd/httpserver"
	"github.com/kodbank/kodbank/internal/events"
	"github.com/kodbank/kodbank/internal/middleware"
	"github.com/kodbank/kodbank/pkg/configpkg"
	"github.com/kodbank/kodbank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	var publisher events.Publisher
	if len(config.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(config.KafkaBrokers, config.KafkaTopic)
	}

	server, err := httpserver.New(db, logger, config, publisher)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	defer func() {
		if err := server.Close(); err != nil {
			logger.Error().Err(err).Msg("server teardown")
		}
	}()

	logger.Info().Msg("BANK API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
