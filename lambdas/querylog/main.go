package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsv2config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"email-api/internal/appconfig"
	"email-api/internal/emaillog"
	"email-api/internal/handler"
)

func main() {
	cfg, err := appconfig.Load(os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()

	awsCfg, err := awsv2config.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load SDK config")
	}

	queries, err := emaillog.NewQueryService(dynamodb.NewFromConfig(awsCfg), emaillog.QueryConfig{
		TableName:        cfg.LogTableName,
		DestinationIndex: cfg.DestinationIndex,
		UTCOffset:        cfg.UTCOffset,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to build query service")
	}

	h := handler.NewQueryHandler(queries, logger)

	lambda.Start(h.Handle)
}
