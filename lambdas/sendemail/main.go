package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsv2config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/rs/zerolog"

	"email-api/internal/appconfig"
	"email-api/internal/emaillog"
	"email-api/internal/handler"
	"email-api/internal/metrics"
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

	reporter := metrics.New(cloudwatch.New(session.Must(session.NewSession())), cfg.AppName, logger)
	writer := emaillog.NewWriter(dynamodb.NewFromConfig(awsCfg), reporter, emaillog.WriterConfig{
		TableName:  cfg.LogTableName,
		ExpiryDays: cfg.LogExpiryDays,
	}, logger)

	h := handler.NewSendHandler(sesv2.NewFromConfig(awsCfg), writer, handler.SendConfig{
		ConfigurationSetName: cfg.ConfigurationSetName,
		DefaultFromAddress:   cfg.DefaultFromAddress,
	}, logger)

	lambda.Start(h.Handle)
}
