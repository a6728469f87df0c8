package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-order-notify/internal/aws"
	"github.com/imrishuroy/go-order-notify/internal/config"
	"github.com/imrishuroy/go-order-notify/internal/logger"
	"github.com/imrishuroy/go-order-notify/internal/mail"
	"github.com/imrishuroy/go-order-notify/internal/metrics"
	"github.com/imrishuroy/go-order-notify/internal/notify"
)

const serviceName = "order-notify-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.New(logger.WithEnvironment(cfg.App.Env, serviceName))
	slog.SetDefault(lg)

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.CloudWatchNamespace != "" {
		clients, err := aws.NewAWSClients(context.Background())
		if err != nil {
			log.Fatalf("failed to init aws clients: %v", err)
		}
		recorder = metrics.NewCloudWatch(clients.CloudWatch, cfg.CloudWatchNamespace, lg)
	}

	transport := mail.New(cfg.Mail)
	if !mail.IsConfigured(transport) {
		lg.Warn("no mail transport configured, jobs will fail", "transport", transport.Name())
	}
	dispatcher, err := notify.NewDispatcher(cfg.Notify, transport,
		notify.WithRecorder(recorder),
		notify.WithLogger(lg),
	)
	if err != nil {
		log.Fatalf("failed to build dispatcher: %v", err)
	}
	p := NewProcessor(dispatcher, lg)

	// If RUN_LOCAL=true, process a single simulated SQS event for local testing.
	if cfg.App.RunLocal {
		body := cfg.LocalSQSBody
		if body == "" {
			body = `{"order":{"id":"local-1","items":[]},"host_url":"http://localhost:3000"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local", Body: body}},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
