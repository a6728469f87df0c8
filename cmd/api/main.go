package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-order-notify/internal/aws"
	"github.com/imrishuroy/go-order-notify/internal/config"
	"github.com/imrishuroy/go-order-notify/internal/handlers"
	"github.com/imrishuroy/go-order-notify/internal/logger"
	"github.com/imrishuroy/go-order-notify/internal/mail"
	"github.com/imrishuroy/go-order-notify/internal/metrics"
	"github.com/imrishuroy/go-order-notify/internal/notify"
	"github.com/imrishuroy/go-order-notify/internal/records"
)

const serviceName = "order-notify-api"

type deps struct {
	cfg        config.Config
	log        *slog.Logger
	dispatcher *notify.Dispatcher
	store      records.Store
	publisher  handlers.Publisher
	metrics    *metrics.Registry
}

func setupRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestID())
	r.Use(handlers.AccessLog(d.log))
	r.Use(cors.New(corsConfig(d.cfg.App.CORSOrigins)))

	handlers.RegisterHealthRoutes(r, d.dispatcher.TransportName())
	r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	r.Static("/images", d.cfg.App.ImagesDir)

	handlers.RegisterOrderEmailRoutes(r, handlers.HandlerConfig{
		Dispatcher: d.dispatcher,
		Publisher:  d.publisher,
		Metrics:    d.metrics,
		BaseURL:    d.cfg.App.APIURL,
		TrustProxy: d.cfg.App.TrustProxy,
		Logger:     d.log,
	})
	handlers.RegisterRecordRoutes(r.Group("/api"), d.store, d.log)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Content-Type", "Authorization", handlers.RequestIDHeader},
		ExposeHeaders: []string{handlers.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			c.AllowAllOrigins = true
			c.AllowOrigins = nil
			return c
		}
		if o != "" {
			c.AllowOrigins = append(c.AllowOrigins, o)
		}
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.New(logger.WithEnvironment(cfg.App.Env, serviceName))
	slog.SetDefault(lg)
	if cfg.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	// AWS clients are only built when some component needs them.
	var clients *aws.AWSClients
	awsClients := func() *aws.AWSClients {
		if clients == nil {
			c, err := aws.NewAWSClients(ctx)
			if err != nil {
				log.Fatalf("failed to init aws clients: %v", err)
			}
			clients = c
		}
		return clients
	}

	reg := metrics.NewRegistry()
	var recorder metrics.Recorder = reg
	if cfg.CloudWatchNamespace != "" {
		recorder = metrics.Multi(reg, metrics.NewCloudWatch(awsClients().CloudWatch, cfg.CloudWatchNamespace, lg))
	}

	transport := mail.New(cfg.Mail)
	checkTransport(ctx, lg, transport)

	dispatcher, err := notify.NewDispatcher(cfg.Notify, transport,
		notify.WithRecorder(recorder),
		notify.WithLogger(lg),
	)
	if err != nil {
		log.Fatalf("failed to build dispatcher: %v", err)
	}

	var store records.Store
	switch cfg.Records.Backend {
	case records.BackendDynamoDB:
		store = records.NewDynamoStore(awsClients().DynamoDB, cfg.Records.Table)
	default:
		fs, err := records.OpenFileStore(cfg.Records.Path)
		if err != nil {
			log.Fatalf("failed to open record store: %v", err)
		}
		store = fs
	}

	var publisher handlers.Publisher
	if cfg.QueueURL != "" {
		publisher = aws.NewPublisher(awsClients().SQS, cfg.QueueURL)
	}

	r := setupRouter(deps{
		cfg:        cfg,
		log:        lg,
		dispatcher: dispatcher,
		store:      store,
		publisher:  publisher,
		metrics:    reg,
	})

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.App.RunLocal {
		addr := cfg.App.Addr()
		lg.Info("running local server", "addr", addr, "mail_transport", dispatcher.TransportName())
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

// checkTransport logs whether the mail transport is usable. An unusable transport does
// not stop the process; sends report the problem per request.
func checkTransport(ctx context.Context, lg *slog.Logger, t mail.Transport) {
	if !mail.IsConfigured(t) {
		lg.Warn("no mail transport configured, order emails will fail", "transport", t.Name())
		return
	}
	v, ok := t.(mail.Verifier)
	if !ok {
		lg.Info("mail transport ready", "transport", t.Name())
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := v.Verify(ctx); err != nil {
		lg.Warn("mail transport verification failed", "transport", t.Name(), "error", err)
		return
	}
	lg.Info("mail transport verified", "transport", t.Name())
}
