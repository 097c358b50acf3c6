package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cambermillbooks/order-service/internal/aws"
	"github.com/cambermillbooks/order-service/internal/catalog"
	"github.com/cambermillbooks/order-service/internal/config"
	"github.com/cambermillbooks/order-service/internal/handlers"
	"github.com/cambermillbooks/order-service/internal/idempotency"
	"github.com/cambermillbooks/order-service/internal/lifecycle"
	"github.com/cambermillbooks/order-service/internal/logging"
	"github.com/cambermillbooks/order-service/internal/notify"
	"github.com/cambermillbooks/order-service/internal/orders"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()

	configDir := getenv("CMB_CONFIG_DIR", "configs")
	envName := getenv("CMB_ENV", "dev")
	cfg, err := config.Load(configDir, envName)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Init("order-api", cfg.App.LogPath)

	var clients *aws.Clients
	if cfg.Store.Backend == "dynamodb" || cfg.Notify.QueueURL != "" || cfg.Metrics.Namespace != "" {
		clients, err = aws.NewClients(ctx)
		if err != nil {
			log.Fatalf("failed to init aws clients: %v", err)
		}
	}

	var store orders.Store
	switch cfg.Store.Backend {
	case "dynamodb":
		store = orders.NewDynamoStore(clients.DynamoDB, cfg.Store.OrdersTable)
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to connect postgres: %v", err)
		}
		if err := orders.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		store = orders.NewPostgresStore(pool)
	default:
		store = orders.NewMemoryStore()
	}

	if cfg.Cache.RedisAddr != "" {
		cache := orders.NewRedisCache(cfg.Cache.RedisAddr, cfg.App.Name, cfg.Cache.TTL, logging.New("cache"))
		store = orders.NewCachedStore(store, cache)
	}

	renderer, err := notify.NewRenderer()
	if err != nil {
		log.Fatalf("failed to parse email templates: %v", err)
	}

	var dispatcher notify.Dispatcher
	if cfg.Notify.QueueURL != "" {
		dispatcher = notify.NewSQSDispatcher(clients.SQS, cfg.Notify.QueueURL)
	} else {
		dispatcher = &notify.LogDispatcher{Log: logging.New("notify")}
	}

	var metrics aws.Metrics = aws.NopMetrics{}
	if cfg.Metrics.Namespace != "" {
		metrics = aws.NewCloudWatchMetrics(clients.CloudWatch, cfg.Metrics.Namespace)
	}

	service := lifecycle.New(lifecycle.Config{
		Store:      store,
		Catalog:    seedCatalog(),
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logging.New("lifecycle"),
	})

	handlerCfg := handlers.HandlerConfig{Service: service}
	if cfg.Checkout.IdempotencyTable != "" && clients != nil {
		handlerCfg.Checkouts = idempotency.NewStore(clients.DynamoDB, cfg.Checkout.IdempotencyTable, cfg.Checkout.IdempotencyTTL)
	}

	r := setupRouter(handlerCfg)

	if os.Getenv("RUN_LOCAL") == "true" {
		addr := cfg.App.HTTPAddr
		if addr == "" {
			addr = ":8080"
		}
		logger.Info("running local server", "addr", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

// seedCatalog stands in for the storefront catalog during local runs; the
// production catalog is resolved by the website and is external to this core.
func seedCatalog() catalog.Catalog {
	return catalog.NewMemory(
		catalog.Book{ID: "riverbank-almanac", Title: "The Riverbank Almanac", Author: "E. Hartfield", PriceCents: 1499, InStock: true},
		catalog.Book{ID: "mill-lane-baking", Title: "Baking from Mill Lane", Author: "R. Okafor", PriceCents: 2250, InStock: true},
		catalog.Book{ID: "northern-footpaths", Title: "Northern Footpaths", Author: "J. McAllister", PriceCents: 1875, InStock: true},
		catalog.Book{ID: "out-of-print-atlas", Title: "Atlas of Forgotten Roads", Author: "M. Varga", PriceCents: 3200, InStock: false},
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
