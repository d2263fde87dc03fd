package main

import (
	_ "embed"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Valid database API types
const (
	AZURE_COSMOS_DB_SQL_API = "cosmosdbsql"
)

//go:embed index.html
var indexHTML []byte

func main() {
	// Get the database API type
	apiType := os.Getenv("ORDER_DB_API")
	switch apiType {
	case AZURE_COSMOS_DB_SQL_API:
		log.Printf("Using Azure CosmosDB SQL API")
	default:
		log.Printf("Using MongoDB API")
	}

	metrics := NewOrderMetrics()

	// Initialize the database
	repo, err := initDatabase(apiType)
	if err != nil {
		log.Printf("Failed to initialize database: %s", err)
		os.Exit(1)
	}

	orderService := NewOrderService(repo, newOrderIDGenerator(), metrics)

	enrichment := NewEnrichmentClient(
		env("PRODUCT_SERVICE_URL", "http://product-microservice:80"),
		env("USER_SERVICE_URL", "http://user-microservice:80"),
		metrics,
	)

	router := newRouter(orderService, enrichment)

	addr := env("HTTP_ADDR", ":9997")
	log.Printf("Listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Printf("Server stopped: %s", err)
		os.Exit(1)
	}
}

// newRouter wires every route. The order service and enrichment client are
// injected per request via middleware so tests can swap in fakes.
func newRouter(orderService *OrderService, enrichment *EnrichmentClient) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(OrderMiddleware(orderService))
	router.Use(EnrichmentMiddleware(enrichment))

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	router.POST("/orders", createOrder)
	router.GET("/orders", getAllOrders)
	router.GET("/orders/:order_id", getOrderByID)
	router.GET("/orders/:order_id/status", getOrderStatus)
	router.PUT("/orders/:order_id", updateOrderStatus)
	router.GET("/orders/:order_id/products", getProductDetails)
	router.GET("/orders/:order_id/users", getUserDetails)

	// The source system bound order and user lookups to the same /orders/<int>
	// path, which a radix router cannot disambiguate. User-scoped operations
	// live under /orders/user instead.
	router.GET("/orders/user/:user_id", getOrdersByUser)
	router.DELETE("/orders/user/:user_id", deleteOrdersByUser)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": os.Getenv("APP_VERSION"),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func newOrderIDGenerator() OrderIDGenerator {
	if env("ORDER_ID_SCHEME", "random") == "sequential" {
		return NewSequentialOrderIDGenerator(100)
	}
	return RandomOrderIDGenerator{}
}

// Initializes the database based on the API type
func initDatabase(apiType string) (OrderRepo, error) {
	dbURI := env("ORDER_DB_URI", "mongodb://mongodb-service:27017/")
	dbName := env("ORDER_DB_NAME", "orders_db")

	switch apiType {
	case AZURE_COSMOS_DB_SQL_API:
		containerName := env("ORDER_DB_CONTAINER_NAME", "orders")
		dbPartitionKey := env("ORDER_DB_PARTITION_KEY", "storeId")
		dbPartitionValue := env("ORDER_DB_PARTITION_VALUE", "orders")

		if os.Getenv("USE_WORKLOAD_IDENTITY_AUTH") == "true" {
			return NewCosmosDBOrderRepoWithManagedIdentity(dbURI, dbName, containerName, PartitionKey{dbPartitionKey, dbPartitionValue})
		}
		dbPassword := os.Getenv("ORDER_DB_PASSWORD")
		return NewCosmosDBOrderRepo(dbURI, dbName, containerName, dbPassword, PartitionKey{dbPartitionKey, dbPartitionValue})
	default:
		collectionName := env("ORDER_DB_COLLECTION_NAME", "orders")
		dbUsername := os.Getenv("ORDER_DB_USERNAME")
		dbPassword := os.Getenv("ORDER_DB_PASSWORD")
		return NewMongoDBOrderRepo(dbURI, dbName, collectionName, dbUsername, dbPassword)
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
