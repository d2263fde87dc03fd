package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// OrderMiddleware injects the order service into the request context.
func OrderMiddleware(orderService *OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("orderService", orderService)
		c.Next()
	}
}

// EnrichmentMiddleware injects the downstream enrichment client into the
// request context.
func EnrichmentMiddleware(enrichment *EnrichmentClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("enrichment", enrichment)
		c.Next()
	}
}

func orderServiceFrom(c *gin.Context) *OrderService {
	service, ok := c.MustGet("orderService").(*OrderService)
	if !ok {
		log.Printf("Failed to get order service")
		c.AbortWithStatus(http.StatusInternalServerError)
		return nil
	}
	return service
}

func enrichmentFrom(c *gin.Context) *EnrichmentClient {
	client, ok := c.MustGet("enrichment").(*EnrichmentClient)
	if !ok {
		log.Printf("Failed to get enrichment client")
		c.AbortWithStatus(http.StatusInternalServerError)
		return nil
	}
	return client
}

// pathInt parses an integer path parameter. A non-integer segment behaves like
// a route that never matched: the caller's not-found body is returned.
func pathInt(c *gin.Context, name string, notFoundMessage string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		log.Printf("Failed to convert %s to int: %s", name, err)
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage})
		return 0, false
	}
	return value, true
}

func storeUnavailable(c *gin.Context, err error) {
	log.Printf("Store operation failed: %s", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "store unavailable"})
}

type createOrderRequest struct {
	UserID    interface{} `json:"user_id"`
	ProductID interface{} `json:"product_id"`
}

// Creates an order with a fresh order id. The body is accepted as-is: missing
// fields are stored as null, no referential checks are made.
func createOrder(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Failed to bind create request, storing null fields: %s", err)
	}

	orderID, err := service.CreateOrder(c.Request.Context(), req.UserID, req.ProductID)
	if err != nil {
		storeUnavailable(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order created successfully",
		"order_id": orderID,
	})
}

// Fetches every order in the store.
func getAllOrders(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	orders, err := service.GetAllOrders(c.Request.Context())
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}

	c.JSON(http.StatusOK, orders)
}

// Fetches a single order by order id.
func getOrderByID(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	orderID, ok := pathInt(c, "order_id", "Order not found")
	if !ok {
		return
	}

	order, found, err := service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// Fetches every order belonging to a user.
func getOrdersByUser(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	userID, ok := pathInt(c, "user_id", "Orders not found")
	if !ok {
		return
	}

	orders, err := service.GetOrdersByUser(c.Request.Context(), int64(userID))
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Orders not found"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func getOrderStatus(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	orderID, ok := pathInt(c, "order_id", "Order not found")
	if !ok {
		return
	}

	order, found, err := service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": order.Status})
}

// Updates the status of an order. The store reports how many documents were
// modified; a same-value update modifies nothing and is reported as not found,
// matching strict modified-count semantics.
func updateOrderStatus(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	orderID, ok := pathInt(c, "order_id", "Order not found")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Failed to bind status update: %s", err)
	}

	modified, err := service.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if !modified {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
}

// Deletes every order belonging to a user.
func deleteOrdersByUser(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}

	userID, ok := pathInt(c, "user_id", "Orders not found")
	if !ok {
		return
	}

	deleted, err := service.DeleteOrdersByUser(c.Request.Context(), int64(userID))
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "Orders not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Orders deleted successfully"})
}

// Fetches product details for an order from the product service and relays the
// downstream body verbatim.
func getProductDetails(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}
	enrichment := enrichmentFrom(c)
	if enrichment == nil {
		return
	}

	orderID, ok := pathInt(c, "order_id", "Order not found")
	if !ok {
		return
	}

	order, found, err := service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	body, err := enrichment.FetchProduct(c.Request.Context(), order.ProductID)
	if err != nil {
		log.Printf("Error fetching product for order %d: %s", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching product"})
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}

// Fetches user details for an order from the user service and relays the
// downstream body verbatim.
func getUserDetails(c *gin.Context) {
	service := orderServiceFrom(c)
	if service == nil {
		return
	}
	enrichment := enrichmentFrom(c)
	if enrichment == nil {
		return
	}

	orderID, ok := pathInt(c, "order_id", "No user found")
	if !ok {
		return
	}

	order, found, err := service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		storeUnavailable(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "No user found"})
		return
	}

	body, err := enrichment.FetchUser(c.Request.Context(), order.UserID)
	if err != nil {
		log.Printf("Error fetching user details for order %d: %s", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching user details"})
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
