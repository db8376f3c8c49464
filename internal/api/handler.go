package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"webshop-service/internal/fulfillment"
	"webshop-service/internal/models"
	"webshop-service/internal/redisclient"
	"webshop-service/internal/store"
	"webshop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	store  *store.Store
	engine *fulfillment.Engine
	redis  *redisclient.Client
}

// NewHandler creates a new HTTP handler
func NewHandler(store *store.Store, engine *fulfillment.Engine, redis *redisclient.Client) *Handler {
	return &Handler{
		store:  store,
		engine: engine,
		redis:  redis,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/articles", h.listArticles)
		v1.GET("/articles/:id", h.getArticle)
		v1.GET("/articles/:id/stock", h.getArticleStock)
		v1.POST("/articles", h.createArticle)
		v1.PUT("/articles/:id", h.updateArticle)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders", h.createOrder)
		v1.PUT("/orders/:id", h.transitionOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listArticles handles article listing; ?available=true keeps only
// articles with stock remaining, as the shop front shows them
func (h *Handler) listArticles(c *gin.Context) {
	var (
		articles []models.Article
		err      error
	)

	if c.Query("available") == "true" {
		articles, err = h.store.GetAvailableArticles(c.Request.Context())
	} else {
		articles, err = h.store.GetArticles(c.Request.Context())
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list articles",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, articles)
}

// getArticle handles get article by ID
func (h *Handler) getArticle(c *gin.Context) {
	articleID, ok := parseID(c)
	if !ok {
		return
	}

	article, err := h.store.GetArticle(c.Request.Context(), articleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Article not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, article)
}

// getArticleStock returns the article's stock quantity, served from the
// cache when warm and falling back to the store
func (h *Handler) getArticleStock(c *gin.Context) {
	articleID, ok := parseID(c)
	if !ok {
		return
	}

	if h.redis != nil {
		if quantity, err := h.redis.GetStock(c.Request.Context(), articleID); err == nil {
			c.JSON(http.StatusOK, gin.H{"article_id": articleID, "quantity": quantity})
			return
		}
	}

	article, err := h.store.GetArticle(c.Request.Context(), articleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Article not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"article_id": articleID, "quantity": article.Quantity})
}

// createArticle handles article creation
func (h *Handler) createArticle(c *gin.Context) {
	var article models.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if article.Price < 0 || article.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Price and quantity must be non-negative",
		})
		return
	}

	if err := h.store.CreateArticle(c.Request.Context(), &article); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create article",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, article)
}

// updateArticle handles admin full-record edits. Stock changes made here
// bypass the fulfillment engine; the adjuster tolerates them by
// re-reading the quantity on every adjustment.
func (h *Handler) updateArticle(c *gin.Context) {
	articleID, ok := parseID(c)
	if !ok {
		return
	}

	var article models.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if article.Price < 0 || article.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Price and quantity must be non-negative",
		})
		return
	}

	updated, err := h.store.PutArticle(c.Request.Context(), articleID, &article)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Article not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// listOrders handles order listing, newest first
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.store.GetOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list orders",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.store.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// createOrder handles order creation; orders start in Processing
func (h *Handler) createOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order.Status = models.StatusProcessing
	order.ProcessedAt = nil

	if err := h.store.CreateOrder(c.Request.Context(), &order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// transitionOrder handles order status changes. The admin panel sends the
// full order record with the new status; only the requested status is
// taken from the body, the engine works from the stored record.
func (h *Handler) transitionOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	requested, err := models.ParseStatus(body.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unknown order status",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.engine.Transition(c.Request.Context(), orderID, requested)
	if err != nil {
		status, payload := transitionErrorResponse(err)
		c.JSON(status, payload)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// transitionErrorResponse maps engine failures onto HTTP responses
func transitionErrorResponse(err error) (int, gin.H) {
	var invalid *fulfillment.InvalidTransitionError
	if errors.As(err, &invalid) {
		return http.StatusConflict, gin.H{
			"error": "Invalid status transition",
			"from":  invalid.From,
			"to":    invalid.To,
		}
	}

	var insufficient *fulfillment.InsufficientStockError
	if errors.As(err, &insufficient) {
		return http.StatusConflict, gin.H{
			"error":      "Insufficient stock",
			"article_id": insufficient.ArticleID,
			"shortfall":  insufficient.Shortfall(),
		}
	}

	if errors.Is(err, fulfillment.ErrTransitionInFlight) {
		return http.StatusConflict, gin.H{
			"error": "Another transition is in progress for this order",
		}
	}

	return http.StatusBadGateway, gin.H{
		"error":   "Order store or article store unavailable",
		"details": err.Error(),
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
