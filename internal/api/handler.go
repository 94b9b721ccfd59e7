package api

import (
	"net/http"
	"strconv"
	"time"

	"commerce-service/internal/catalog"
	"commerce-service/internal/orders"
	"commerce-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains the HTTP handlers for both contexts.
type Handler struct {
	catalogService *catalog.Service
	orderService   *orders.Service
}

func NewHandler(catalogService *catalog.Service, orderService *orders.Service) *Handler {
	return &Handler{
		catalogService: catalogService,
		orderService:   orderService,
	}
}

// SetupRoutes sets up HTTP routes.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.POST("/orders", h.placeOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type createProductRequest struct {
	SKU          string  `json:"sku" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required"`
	Currency     string  `json:"currency" binding:"required"`
	InitialStock int     `json:"initial_stock" binding:"min=0"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), catalog.CreateProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, productResponse(product))
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, productResponse(product))
}

func (h *Handler) listProducts(c *gin.Context) {
	limit, offset := pagination(c)

	products, err := h.catalogService.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(products))
	for _, product := range products {
		resp = append(resp, productResponse(product))
	}
	c.JSON(http.StatusOK, gin.H{"products": resp})
}

type placeOrderRequest struct {
	CustomerInfo struct {
		CustomerID string `json:"customer_id" binding:"required"`
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required"`
		Phone      string `json:"phone" binding:"required"`
	} `json:"customer_info" binding:"required"`
	Items []struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	} `json:"items" binding:"required,min=1"`
	ShippingAddress struct {
		Street     string `json:"street" binding:"required"`
		City       string `json:"city" binding:"required"`
		State      string `json:"state" binding:"required"`
		PostalCode string `json:"postal_code" binding:"required"`
		Country    string `json:"country" binding:"required"`
	} `json:"shipping_address" binding:"required"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	input := orders.PlaceOrderInput{
		Customer: orders.CustomerInput{
			CustomerID: req.CustomerInfo.CustomerID,
			Name:       req.CustomerInfo.Name,
			Email:      req.CustomerInfo.Email,
			Phone:      req.CustomerInfo.Phone,
		},
		Address: orders.AddressInput{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, orders.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, orderResponse(order))
}

func (h *Handler) getOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

func (h *Handler) listOrders(c *gin.Context) {
	limit, offset := pagination(c)

	orderList, err := h.orderService.ListOrders(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(orderList))
	for _, order := range orderList {
		resp = append(resp, orderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp})
}

func productResponse(product *catalog.Product) gin.H {
	return gin.H{
		"product_id":  product.ID.String(),
		"sku":         product.SKU.String(),
		"name":        product.Name,
		"description": product.Description,
		"price":       float64(product.Price.AmountCents()) / 100,
		"currency":    product.Price.Currency(),
		"stock":       product.Stock.Quantity(),
		"active":      product.Active,
		"created_at":  product.CreatedAt,
	}
}

func orderResponse(order *orders.Order) gin.H {
	items := make([]gin.H, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, gin.H{
			"product_id":   item.ProductID.String(),
			"product_name": item.ProductName,
			"quantity":     item.Quantity.Value(),
			"unit_price":   float64(item.UnitPriceCents) / 100,
			"subtotal":     float64(item.SubtotalCents()) / 100,
		})
	}

	resp := gin.H{
		"order_id": order.ID.String(),
		"customer": gin.H{
			"customer_id": order.Customer.CustomerID,
			"name":        order.Customer.Name,
		},
		"items":      items,
		"total":      float64(order.TotalCents()) / 100,
		"status":     string(order.Status),
		"created_at": order.CreatedAt,
	}
	if order.FailureReason != "" {
		resp["failure_reason"] = order.FailureReason
	}
	return resp
}

// respondError maps typed domain failures to transport responses.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *catalog.ValidationError, *orders.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
	case *catalog.NotFoundError, *orders.NotFoundError, *orders.ProductNotFoundError:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *catalog.DuplicateSKUError:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *catalog.InsufficientStockError:
		c.JSON(http.StatusConflict, gin.H{
			"error":     e.Error(),
			"requested": e.Requested,
			"available": e.Available,
		})
	case *orders.InsufficientStockError:
		c.JSON(http.StatusConflict, gin.H{
			"error":     e.Error(),
			"requested": e.Requested,
			"available": e.Available,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// prometheusMiddleware collects HTTP metrics.
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
