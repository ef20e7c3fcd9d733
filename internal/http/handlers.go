package httpapi

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/domain"
	"storefront/internal/persistence"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type Server struct {
	engine    *gin.Engine
	catalog   *service.CatalogService
	orders    *service.OrderService
	state     persistence.StateStore
	snapshots *persistence.FileStore
}

func NewServer(catalog *service.CatalogService, orders *service.OrderService, state persistence.StateStore, snapshots *persistence.FileStore) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, catalog: catalog, orders: orders, state: state, snapshots: snapshots}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		customers := v1.Group("/customers")
		customers.POST("", s.registerCustomer)
		customers.GET(":id", s.getCustomer)
		customers.GET("", s.listCustomers)

		products := v1.Group("/products")
		products.POST("", s.registerProduct)
		products.GET(":id", s.getProduct)
		products.GET("", s.listProducts)

		orders := v1.Group("/orders")
		orders.POST("", s.createOrder)
		orders.GET(":id", s.getOrder)
		orders.GET("", s.listOrders)

		snapshot := v1.Group("/snapshot")
		snapshot.POST("", s.saveSnapshot)
		snapshot.POST("/restore", s.restoreSnapshot)
	}
}

// Customer handlers

type registerCustomerReq struct {
	Name       string `json:"name" binding:"required"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
}

// @Summary Register customer
// @Tags customers
// @Accept json
// @Produce json
// @Param input body registerCustomerReq true "Customer"
// @Success 201 {object} domain.Customer
// @Failure 400 {object} map[string]string
// @Router /customers [post]
func (s *Server) registerCustomer(c *gin.Context) {
	var req registerCustomerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cust, err := s.catalog.RegisterCustomer(c, domain.Person{
		Name:       req.Name,
		NationalID: req.NationalID,
		Email:      req.Email,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cust)
}

// @Summary Get customer by id
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} domain.Customer
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /customers/{id} [get]
func (s *Server) getCustomer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	cust, err := s.catalog.GetCustomer(c, id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cust)
}

// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {array} domain.Customer
// @Router /customers [get]
func (s *Server) listCustomers(c *gin.Context) {
	list, err := s.catalog.ListCustomers(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Product handlers

type registerProductReq struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock" binding:"gte=0"`
}

// @Summary Register product
// @Tags products
// @Accept json
// @Produce json
// @Param input body registerProductReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products [post]
func (s *Server) registerProduct(c *gin.Context) {
	var req registerProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.RegisterProduct(c, req.Name, req.Price, req.Stock)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.catalog.GetProduct(c, id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	list, err := s.catalog.ListProducts(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Order handlers

type orderItemReq struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

type createOrderReq struct {
	CustomerID int64          `json:"customer_id" binding:"required,gt=0"`
	Items      []orderItemReq `json:"items" binding:"required,min=1,dive"`
}

type rejectedLine struct {
	ProductID int64 `json:"product_id"`
	Requested int64 `json:"requested"`
	Available int64 `json:"available"`
}

type orderResp struct {
	domain.Order
	Total    decimal.Decimal `json:"total"`
	Rejected []rejectedLine  `json:"rejected,omitempty"`
}

// @Summary Create order
// @Description Runs one order-build session: lines short on stock are
// @Description rejected (reported with requested vs available) while the
// @Description rest finalize. An order with no accepted line is discarded.
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} orderResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	items := make([]domain.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, rejected, err := s.orders.PlaceOrder(c, req.CustomerID, items)
	if errors.Is(err, service.ErrEmptyOrder) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "no line could be added, order discarded",
			"rejected": toRejected(rejected),
		})
		return
	}
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}

	total, err := s.orders.Total(c, o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, orderResp{Order: *o, Total: total, Rejected: toRejected(rejected)})
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} orderResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.GetOrder(c, id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	total, err := s.orders.Total(c, o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orderResp{Order: *o, Total: total})
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	list, err := s.orders.ListOrders(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Snapshot handlers

// @Summary Save snapshot
// @Tags snapshot
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /snapshot [post]
func (s *Server) saveSnapshot(c *gin.Context) {
	if err := s.snapshots.Save(c, s.state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": s.snapshots.Path})
}

// @Summary Restore snapshot
// @Description Replaces the whole in-memory state from the snapshot file.
// @Description A corrupt file aborts the load and leaves the state as it was.
// @Tags snapshot
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /snapshot/restore [post]
func (s *Server) restoreSnapshot(c *gin.Context) {
	if err := s.snapshots.Load(c, s.state); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": s.snapshots.Path})
}

func toRejected(in []service.StockError) []rejectedLine {
	out := make([]rejectedLine, 0, len(in))
	for _, r := range in {
		out = append(out, rejectedLine{ProductID: r.ProductID, Requested: r.Requested, Available: r.Available})
	}
	return out
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyOrder):
		return http.StatusUnprocessableEntity
	case errors.Is(err, persistence.ErrCorrupt):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
