package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cambermillbooks/order-service/internal/idempotency"
	"github.com/cambermillbooks/order-service/internal/lifecycle"
	"github.com/cambermillbooks/order-service/internal/logging"
	"github.com/cambermillbooks/order-service/internal/orders"
	"github.com/cambermillbooks/order-service/internal/validation"
)

// HandlerConfig groups dependencies for the orders routes.
type HandlerConfig struct {
	Service *lifecycle.Service
	// Checkouts is optional; when nil the Idempotency-Key header is not
	// enforced (local/memory runs).
	Checkouts *idempotency.Store
}

// RegisterOrdersRoutes registers all order routes on the engine.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.Use(requestID())

	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		var checkoutKey string
		if cfg.Checkouts != nil {
			checkoutKey = c.GetHeader("Idempotency-Key")
			if checkoutKey == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
				return
			}
			created, err := cfg.Checkouts.Begin(ctx, checkoutKey)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
				return
			}
			if !created {
				replayCheckout(c, cfg.Checkouts, checkoutKey)
				return
			}
		}

		order, err := cfg.Service.Create(ctx, checkoutInput(req, correlationID(c)))
		if err != nil {
			if cfg.Checkouts != nil {
				_ = cfg.Checkouts.Fail(ctx, checkoutKey, fmt.Sprintf("create_failed: %v", err))
			}
			writeError(c, err)
			return
		}

		if cfg.Checkouts != nil {
			body, _ := json.Marshal(gin.H{"order_id": order.ID, "status": order.Status})
			_ = cfg.Checkouts.Complete(ctx, checkoutKey, order.ID, string(body), http.StatusCreated)
		}

		c.Header("Location", fmt.Sprintf("/orders/%s", order.ID))
		c.JSON(http.StatusCreated, order)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		order, err := cfg.Service.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.GET("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()
		if email := c.Query("email"); email != "" {
			list, err := cfg.Service.GetOrdersByEmail(ctx, email)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"orders": list})
			return
		}
		list, err := cfg.Service.GetAllOrders(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	// Payment gateway callback. Signature verification happens upstream.
	r.POST("/orders/:id/payment", func(c *gin.Context) {
		var req validation.PaymentWebhookRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		order, err := cfg.Service.ConfirmPayment(c.Request.Context(), c.Param("id"), req.ExternalRef, correlationID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.POST("/orders/:id/process", func(c *gin.Context) {
		order, err := cfg.Service.Process(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.POST("/orders/:id/dispatch", func(c *gin.Context) {
		var req validation.FulfilmentRequest
		_ = c.ShouldBindJSON(&req) // body optional
		order, err := cfg.Service.Dispatch(c.Request.Context(), c.Param("id"), req.TrackingNumber, correlationID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.POST("/orders/:id/ship", func(c *gin.Context) {
		var req validation.FulfilmentRequest
		_ = c.ShouldBindJSON(&req)
		order, err := cfg.Service.Ship(c.Request.Context(), c.Param("id"), req.TrackingNumber, correlationID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.POST("/orders/:id/deliver", func(c *gin.Context) {
		order, err := cfg.Service.Deliver(c.Request.Context(), c.Param("id"), correlationID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.POST("/orders/:id/cancel", func(c *gin.Context) {
		var req validation.CancelRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		order, err := cfg.Service.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})
}

func checkoutInput(req validation.CheckoutRequest, corr string) lifecycle.CheckoutInput {
	lines := make([]orders.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, orders.CartLine{BookID: it.BookID, Quantity: it.Quantity})
	}
	return lifecycle.CheckoutInput{
		Lines: lines,
		Customer: orders.Customer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			Address: orders.Address{
				Line1:      req.Customer.Address.Line1,
				Line2:      req.Customer.Address.Line2,
				City:       req.Customer.Address.City,
				Region:     req.Customer.Address.Region,
				PostalCode: req.Customer.Address.PostalCode,
				Country:    req.Customer.Address.Country,
			},
		},
		PaymentMethod: orders.PaymentMethod(req.PaymentMethod),
		CorrelationID: corr,
	}
}

// replayCheckout answers a duplicate submission from the stored record.
func replayCheckout(c *gin.Context, checkouts *idempotency.Store, key string) {
	rec, err := checkouts.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_record_missing"})
		return
	}
	switch rec.State {
	case idempotency.StateCompleted:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
	case idempotency.StateBegun:
		c.JSON(http.StatusAccepted, gin.H{"message": "checkout already in progress"})
	case idempotency.StateFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_checkout_state"})
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var ve *orders.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "errors": ve.Violations})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "illegal_transition", "detail": err.Error()})
	default:
		logging.From(c).Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

// requestID tags each request with an ID and a scoped logger.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		logging.With(c, logging.New("http").With("request_id", id))
		c.Next()
	}
}

func correlationID(c *gin.Context) string {
	return c.GetString("request_id")
}
