// Order HTTP handlers.
//
// This file exposes REST endpoints for order snapshots:
//   - POST   /orders                              (place, customer only, idempotent)
//   - GET    /orders                              (list own orders; staff see all)
//   - PATCH  /orders/{id}                         (status transition, business only)
//   - DELETE /orders/{id}                         (delete, staff only)
//   - GET    /order-count/{user_id}               (open orders involving a user)
//   - GET    /completed-order-count/{user_id}     (completed orders involving a user)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-marketplace-backend/internal/http/middleware"
)

// CreateOrderRequest is the JSON payload for placing an order.
type CreateOrderRequest struct {
	// OfferDetailID names the tier whose terms are snapshotted.
	OfferDetailID string `json:"offer_detail_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// UpdateOrderRequest is the JSON payload for an order status transition.
type UpdateOrderRequest struct {
	Status string `json:"status" binding:"required" example:"completed"`
}

// OrderCountResponse carries the open-order count for a user.
type OrderCountResponse struct {
	OrderCount int64 `json:"order_count"`
}

// CompletedOrderCountResponse carries the completed-order count for a user.
type CompletedOrderCountResponse struct {
	CompletedOrderCount int64 `json:"completed_order_count"`
}

// CreateOrder godoc
// @ID          createOrder
// @Summary     Place an order
// @Description Snapshots the chosen detail tier's terms into a new order for the current customer. An Idempotency-Key header makes retries safe: a repeated key within the TTL returns the originally created order with status 200.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       Authorization    header  string  true   "Bearer token"
// @Param       Idempotency-Key  header  string  false  "Client-chosen retry key"
// @Param       body             body    handlers.CreateOrderRequest  true  "Order payload"
//
// @Success     201  {object}  domain.Order
// @Success     200  {object}  domain.Order "Replayed from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     403  {object}  handlers.ErrorResponse "Customer account required"
// @Failure     404  {object}  handlers.ErrorResponse "Offer detail not found"
// @Router      /orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer_detail_id required")
		return
	}
	if _, err := uuid.Parse(req.OfferDetailID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer_detail_id must be a UUID")
		return
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)

	order, replayed, err := h.orderSvc.Create(c.Request.Context(), userID(c), req.OfferDetailID, idemKey)
	if err != nil {
		failService(c, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	ok(c, status, order)
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders
// @Description Returns the orders where the current user is either party, most recent first. Staff accounts receive every order.
// @Tags        Orders
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
//
// @Success     200  {array}   domain.Order
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	orders, err := h.orderSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, orders)
}

// UpdateOrder godoc
// @ID          updateOrder
// @Summary     Transition an order's status
// @Description Moves an order between in_progress, completed, and cancelled. Only the business counterparty may transition; completed and cancelled are terminal.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Order ID (UUID)"  format(uuid)
// @Param       body           body    handlers.UpdateOrderRequest  true  "New status"
//
// @Success     200  {object}  domain.Order
// @Failure     400  {object}  handlers.ErrorResponse "Unknown or terminal status"
// @Failure     403  {object}  handlers.ErrorResponse "Not the business counterparty"
// @Failure     404  {object}  handlers.ErrorResponse "Order not found"
// @Router      /orders/{id} [patch]
func (h *Handlers) UpdateOrder(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}

	order, err := h.orderSvc.UpdateStatus(c.Request.Context(), userID(c), id, req.Status)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}

// DeleteOrder godoc
// @ID          deleteOrder
// @Summary     Delete an order
// @Description Removes an order and its feature links. Restricted to staff accounts.
// @Tags        Orders
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Order ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string "No Content"
// @Failure     403  {object}  handlers.ErrorResponse "Staff privileges required"
// @Failure     404  {object}  handlers.ErrorResponse "Order not found"
// @Router      /orders/{id} [delete]
func (h *Handlers) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}
	if err := h.orderSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// OrderCount godoc
// @ID          orderCount
// @Summary     Count a user's open orders
// @Description Returns the number of in_progress and cancelled orders involving the given user, on either side of the transaction.
// @Tags        Orders
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       user_id        path    string  true  "User ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.OrderCountResponse
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /order-count/{user_id} [get]
func (h *Handlers) OrderCount(c *gin.Context) {
	uid := c.Param("user_id")
	if _, err := uuid.Parse(uid); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	n, err := h.orderSvc.CountOpen(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, OrderCountResponse{OrderCount: n})
}

// CompletedOrderCount godoc
// @ID          completedOrderCount
// @Summary     Count a user's completed orders
// @Description Returns the number of completed orders involving the given user, on either side of the transaction.
// @Tags        Orders
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       user_id        path    string  true  "User ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.CompletedOrderCountResponse
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /completed-order-count/{user_id} [get]
func (h *Handlers) CompletedOrderCount(c *gin.Context) {
	uid := c.Param("user_id")
	if _, err := uuid.Parse(uid); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	n, err := h.orderSvc.CountClosed(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, CompletedOrderCountResponse{CompletedOrderCount: n})
}
