package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

func pageQuery(c *gin.Context) repository.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("limit"))
	return repository.Page{Number: number, Size: size}
}

// placeOrder godoc
// @Summary Place an order from explicit items or the caller's cart
// @Description Guests must send items and a shipping email. Signed-in callers
// @Description without items check out their cart.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body service.PlaceOrderRequest true "Order"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /orders [post]
func (g *Gateway) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	if u := currentUser(c); u != nil {
		req.UserID = &u.ID
	}

	ctx := c.Request.Context()
	settings, err := g.services.Settings.Get(ctx)
	if err != nil {
		abort(c, err)
		return
	}
	order, err := g.services.Orders.PlaceOrder(ctx, settings, req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// @Summary List the caller's orders, newest first
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /orders [get]
func (g *Gateway) listMyOrders(c *gin.Context) {
	orders, err := g.services.Orders.ListMine(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (g *Gateway) getMyOrder(c *gin.Context) {
	order, err := g.services.Orders.GetMine(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// cancelOrder godoc
// @Summary Cancel the caller's pending or confirmed order
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /orders/{id}/cancel [put]
func (g *Gateway) cancelOrder(c *gin.Context) {
	order, err := g.services.Orders.Cancel(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}

// @Summary Paginated order list for admins
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} service.OrderPage
// @Router /orders/admin/all [get]
func (g *Gateway) listAllOrders(c *gin.Context) {
	page, err := g.services.Orders.ListAll(c.Request.Context(), models.OrderStatus(c.Query("status")), pageQuery(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary Overwrite an order's status fields
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order id"
// @Param patch body repository.StatusPatch true "New statuses"
// @Success 200 {object} map[string]any
// @Router /orders/admin/{id}/status [put]
func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var patch repository.StatusPatch
	if err := bindJSON(c, &patch); err != nil {
		abort(c, err)
		return
	}
	order, err := g.services.Orders.UpdateStatus(c.Request.Context(), currentUser(c).ID.Hex(), c.Param("id"), patch)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

func (g *Gateway) orderHistory(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	history, err := g.services.Orders.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
