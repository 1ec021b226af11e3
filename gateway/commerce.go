package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

type cartLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (g *Gateway) getCart(c *gin.Context) {
	cart, err := g.services.Cart.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// @Summary Add a product to the caller's cart
// @Tags cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param line body cartLineRequest true "Product and quantity (default 1)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Router /cart/add [post]
func (g *Gateway) addToCart(c *gin.Context) {
	var req cartLineRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	cart, err := g.services.Cart.Add(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": cart})
}

func (g *Gateway) updateCart(c *gin.Context) {
	var req cartLineRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	cart, err := g.services.Cart.Update(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
}

func (g *Gateway) removeFromCart(c *gin.Context) {
	cart, err := g.services.Cart.Remove(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "cart": cart})
}

func (g *Gateway) clearCart(c *gin.Context) {
	if err := g.services.Cart.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (g *Gateway) activeCoupons(c *gin.Context) {
	coupons, err := g.services.Coupons.ListActive(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

type validateCouponRequest struct {
	Code     string   `json:"code"`
	Subtotal *float64 `json:"subtotal"`
}

// validateCoupon godoc
// @Summary Check whether a coupon code is usable now
// @Description With a subtotal the minimum order value is enforced and the
// @Description discount is returned.
// @Tags coupons
// @Accept json
// @Produce json
// @Param body body validateCouponRequest true "Code and optional subtotal"
// @Success 200 {object} service.CouponCheck
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /coupons/validate [post]
func (g *Gateway) validateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	check, err := g.services.Coupons.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

func (g *Gateway) listCoupons(c *gin.Context) {
	coupons, err := g.services.Coupons.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

func (g *Gateway) getCoupon(c *gin.Context) {
	coupon, err := g.services.Coupons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

func (g *Gateway) createCoupon(c *gin.Context) {
	var in service.CouponInput
	if err := bindJSON(c, &in); err != nil {
		abort(c, err)
		return
	}
	coupon, err := g.services.Coupons.Create(c.Request.Context(), in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Coupon created", "coupon": coupon})
}

func (g *Gateway) updateCoupon(c *gin.Context) {
	var patch repository.CouponPatch
	if err := bindJSON(c, &patch); err != nil {
		abort(c, err)
		return
	}
	coupon, err := g.services.Coupons.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon updated", "coupon": coupon})
}

func (g *Gateway) deleteCoupon(c *gin.Context) {
	if err := g.services.Coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}

func (g *Gateway) getSettings(c *gin.Context) {
	settings, err := g.services.Settings.Get(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (g *Gateway) updateSettings(c *gin.Context) {
	settings, err := g.services.Settings.Update(c.Request.Context(), func(s *models.Settings) error {
		return c.ShouldBindJSON(s)
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "settings": settings})
}
