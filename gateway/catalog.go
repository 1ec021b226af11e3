package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

// @Summary List active products
// @Tags products
// @Produce json
// @Param category query string false "Category id"
// @Param featured query bool false "Featured only"
// @Param bestseller query bool false "Bestsellers only"
// @Param search query string false "Name or description match"
// @Param sort query string false "Sort key" default(-createdAt)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} service.ProductPage
// @Router /products [get]
func (g *Gateway) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		Featured:   c.Query("featured") == "true",
		Bestseller: c.Query("bestseller") == "true",
		Search:     c.Query("search"),
		Sort:       c.DefaultQuery("sort", "-createdAt"),
		Page:       pageQuery(c),
	}
	if raw := c.Query("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abort(c, apperr.Validation("Invalid category id"))
			return
		}
		f.Category = &id
	}

	page, err := g.services.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (g *Gateway) getProduct(c *gin.Context) {
	p, err := g.services.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (g *Gateway) createProduct(c *gin.Context) {
	var in service.ProductInput
	if err := bindJSON(c, &in); err != nil {
		abort(c, err)
		return
	}
	p, err := g.services.Catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": p})
}

type bulkProductsRequest struct {
	Products               []service.ProductInput `json:"products"`
	UpdateStockOnDuplicate bool                   `json:"updateStockOnDuplicate"`
}

// @Summary Create many products, reporting duplicates per item
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body bulkProductsRequest true "Products"
// @Success 201 {object} map[string]any
// @Router /products/bulk [post]
func (g *Gateway) bulkCreateProducts(c *gin.Context) {
	var req bulkProductsRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	res, err := g.services.Catalog.BulkCreateProducts(c.Request.Context(), req.Products, req.UpdateStockOnDuplicate)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": res.Summary(), "results": res.Results})
}

func (g *Gateway) updateProduct(c *gin.Context) {
	var patch repository.ProductPatch
	if err := bindJSON(c, &patch); err != nil {
		abort(c, err)
		return
	}
	p, err := g.services.Catalog.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": p})
}

func (g *Gateway) deleteProduct(c *gin.Context) {
	if err := g.services.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (g *Gateway) listCategories(c *gin.Context) {
	categories, err := g.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (g *Gateway) getCategory(c *gin.Context) {
	category, err := g.services.Catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (g *Gateway) createCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := bindJSON(c, &in); err != nil {
		abort(c, err)
		return
	}
	category, err := g.services.Catalog.CreateCategory(c.Request.Context(), in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
}

func (g *Gateway) updateCategory(c *gin.Context) {
	var patch repository.CategoryPatch
	if err := bindJSON(c, &patch); err != nil {
		abort(c, err)
		return
	}
	category, err := g.services.Catalog.UpdateCategory(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": category})
}

func (g *Gateway) deleteCategory(c *gin.Context) {
	if err := g.services.Catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
