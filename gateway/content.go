package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

// contentKeys names the response keys and messages of one content kind.
type contentKeys struct {
	one     string
	many    string
	label   string
	created string
}

func bannerQuery(c *gin.Context) repository.ContentQuery {
	return repository.ContentQuery{ActiveOnly: c.Query("active") == "true", Position: c.Query("position")}
}

func activeQuery(c *gin.Context) repository.ContentQuery {
	return repository.ContentQuery{ActiveOnly: c.Query("active") == "true"}
}

// festivalQuery lists active festivals unless active=false is asked for.
func festivalQuery(c *gin.Context) repository.ContentQuery {
	return repository.ContentQuery{ActiveOnly: c.Query("active") != "false"}
}

// contentRoutes mounts public reads and admin writes for one collection.
func contentRoutes[T any](r *gin.RouterGroup, col *service.Collection[T], admin gin.HandlerFunc, keys contentKeys, query func(*gin.Context) repository.ContentQuery) {
	if keys.created == "" {
		keys.created = keys.label + " created"
	}

	r.GET("", func(c *gin.Context) {
		docs, err := col.List(c.Request.Context(), query(c))
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{keys.many: docs})
	})

	r.GET("/:id", func(c *gin.Context) {
		doc, err := col.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{keys.one: doc})
	})

	r.POST("", admin, func(c *gin.Context) {
		var doc T
		if err := bindJSON(c, &doc); err != nil {
			abort(c, err)
			return
		}
		created, err := col.Create(c.Request.Context(), &doc)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": keys.created, keys.one: created})
	})

	r.PUT("/:id", admin, func(c *gin.Context) {
		updated, err := col.Update(c.Request.Context(), c.Param("id"), func(doc *T) error {
			return c.ShouldBindJSON(doc)
		})
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": keys.label + " updated", keys.one: updated})
	})

	r.DELETE("/:id", admin, func(c *gin.Context) {
		if err := col.Delete(c.Request.Context(), c.Param("id")); err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": keys.label + " deleted"})
	})
}
