package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	users := api.Group("/users")
	{
		users.POST("", h.User.Register)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.UpdateProfile)
		users.DELETE("/:id", h.User.Delete)
	}

	categories := api.Group("/categories")
	{
		categories.POST("", h.Catalog.CreateCategory)
		categories.GET("", h.Catalog.ListCategories)
		categories.GET("/:id", h.Catalog.GetCategory)
		categories.PATCH("/:id", h.Catalog.UpdateCategory)
		categories.DELETE("/:id", h.Catalog.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Catalog.CreateProduct)
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.PATCH("/:id", h.Catalog.UpdateProduct)
		products.DELETE("/:id", h.Catalog.DeleteProduct)
		products.GET("/:id/reviews", h.Review.ListForProduct)
	}

	carts := api.Group("/carts")
	{
		carts.GET("/:userId", h.Cart.Get)
		carts.POST("/:userId/items", h.Cart.AddItem)
		carts.PATCH("/:userId/items/:productId", h.Cart.UpdateQuantity)
		carts.DELETE("/:userId/items/:productId", h.Cart.RemoveItem)
	}

	orders := api.Group("/orders")
	{
		orders.GET("/:id", h.Order.Get)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
		orders.GET("/user/:userId", h.Order.ListForUser)
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("", h.Review.Create)
		reviews.PATCH("/:id", h.Review.Update)
		reviews.DELETE("/:id", h.Review.Delete)
	}

	api.POST("/checkout", h.Checkout.Checkout)

	return router
}
