package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/handlers"
	"github.com/sareenotsorry/shop/internal/middleware/auth"
)

type Deps struct {
	DB                  *gorm.DB
	Auth                *auth.Middleware
	AuthHandler         *handlers.AuthHandler
	ProductHandler      *handlers.ProductHandler
	AdminProductHandler *handlers.AdminProductHandler
	OrderHandler        *handlers.OrderHandler
	AdminOrderHandler   *handlers.AdminOrderHandler
	CategoryHandler     *handlers.CategoryHandler
	NotificationHandler *handlers.NotificationHandler
	StatsHandler        *handlers.StatsHandler
	SearchHandler       *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)

	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	v1.GET("/categories", d.CategoryHandler.ListCategories)
	v1.GET("/search", d.SearchHandler.Search)

	user := v1.Group("", d.Auth.RequireLogin)
	user.GET("/orders", d.OrderHandler.ListOrders)
	user.POST("/orders", d.OrderHandler.CreateOrder)
	user.GET("/orders/:id", d.OrderHandler.GetOrder)
	user.PUT("/orders/:id", d.OrderHandler.UpdateOrder)
	user.GET("/notifications", d.NotificationHandler.ListNotifications)
	user.PATCH("/notifications", d.NotificationHandler.PatchNotifications)

	admin := v1.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/stats", d.StatsHandler.GetStats)

	admin.GET("/orders", d.AdminOrderHandler.ListOrders)
	admin.GET("/orders/:id", d.AdminOrderHandler.GetOrder)
	admin.PATCH("/orders/:id", d.AdminOrderHandler.PatchOrder)
	admin.DELETE("/orders/:id", d.AdminOrderHandler.DeleteOrder)

	admin.GET("/products", d.AdminProductHandler.ListProducts)
	admin.POST("/products", d.AdminProductHandler.CreateProduct)
	admin.PUT("/products/:id", d.AdminProductHandler.UpdateProduct)
	admin.PATCH("/products/:id", d.AdminProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.AdminProductHandler.DeleteProduct)

	admin.GET("/categories", d.CategoryHandler.AdminListCategories)
	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.PUT("/categories/:id", d.CategoryHandler.UpdateCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)
}
