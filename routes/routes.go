package routes

import (
	"tillpoint/auth"
	"tillpoint/cart"
	"tillpoint/checkout"
	"tillpoint/customers"
	"tillpoint/middleware"
	"tillpoint/orders"
	"tillpoint/pricing"
	"tillpoint/products"
	"tillpoint/ratelim"
	"tillpoint/receipt"
	"tillpoint/session"

	"github.com/julienschmidt/httprouter"
)

// AddAuthRoutes wires staff login and token refresh.
func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/v1/auth/login", rateLimiter.Limit(auth.Login))
	router.POST("/api/v1/auth/register", rateLimiter.Limit(auth.Register))
	router.POST("/api/v1/auth/logout",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(auth.LogoutUser))
	router.POST("/api/v1/auth/refresh", rateLimiter.Limit(auth.RefreshToken))
}

// AddSessionRoutes wires register sessions, drawer events, and the
// register status poll.
func AddSessionRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)
	manager := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("manager"),
	)

	router.GET("/api/v1/locations", staff(session.GetLocations))
	router.GET("/api/v1/locations/:locationid/registers", staff(session.GetRegisters))
	router.GET("/api/v1/registers/:registerid/status", staff(session.RegisterStatus))

	router.POST("/api/v1/sessions", staff(session.OpenSession))
	router.POST("/api/v1/sessions/:sessionid/join", staff(session.JoinSession))
	router.POST("/api/v1/sessions/:sessionid/close", staff(session.CloseSession))
	router.GET("/api/v1/sessions/:sessionid/summary", staff(session.GetSessionSummary))

	router.POST("/api/v1/sessions/:sessionid/drawer", staff(session.AddDrawerEvent))
	router.GET("/api/v1/sessions/:sessionid/drawer", staff(session.GetDrawerEvents))

	router.GET("/api/v1/sessions/:sessionid/report", manager(session.GetSessionSummary))
}

// AddCartRoutes wires cart building for an open session.
func AddCartRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)

	router.POST("/api/v1/sessions/:sessionid/cart", staff(cart.AddItem))
	router.GET("/api/v1/sessions/:sessionid/cart", staff(cart.GetCart))
	router.PUT("/api/v1/sessions/:sessionid/cart/:sku", staff(cart.UpdateItem))
	router.DELETE("/api/v1/sessions/:sessionid/cart", staff(cart.ClearCart))

	router.POST("/api/v1/sessions/:sessionid/customer", staff(cart.AttachCustomer))
	router.DELETE("/api/v1/sessions/:sessionid/customer", staff(cart.DetachCustomer))
}

// AddCheckoutRoutes wires the totals preview.
func AddCheckoutRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)

	router.POST("/api/v1/sessions/:sessionid/quote", staff(checkout.QuoteCart))
}

// AddOrderRoutes wires order lookup and refunds.
func AddOrderRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)
	manager := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("manager"),
	)

	router.GET("/api/v1/orders", staff(orders.SearchOrders))
	router.GET("/api/v1/orders/:orderid", staff(orders.GetOrder))
	router.GET("/api/v1/orderlookup/:number", staff(orders.LookupByNumber))
	router.POST("/api/v1/orders/:orderid/refund", manager(orders.RefundOrder))
}

// AddCustomerRoutes wires loyalty member lookup and maintenance.
func AddCustomerRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)
	manager := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("manager"),
	)

	router.GET("/api/v1/customers", staff(customers.SearchCustomers))
	router.POST("/api/v1/customers", staff(customers.CreateCustomer))
	router.GET("/api/v1/customers/:customerid", staff(customers.GetCustomer))
	router.PUT("/api/v1/customers/:customerid", staff(customers.UpdateCustomer))
	router.POST("/api/v1/customers/:customerid/points", manager(customers.AdjustLoyalty))
}

// AddProductRoutes wires catalog lookup for the registers and catalog
// maintenance for managers.
func AddProductRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)
	manager := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("manager"),
	)

	router.GET("/api/v1/products", staff(products.SearchProducts))
	router.GET("/api/v1/scan/:code", staff(products.LookupProduct))
	router.POST("/api/v1/products", manager(products.CreateProduct))
	router.PUT("/api/v1/products/:sku", manager(products.UpdateProduct))
	router.DELETE("/api/v1/products/:sku", manager(products.DeleteProduct))
	router.POST("/api/v1/products/:sku/image", manager(products.UploadProductImage))
}

// AddPricingRoutes wires tax rate and promotion management.
func AddPricingRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)
	manager := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("manager"),
	)

	router.GET("/api/v1/promotions", staff(pricing.GetPromotions))
	router.POST("/api/v1/promotions", manager(pricing.CreatePromotion))
	router.PUT("/api/v1/promotions/:code", manager(pricing.UpdatePromotion))
	router.DELETE("/api/v1/promotions/:code", manager(pricing.DeletePromotion))

	router.GET("/api/v1/locations/:locationid/taxrate", staff(pricing.GetTaxRate))
	router.PUT("/api/v1/locations/:locationid/taxrate", manager(pricing.SetTaxRate))
}

// AddReceiptRoutes wires receipt printing and QR verification.
func AddReceiptRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
	)

	router.GET("/api/v1/orders/:orderid/receipt", staff(receipt.PrintReceipt))
	router.POST("/api/v1/receipts/verify", staff(receipt.VerifyReceipt))
}
