package routes

import (
	"tillpoint/middleware"
	"tillpoint/payment"
	"tillpoint/ratelim"

	"github.com/julienschmidt/httprouter"
)

// AddPaymentRoutes wires payment collection. The payment endpoints carry
// the idempotency middleware so a register retrying over spotty wifi
// can't double-charge.
func AddPaymentRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, hub *payment.Hub) {
	svc := payment.NewService(hub)

	staff := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles("cashier", "manager"),
		payment.Idempotency,
	)

	router.POST("/api/v1/sessions/:sessionid/pay", staff(svc.StartPayment))
	router.POST("/api/v1/payments/resume", staff(svc.ResumePayment))

	// websocket; Authenticate passes upgrade requests through and the
	// handler validates the query-parameter token before upgrading
	router.GET("/ws/payments/:sessionid",
		middleware.Chain(middleware.Authenticate)(payment.ProgressSocket(hub)),
	)
}
