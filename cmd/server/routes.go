package main

import (
	"github.com/gin-gonic/gin"

	"couponmap.backend/internal/config"
	"couponmap.backend/internal/interfaces/http/handlers"
	"couponmap.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	storeHandler      *handlers.StoreHandler
	couponHandler     *handlers.CouponHandler
	orderHandler      *handlers.OrderHandler
	kitchenHandler    *handlers.KitchenHandler
	walletHandler     *handlers.WalletHandler
	paymentHandler    *handlers.PaymentHandler
	gameHandler       *handlers.GameHandler
	merchantHandler   *handlers.MerchantHandler
	ticketHandler     *handlers.TicketHandler
	settlementHandler *handlers.SettlementHandler
	authMiddleware    gin.HandlerFunc
	rateLimit         config.RateLimitConfig
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	idempotent := middleware.IdempotencyMiddleware()

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Store discovery (public)
		consumer := v1.Group("/consumer")
		{
			consumer.GET("/stores", d.storeHandler.ListNearbyStores)
			consumer.GET("/stores/:id", d.storeHandler.GetStore)
		}
		v1.GET("/stores/:storeId/products", d.storeHandler.ListProducts)
		v1.GET("/slug/check", d.storeHandler.CheckSlug)

		// Coupons
		coupons := v1.Group("/coupons")
		{
			coupons.GET("/nearby", d.couponHandler.NearbyCoupons)
			coupons.GET("/my", d.couponHandler.ListMyCoupons)
			coupons.POST("/issue",
				d.authMiddleware,
				middleware.RequireMerchant(),
				middleware.RateLimitMiddleware("coupon_issue", d.rateLimit),
				idempotent,
				d.couponHandler.Issue,
			)
			coupons.POST("/use", d.authMiddleware, idempotent, d.couponHandler.Redeem)
		}

		// Table ordering (public, the session code is the credential)
		order := v1.Group("/order")
		{
			order.POST("/session", d.orderHandler.StartSession)
			order.GET("/session", d.orderHandler.GetSession)
			order.POST("/cart", d.orderHandler.AddToCart)
			order.PUT("/cart", d.orderHandler.UpdateCartItem)
			order.DELETE("/cart", d.orderHandler.RemoveCartItem)
			order.GET("/cart", d.orderHandler.GetCart)
			order.POST("/submit", idempotent, d.orderHandler.SubmitOrder)
		}

		// Consumer wallet
		wallet := v1.Group("/wallet")
		{
			wallet.POST("/transaction", d.authMiddleware, middleware.RequireMerchant(), idempotent, d.walletHandler.Transaction)
			wallet.GET("/my-balance", d.walletHandler.MyBalance)
		}

		// Mini-game
		game := v1.Group("/game")
		{
			game.POST("/start", d.gameHandler.StartGame)
			game.POST("/finish", middleware.RateLimitMiddleware("game_finish", d.rateLimit), d.gameHandler.FinishGame)
		}

		// Ticketed events (public listing)
		events := v1.Group("/events")
		{
			events.GET("", d.ticketHandler.ListEvents)
			events.GET("/:id", d.ticketHandler.GetEvent)
		}

		// Tickets (consumer)
		tickets := v1.Group("/tickets")
		tickets.Use(d.authMiddleware)
		{
			tickets.POST("", idempotent, d.ticketHandler.Purchase)
			tickets.GET("/my", d.ticketHandler.MyTickets)
			tickets.GET("/:id", d.ticketHandler.GetTicket)
		}

		// Merchant onboarding (public)
		v1.POST("/merchant/register", d.merchantHandler.Register)

		// Merchant routes (protected)
		merchant := v1.Group("/merchant")
		merchant.Use(d.authMiddleware, middleware.RequireMerchant())
		{
			merchant.GET("/stats", d.merchantHandler.Stats)
			merchant.PUT("/stores/:id", d.storeHandler.UpdateStore)
			merchant.POST("/products", d.storeHandler.CreateProduct)
			merchant.POST("/coupons", d.couponHandler.CreateCoupon)
			merchant.GET("/check-coupon", d.couponHandler.CheckCoupon)
			merchant.GET("/kitchen", d.kitchenHandler.ListOrders)
			merchant.PUT("/kitchen", d.kitchenHandler.UpdateStatus)
			merchant.PUT("/sessions/:id/status", d.orderHandler.UpdateSessionStatus)
			merchant.GET("/wallet", d.walletHandler.MerchantWallet)
			merchant.POST("/events", d.ticketHandler.CreateEvent)
			merchant.PUT("/events/:id/status", d.ticketHandler.UpdateEventStatus)
			merchant.POST("/tickets/verify", d.ticketHandler.Verify)
			merchant.GET("/settlements", d.settlementHandler.List)
		}

		// Point top-up (merchant)
		payment := v1.Group("/payment")
		payment.Use(d.authMiddleware, middleware.RequireMerchant())
		{
			payment.GET("/topup", d.paymentHandler.ListPackages)
			payment.POST("/topup", d.paymentHandler.CreateTopup)
			payment.POST("/confirm", idempotent, d.paymentHandler.ConfirmPayment)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/approvals", d.merchantHandler.ListApprovals)
			admin.POST("/approvals", d.merchantHandler.ApplyApprovalAction)
			admin.POST("/settlements", d.settlementHandler.Create)
			admin.PUT("/settlements/:id", d.settlementHandler.UpdateStatus)
		}
	}
}
