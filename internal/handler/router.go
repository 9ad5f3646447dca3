package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/handler/api"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Health       *api.HealthHandler
	Slots        *api.SlotHandler
	Bookings     *api.BookingHandler
	Availability *api.AvailabilityHandler
	Webhook      *api.StripeWebhookHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", h.Health.Check)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		providers := apiGroup.Group("/providers/:slug")
		addRoutes(providers, []route{
			{Method: http.MethodGet, Path: "/slots", Handler: h.Slots.List},
			{Method: http.MethodPost, Path: "/bookings", Handler: h.Bookings.Create},
		})

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: h.Bookings.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Bookings.Cancel, Mw: customerOnly(authMiddleware)},
				{Method: http.MethodPost, Path: "/:id/disputes", Handler: h.Bookings.OpenDispute, Mw: customerOnly(authMiddleware)},
			})
		}

		provider := apiGroup.Group("/provider")
		provider.Use(authMiddleware.RequireAuth())
		{
			providerOnly := []gin.HandlerFunc{authMiddleware.RequireRole(actor.RoleProvider)}
			addRoutes(provider, []route{
				{Method: http.MethodGet, Path: "/rules", Handler: h.Availability.ListRules, Mw: providerOnly},
				{Method: http.MethodPost, Path: "/rules", Handler: h.Availability.CreateRule, Mw: providerOnly},
				{Method: http.MethodPatch, Path: "/rules/:id", Handler: h.Availability.UpdateRule, Mw: providerOnly},
				{Method: http.MethodDelete, Path: "/rules/:id", Handler: h.Availability.DeleteRule, Mw: providerOnly},
				{Method: http.MethodGet, Path: "/blocked-slots", Handler: h.Availability.ListBlockedSlots, Mw: providerOnly},
				{Method: http.MethodPost, Path: "/blocked-slots", Handler: h.Availability.CreateBlockedSlot, Mw: providerOnly},
				{Method: http.MethodDelete, Path: "/blocked-slots/:id", Handler: h.Availability.DeleteBlockedSlot, Mw: providerOnly},
				{Method: http.MethodGet, Path: "/bookings", Handler: h.Bookings.ListForProvider, Mw: providerOnly},
				{Method: http.MethodPost, Path: "/bookings/:id/cancel", Handler: h.Bookings.Cancel, Mw: providerOnly},
				{Method: http.MethodPost, Path: "/bookings/:id/no-show", Handler: h.Bookings.MarkNoShow, Mw: providerOnly},
				{Method: http.MethodPost, Path: "/bookings/:id/complete", Handler: h.Bookings.Complete, Mw: providerOnly},
				{
					Method:  http.MethodPost,
					Path:    "/bookings/:id/disputes/resolve",
					Handler: h.Bookings.ResolveDispute,
					Mw:      []gin.HandlerFunc{authMiddleware.RequireRole(actor.RoleProvider, actor.RoleAdmin)},
				},
			})
		}

		payments := apiGroup.Group("/payments")
		addRoutes(payments, []route{
			{Method: http.MethodPost, Path: "/stripe/webhook", Handler: h.Webhook.Handle},
		})
	}
}

func customerOnly(m *middleware.AuthMiddleware) []gin.HandlerFunc {
	return []gin.HandlerFunc{m.RequireRole(actor.RoleCustomer, actor.RoleAdmin)}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
