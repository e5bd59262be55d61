package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/lifetrack/api/handler"
	"github.com/fastygo/lifetrack/internal/middleware"
)

type Handlers struct {
	Goals    *apiHandler.GoalsHandler
	Profile  *apiHandler.ProfileHandler
	Activity *apiHandler.ActivityHandler
	Health   *apiHandler.HealthHandler
}

// New registers every route. identity resolves claims on all API routes;
// routes that need a signed-in caller are additionally wrapped in RequireIdentity.
func New(handlers Handlers, identity func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()
	protected := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return identity(middleware.RequireIdentity(h))
	}

	r.GET("/health", handlers.Health.Check)

	// Profile routes
	r.GET("/api/v1/me", identity(handlers.Profile.GetProfile))
	r.GET("/api/v1/me/claims", identity(handlers.Profile.GetClaims))
	r.PUT("/api/v1/me", protected(handlers.Profile.UpdateProfile))
	r.DELETE("/api/v1/me/data", protected(handlers.Profile.PurgeData))

	// Goal routes
	r.GET("/api/v1/categories", protected(handlers.Goals.ListCategories))
	r.GET("/api/v1/categories/{categoryID}", protected(handlers.Goals.GetCategory))
	r.POST("/api/v1/categories/{categoryID}/goals", protected(handlers.Goals.AddGoal))
	r.POST("/api/v1/categories/{categoryID}/goals/{goalID}/complete", protected(handlers.Goals.CompleteGoal))
	r.POST("/api/v1/categories/{categoryID}/goals/{goalID}/reset", protected(handlers.Goals.ResetGoal))

	r.GET("/api/v1/activity", protected(handlers.Activity.List))

	return r
}
