package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/planner/api/handler"
)

type Handlers struct {
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/healthz", handlers.Health.Live)
	r.GET("/readyz", handlers.Health.Ready)

	return r
}
