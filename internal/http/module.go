// Package http holds the HTTP server composition: the Module contract that
// feature packages implement to mount their routes, and the App wiring the
// router consumes.
package http

import (
	"github.com/gin-gonic/gin"
)

// Module is a feature package that mounts its own HTTP routes. The router
// stays ignorant of individual endpoints; each module registers itself.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	// RegisterRoutes mounts the module's endpoints on the shared groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext bundles the route groups handed to each module during
// registration.
type RouterContext struct {
	// Engine is the root gin engine, for modules needing engine-level
	// access.
	Engine *gin.Engine
	// V1 is the /api/v1 group where modules mount their routes.
	V1 *gin.RouterGroup
}
