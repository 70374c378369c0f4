package router

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/akeren/welcome-form/pkg/ratelimit"
)

// route identifies one registered handler.
type route struct {
	method string
	path   string
}

func (r route) String() string {
	return r.method + " " + r.path
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: path.Clean("/" + mountPoint),
		prepare:    prepare,
	}
}

// resolve joins relativePath onto the mount point. An empty relativePath is
// the mount point itself.
func (controller *RESTController) resolve(relativePath string) string {
	return path.Join(controller.mountPoint, strings.Trim(relativePath, "/"))
}

// RateLimitWith replaces the default limiter for every handler of the
// controller that has no limiter of its own.
func (controller *RESTController) RateLimitWith(routerService *RouterService, limiter ratelimit.RateLimiter) *RESTController {
	if limiter == nil {
		return controller
	}
	if _, taken := routerService.controllerLimiters[controller.mountPoint]; taken {
		panic(fmt.Sprintf("A rate limiter is already registered for mount point '%s'", controller.mountPoint))
	}

	routerService.controllerLimiters[controller.mountPoint] = limiter
	return controller
}

func (routerService *RouterService) register(controller *RESTController, r route, limiter ratelimit.RateLimiter) {
	if owner, taken := routerService.routes[r]; taken {
		panic(fmt.Sprintf("A handler for '%s' is already registered by controller '%s'", r, owner.name))
	}

	routerService.routes[r] = controller
	if limiter != nil {
		routerService.handlerLimiters[r] = limiter
	}
}

// createHandler adapts a HandlerFunction to gin. A nil result is a handler
// bug and becomes a 500.
func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)
		if result == nil {
			result = InternalServerErrorResult("A handler returned an undefined result. This typically indicates a bug in a handler's implementation.")
		}
		result.write(c)
	}
}

func (routerService *RouterService) addHandler(
	method string,
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	r := route{method: method, path: controller.resolve(relativePath)}
	routerService.register(controller, r, limiter)
	controller.handlerCount++

	routerService.engine.Handle(method, r.path, append(middlewares, createHandler(handler))...)
	routerService.logger.Debug("Handler registered", "route", r.String())
}

func (routerService *RouterService) AddPostHandler(controller *RESTController, limiter ratelimit.RateLimiter, path string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodPost, controller, limiter, path, handler, middlewares...)
}

func (routerService *RouterService) AddGetHandler(controller *RESTController, limiter ratelimit.RateLimiter, path string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodGet, controller, limiter, path, handler, middlewares...)
}

// AddHeadHandler lets probes check a route without a body.
func (routerService *RouterService) AddHeadHandler(controller *RESTController, limiter ratelimit.RateLimiter, path string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodHead, controller, limiter, path, handler, middlewares...)
}
