// Package router assembles the gin routes of the assistant API.
package router

import (
	"net/http"

	"github.com/cvassistant/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// DefaultPrefix is the path prefix of API routes
const DefaultPrefix = "/api"

// UIPath is where the embedded front-end is served
const UIPath = "/ui"

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	prefix     string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithPrefix sets the API path prefix
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		prefix:     DefaultPrefix,
		registrars: make([]RouteRegistrar, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under the API prefix
func (r *Router) Setup() {
	api := r.engine.Group(r.prefix)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects routes sharing a prefix and middleware
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Handlers are the endpoint handlers mounted by Mount
type Handlers struct {
	System     *handler.SystemHandler
	Chat       *handler.ChatHandler
	Upload     *handler.UploadHandler
	Categories *handler.CategoriesHandler
	Sync       *handler.SyncHandler
}

// Mount registers every route on engine. ui may be nil when no front-end is bundled.
func Mount(engine *gin.Engine, h Handlers, ui http.FileSystem) {
	engine.GET("/", h.System.Root)
	engine.GET("/health", h.System.Health)

	assistant := NewDomainGroup("assistant", "").
		POST("/chat", h.Chat.Chat).
		POST("/upload", h.Upload.Upload).
		GET("/categories", h.Categories.List).
		POST("/sync", h.Sync.Sync)
	system := NewDomainGroup("system", "").
		GET("/ping", h.System.Ping)

	NewRouter(engine).Register(assistant).Register(system).Setup()

	if ui != nil {
		engine.StaticFS(UIPath, ui)
	}
}
