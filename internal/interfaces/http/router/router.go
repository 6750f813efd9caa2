package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIPrefix is where every versioned module is mounted
const APIPrefix = "/api/v1"

// Route is one endpoint of a Module
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

func get(path string, h ...gin.HandlerFunc) Route {
	return Route{Method: http.MethodGet, Path: path, Handlers: h}
}

func post(path string, h ...gin.HandlerFunc) Route {
	return Route{Method: http.MethodPost, Path: path, Handlers: h}
}

// Module groups the routes of one resource under a shared prefix and
// middleware chain.
type Module struct {
	Name       string
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
}

// Mount registers the module on rg and returns the number of routes
func (m Module) Mount(rg *gin.RouterGroup) int {
	g := rg.Group(m.Prefix, m.Middleware...)
	for _, r := range m.Routes {
		g.Handle(r.Method, r.Path, r.Handlers...)
	}
	return len(m.Routes)
}

// mountAll registers modules under APIPrefix, skipping empty ones
func mountAll(engine *gin.Engine, modules []Module) map[string]int {
	api := engine.Group(APIPrefix)
	mounted := make(map[string]int, len(modules))
	for _, m := range modules {
		if len(m.Routes) == 0 {
			continue
		}
		mounted[m.Name] = m.Mount(api)
	}
	return mounted
}
