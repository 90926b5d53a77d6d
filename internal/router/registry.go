package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	modules []Module
}

// NewRegistry groups every module under /api.
func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the modules and answers unknown routes with the JSON
// envelope. It returns the module names for logging.
func (r *Registry) RegisterAll() []string {
	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		m.Register(r.API)
		if n, ok := m.(Named); ok {
			names = append(names, n.Name())
		} else {
			names = append(names, fmt.Sprintf("%T", m))
		}
	}
	r.Engine.HandleMethodNotAllowed = true
	r.Engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", nil)
	})
	r.Engine.NoMethod(func(c *gin.Context) {
		response.Error[any](c, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return names
}
