package router

import "github.com/gin-gonic/gin"

// Module mounts one feature's routes under the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Named modules are listed in the startup log.
type Named interface {
	Name() string
}
