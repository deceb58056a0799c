package server

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route is a single method and path with its handler chain.
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Routes is a group of routes mounted under a common prefix.
type Routes struct {
	prefix string
	routes []Route
}

// NewRoutes creates an empty group. An empty prefix mounts at the root.
func NewRoutes(prefix string) *Routes {
	return &Routes{prefix: prefix}
}

// Prefix returns the group prefix.
func (r *Routes) Prefix() string { return r.prefix }

// Add registers handlers for method and path, relative to the prefix.
func (r *Routes) Add(method, path string, handlers ...gin.HandlerFunc) *Routes {
	r.routes = append(r.routes, Route{
		Method:   strings.ToUpper(method),
		Path:     path,
		Handlers: handlers,
	})
	return r
}

// GET is shorthand for Add("GET", ...).
func (r *Routes) GET(path string, handlers ...gin.HandlerFunc) *Routes {
	return r.Add("GET", path, handlers...)
}

// POST is shorthand for Add("POST", ...).
func (r *Routes) POST(path string, handlers ...gin.HandlerFunc) *Routes {
	return r.Add("POST", path, handlers...)
}

// PUT is shorthand for Add("PUT", ...).
func (r *Routes) PUT(path string, handlers ...gin.HandlerFunc) *Routes {
	return r.Add("PUT", path, handlers...)
}

// DELETE is shorthand for Add("DELETE", ...).
func (r *Routes) DELETE(path string, handlers ...gin.HandlerFunc) *Routes {
	return r.Add("DELETE", path, handlers...)
}

// All returns the registered routes in insertion order.
func (r *Routes) All() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

func (r *Routes) mount(engine *gin.Engine) {
	group := engine.Group(r.prefix)
	for _, rt := range r.routes {
		group.Handle(rt.Method, rt.Path, rt.Handlers...)
	}
}

// logRoutes writes the final route table at debug level, API routes first.
func (s *Server) logRoutes(engine *gin.Engine) {
	routes := engine.Routes()
	sort.Slice(routes, func(i, j int) bool {
		iSys, jSys := isSystemPath(routes[i].Path), isSystemPath(routes[j].Path)
		if iSys != jSys {
			return !iSys
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return methodOrder(routes[i].Method) < methodOrder(routes[j].Method)
	})
	for _, r := range routes {
		s.log.Debug("route", map[string]interface{}{
			"method":  r.Method,
			"path":    r.Path,
			"handler": formatHandlerName(r.Handler),
		})
	}
}

func isSystemPath(path string) bool {
	return path == PathPing || path == PathHealth
}

// formatHandlerName shortens gin's handler names:
// "github.com/acme/svc/api.(*UserPort).List-fm" becomes "UserPort.List".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// closures: keep the last named segment before funcN
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = parts[i]
				break
			}
		}
	}

	// drop a lowercase package qualifier
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
