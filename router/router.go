package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samandartukhtayev/rawsock-users/wire"
)

// Route names reported alongside every dispatched response
const (
	RoutePreflight = "preflight"
	RouteCreate    = "create"
	RouteReadOne   = "read_one"
	RouteReadAll   = "read_all"
	RouteUpdate    = "update"
	RouteDelete    = "delete"
	RouteNotFound  = "not_found"
)

// NotFoundBody is sent when no route matches
const NotFoundBody = "404 not found"

// HandlerFunc answers a parsed request
type HandlerFunc func(ctx context.Context, req *wire.Request) wire.Response

// Route binds a method and a chi path pattern to a handler
type Route struct {
	Name    string
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Router matches requests against chi patterns. The mux only resolves
// method and path to a pattern; the matched handler is called directly
// with the wire request.
type Router struct {
	mux    *chi.Mux
	routes []Route
	byKey  map[string]Route
}

// New creates an empty router
func New() *Router {
	return &Router{
		mux:   chi.NewMux(),
		byKey: make(map[string]Route),
	}
}

var matchOnly = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// Handle registers a route. It panics on a malformed pattern, like chi.
func (r *Router) Handle(name, method, pattern string, h HandlerFunc) {
	r.mux.Method(method, pattern, matchOnly)

	route := Route{Name: name, Method: method, Pattern: pattern, Handler: h}
	r.routes = append(r.routes, route)
	r.byKey[method+" "+pattern] = route
}

// Routes returns a copy of the registered routes in registration order
func (r *Router) Routes() []Route {
	routes := make([]Route, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// Dispatch answers req and reports the name of the route that handled it.
// OPTIONS on any path is a CORS preflight and never reaches a handler.
// The query string is ignored for matching.
func (r *Router) Dispatch(ctx context.Context, req *wire.Request) (string, wire.Response) {
	if req.Method == http.MethodOptions {
		return RoutePreflight, wire.OK("")
	}

	path, _, _ := strings.Cut(req.Path, "?")
	if !strings.HasPrefix(path, "/") {
		return RouteNotFound, wire.NotFound(NotFoundBody)
	}

	rctx := chi.NewRouteContext()
	route, ok := r.byKey[req.Method+" "+r.mux.Find(rctx, req.Method, path)]
	if !ok {
		return RouteNotFound, wire.NotFound(NotFoundBody)
	}

	req.Params = make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		req.Params[key] = rctx.URLParams.Values[i]
	}
	return route.Name, route.Handler(ctx, req)
}

// UserHandlers is the set of operations served under /api/{ns}/users
type UserHandlers interface {
	Create(ctx context.Context, req *wire.Request) wire.Response
	ReadOne(ctx context.Context, req *wire.Request) wire.Response
	ReadAll(ctx context.Context, req *wire.Request) wire.Response
	Update(ctx context.Context, req *wire.Request) wire.Response
	Delete(ctx context.Context, req *wire.Request) wire.Response
}

// NewUserRouter registers the user routes. An empty namespace matches any
// value in the {ns} position.
func NewUserRouter(namespace string, h UserHandlers) *Router {
	ns := "{ns}"
	if namespace != "" {
		ns = namespace
	}
	collection := "/api/" + ns + "/users"
	item := collection + "/{id}"

	r := New()
	r.Handle(RouteCreate, http.MethodPost, collection, h.Create)
	r.Handle(RouteReadOne, http.MethodGet, item, h.ReadOne)
	r.Handle(RouteReadAll, http.MethodGet, collection, h.ReadAll)
	r.Handle(RouteUpdate, http.MethodPut, item, h.Update)
	r.Handle(RouteDelete, http.MethodDelete, item, h.Delete)
	return r
}
