// Package routes provides HTTP route registration and handler building.
package routes

import (
	"net/http"
)

// Route represents an HTTP route with method, pattern, and handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group represents a collection of routes under a common URL prefix.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
}

// System collects routes and groups and builds the final multiplexer.
type System struct {
	routes []Route
	groups []Group
}

// New creates an empty route system.
func New() *System {
	return &System{
		routes: []Route{},
		groups: []Group{},
	}
}

// RegisterRoute adds a standalone route.
func (s *System) RegisterRoute(route Route) {
	s.routes = append(s.routes, route)
}

// RegisterGroup adds a route group.
func (s *System) RegisterGroup(group Group) {
	s.groups = append(s.groups, group)
}

// Build constructs an http.Handler from all registered routes and groups.
func (s *System) Build() http.Handler {
	mux := http.NewServeMux()

	for _, route := range s.routes {
		mux.HandleFunc(route.Method+" "+route.Pattern, route.Handler)
	}

	for _, group := range s.groups {
		for _, route := range group.Routes {
			mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
		}
	}

	return mux
}
