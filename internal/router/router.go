// Package router parses hash-style routes ("drop?id=2") and dispatches
// route-changed events to subscribed page controllers. It replaces the
// browser's implicit window-event bus with explicit subscription.
package router

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// DefaultRoute is dispatched for an empty fragment.
const DefaultRoute = "landing"

// RouteChangedEvent describes a navigation target.
type RouteChangedEvent struct {
	Route  string
	Params map[string]string
}

// Param returns the named parameter or "".
func (e RouteChangedEvent) Param(key string) string {
	return e.Params[key]
}

// Parse splits a fragment like "#drop?id=2" into route and params.
// A leading "#" is tolerated; an empty route maps to DefaultRoute. When a
// key repeats, the last value wins.
func Parse(fragment string) RouteChangedEvent {
	fragment = strings.TrimPrefix(fragment, "#")

	route, query, _ := strings.Cut(fragment, "?")
	if route == "" {
		route = DefaultRoute
	}

	params := map[string]string{}
	if query != "" {
		if values, err := url.ParseQuery(query); err == nil {
			for key, vals := range values {
				if len(vals) > 0 {
					params[key] = vals[len(vals)-1]
				}
			}
		}
	}
	return RouteChangedEvent{Route: route, Params: params}
}

// Format renders a route and params back into a fragment. Params are
// emitted in sorted key order so output is deterministic.
func Format(route string, params map[string]string) string {
	if len(params) == 0 {
		return route
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, params[k])
	}
	return route + "?" + values.Encode()
}

// Listener receives route changes.
type Listener func(RouteChangedEvent)

// Router dispatches route changes to subscribers and remembers the current
// route. Safe for concurrent use.
type Router struct {
	mu        sync.RWMutex
	listeners []Listener
	current   RouteChangedEvent
}

// New returns a Router positioned at DefaultRoute. No event is dispatched
// until Navigate or Dispatch is called.
func New() *Router {
	return &Router{current: RouteChangedEvent{Route: DefaultRoute, Params: map[string]string{}}}
}

// Subscribe registers a listener for subsequent route changes.
func (r *Router) Subscribe(fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Dispatch parses a fragment and notifies all listeners.
func (r *Router) Dispatch(fragment string) RouteChangedEvent {
	ev := Parse(fragment)

	r.mu.Lock()
	r.current = ev
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
	return ev
}

// Navigate formats and dispatches a route, mirroring a hash assignment.
func (r *Router) Navigate(route string, params map[string]string) RouteChangedEvent {
	return r.Dispatch(Format(route, params))
}

// Current returns the last dispatched route.
func (r *Router) Current() RouteChangedEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
