package workspace

// Router maps routes to live views. Navigation is flat: entering a
// route replaces the current view outright, discarding its state.
type Router struct {
	factory ViewFactory
	session *Session

	route Route
	view  View
}

// NewRouter creates a router that builds views with factory.
func NewRouter(session *Session, factory ViewFactory) *Router {
	return &Router{factory: factory, session: session}
}

// Go builds a fresh view for the route and makes it current. The
// previous view, if any, is dropped.
func (r *Router) Go(route Route) View {
	r.route = route
	r.view = r.factory(route, r.session)
	return r.view
}

// Current returns the active view, or nil before the first Go.
func (r *Router) Current() View {
	return r.view
}

// CurrentRoute returns the active route.
func (r *Router) CurrentRoute() Route {
	return r.route
}

// Replace swaps the current view model after an Update cycle.
func (r *Router) Replace(view View) {
	r.view = view
}
