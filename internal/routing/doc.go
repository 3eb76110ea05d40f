// Package routing provides the route table of the server: named routes
// kept in registration order, path template compilation, CEL match
// conditions, first-match request matching, and URL generation.
//
// A Route is described by a path template such as "/node/{node}",
// allowed methods, defaults (the "_controller" default names the
// controller that handles it), requirements (regular expressions for
// placeholders plus the special "_format" and "_access" keys), an
// optional CEL condition, and parameter conversion definitions.
//
//	routes := routing.NewCollection()
//	routes.Add("entity.node.canonical", routing.NewRoute("/node/{node}"))
//
//	router, err := routing.NewRouter(routes)
//	if err != nil {
//	    return err
//	}
//	result, err := router.Match(&routing.MatchRequest{Method: "GET", Path: "/node/1", Format: "html"})
//
// Order matters: the first route that matches wins. Route filters may
// reorder a collection per request and hand it to MatchCollection.
package routing
