// Package health provides liveness and readiness endpoints.
//
// Readiness runs every registered check concurrently under a timeout
// and answers 503 when any fails or the server is draining:
//
//	h := health.NewHandler(logger)
//	h.AddCheck(health.PingCheck("storage", store))
//	h.RegisterRoutes(engine)
package health
