// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "dispatcher": dispatcher.Healthcheck(),
//	}))
//
// Both handlers answer "OK" as plain text, or a JSON document when the client
// sends Accept: application/json or ?format=json. Readiness checks run in
// parallel under a shared timeout; any failing check turns the response into a
// 503 with the failing check's error in the JSON body.
package health
