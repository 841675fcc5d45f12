/*
Package observability binds prometheus collectors and structured logging to
the capture controller's lifecycle hooks.

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LoggingHooks(logger))
*/
package observability
