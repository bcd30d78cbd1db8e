// Package http implements the dashboard HTTP handlers. Handlers stay thin:
// they parse query parameters, call the dashboard service and render JSON.
//
// # Routes
//
//	GET /health                 liveness and loaded data
//	GET /metrics                Prometheus exposition
//	GET /api/years              available years
//	GET /api/indicators         ?year=       headline totals of one year
//	GET /api/severity-by-year   yearly totals
//	GET /api/density            ?year=&cell= coordinate heatmap cells
//	GET /api/rankings/roads     ?year=&limit= roads by summed severity
//
// An omitted year selects the latest year present in the data.
//
// # Error Handling
//
// Service errors are mapped onto API errors and written as RFC 7807 problem
// details:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "code": "NOT_FOUND",
//	    "detail": "year not found: 1999",
//	    "trace_id": "4b1c..."
//	}
//
// Invalid parameters answer 400, unknown years 404 and an empty table 503.
package http
