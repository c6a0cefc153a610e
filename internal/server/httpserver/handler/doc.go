// Package handler provides HTTP request handlers for csrfguard-server.
//
// Endpoints:
//
//	GET    /csrf                      issue a token
//	POST   /csrf/verify               report success once RequireCSRF consumed the token
//	GET    /api/admin/unit            list medicine units
//	POST   /api/admin/unit            create a unit
//	PUT    /api/admin/unit            rename a unit
//	DELETE /api/admin/unit?unit_id=   delete a unit
//	GET    /health, /ready            probes
//	GET    /admin/v1/status/summary   guard status
//	POST   /admin/v1/gc/trigger       sweep expired tokens now
//
// Token enforcement is not done here. Mutating routes are wrapped by
// httpserver.RequireCSRF before they reach this package.
package handler
