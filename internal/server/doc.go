// Package server exposes a GraphWorker over HTTP using fiber.
//
// Routes:
//
//	GET    /health
//	POST   /api/compile                  dry-run compile, returns the report
//	POST   /api/graphs                   compile and load, returns a handle
//	GET    /api/graphs                   list loaded graphs
//	DELETE /api/graphs/:handle           unload
//	POST   /api/graphs/:handle/execute   run and return the output graph;
//	                                     ?from=<node id> runs that node and
//	                                     its descendants only
//	GET    /api/tasks                    list tasks, optionally ?tag=
//	GET    /api/tasks/:name              describe one task
//	GET    /api/hooks                    list webhook bindings
//	PUT    /api/hooks/:id                bind or rebind a webhook
//	DELETE /api/hooks/:id                unbind a webhook
//
// Hook changes apply to the live registry and, when a HookStore is
// configured, are persisted so they survive a restart.
package server
