// Package dispatch is the boundary between the executor and whatever runs
// an action: in-process handlers (Local), an external runtime worker pool
// reached over socket.io (SocketIO), or a Router choosing between them by
// the task's service name.
package dispatch
