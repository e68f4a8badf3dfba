// Package websocket streams node run lifecycle events to canvas clients.
package websocket
