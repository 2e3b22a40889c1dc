package handler

import (
	"chatwave/backend/internal/chathub"
	"chatwave/backend/internal/storage"
)

// Handler holds the HTTP-facing dependencies: the hub for websocket
// upgrades and the storage service for the REST endpoints.
type Handler struct {
	Hub       *chathub.Hub
	Store     storage.Storage
	jwtSecret []byte
}

func NewHandler(hub *chathub.Hub, store storage.Storage, jwtSecret string) *Handler {
	return &Handler{Hub: hub, Store: store, jwtSecret: []byte(jwtSecret)}
}
