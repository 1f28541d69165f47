package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"minichat/pkg/api/handlers"
	"minichat/pkg/media"
	"minichat/pkg/store"
)

// Handler builds the chat API router with the injected message log and
// media store.
func Handler(st store.Log, ms *media.Store) http.Handler {
	r := mux.NewRouter()
	handlers.RegisterMessages(r, st)
	handlers.RegisterUploads(r, ms)
	return r
}
