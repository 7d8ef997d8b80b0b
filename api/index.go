package handler

import (
	"net/http"

	counterhttp "github.com/awantoch/visitorcount/http"
)

// Handler is the entry point for Vercel serverless functions.
func Handler(w http.ResponseWriter, r *http.Request) {
	counterhttp.ServerlessHandler(w, r)
}
