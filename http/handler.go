package http

import (
	"net/http"
	"strings"

	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/counter"
	"github.com/awantoch/visitorcount/utils"
)

var allowedMethods = strings.Join([]string{
	constants.HTTPMethodGET,
	constants.HTTPMethodPOST,
	constants.HTTPMethodOPTIONS,
}, ", ")

type countResponse struct {
	Count int64 `json:"count"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// VisitorCountHandler records a visit on GET or POST and answers CORS
// preflight on OPTIONS without touching the table.
func VisitorCountHandler(svc *counter.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		utils.InfoCtx(ctx, constants.LogFunctionTriggered, "method", r.Method)

		switch r.Method {
		case http.MethodOptions:
			setCORSHeaders(w)
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodGet, http.MethodPost:
		default:
			w.Header().Set(constants.HeaderAllowOrigin, constants.CORSAllowOrigin)
			w.Header().Set(constants.HeaderAllow, allowedMethods)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		count, err := svc.Visit(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		setCORSHeaders(w)
		if err := utils.WriteHTTPJSON(w, http.StatusOK, countResponse{Count: count}); err != nil {
			utils.WarnCtx(ctx, "Failed to write response", "error", err)
		}
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set(constants.HeaderAllowOrigin, constants.CORSAllowOrigin)
	h.Set(constants.HeaderAllowMethods, constants.CORSAllowMethods)
	h.Set(constants.HeaderAllowHeaders, constants.CORSAllowHeaders)
}

// writeError sends the 500 envelope. Only the allow-origin header is set so
// the browser can read the error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	utils.ErrorCtx(r.Context(), "Visitor count request failed", "error", err)
	w.Header().Set(constants.HeaderAllowOrigin, constants.CORSAllowOrigin)
	if werr := utils.WriteHTTPJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   constants.ErrInternalServer,
		Details: err.Error(),
	}); werr != nil {
		utils.WarnCtx(r.Context(), "Failed to write error response", "error", werr)
	}
}

// RequestIDMiddleware tags each request with the caller's X-Request-ID, or
// a fresh one, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(constants.HeaderRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = utils.NewRequestID()
		}
		w.Header().Set(constants.HeaderRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), reqID)))
	})
}
