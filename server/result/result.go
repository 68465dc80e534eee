// Package result contains the results used to write out hana serve's API
// responses, adapted from the teacher's server/result package: a single
// Result type that knows how to marshal itself to JSON and log its own
// outcome, rather than repeating that bookkeeping at every handler.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// ErrorResponse is the JSON body of any non-2xx Result.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// OK returns a Result containing an HTTP-200 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one)
// that is not displayed to the caller.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	return response(http.StatusOK, respObj, fmtMsg("OK", internalMsg))
}

// BadRequest returns a Result containing an HTTP-400.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return errResult(http.StatusBadRequest, userMsg, fmtMsg("bad request", internalMsg))
}

// Unauthorized returns a Result containing an HTTP-401 along with the
// WWW-Authenticate header a Bearer-token API is expected to set.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return errResult(http.StatusUnauthorized, userMsg, fmtMsg("unauthorized", internalMsg)).
		WithHeader("WWW-Authenticate", `Bearer realm="hana compile service"`)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	return errResult(http.StatusNotFound, "The requested resource was not found", fmtMsg("not found", internalMsg))
}

// MethodNotAllowed returns a Result containing an HTTP-405.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return errResult(http.StatusMethodNotAllowed, userMsg, fmtMsg("method not allowed", internalMsg))
}

// InternalServerError returns a Result containing an HTTP-500. If
// internalMsg is provided the first argument must be a string format and
// any subsequent args are passed to Sprintf.
func InternalServerError(internalMsg ...interface{}) Result {
	return errResult(http.StatusInternalServerError, "An internal server error occurred", fmtMsg("internal server error", internalMsg))
}

func fmtMsg(def string, args []interface{}) string {
	if len(args) == 0 {
		return def
	}
	format, ok := args[0].(string)
	if !ok {
		return def
	}
	return fmt.Sprintf(format, args[1:]...)
}

func response(status int, respObj interface{}, internalMsg string) Result {
	return Result{IsJSON: true, Status: status, InternalMsg: internalMsg, resp: respObj}
}

func errResult(status int, userMsg, internalMsg string) Result {
	return Result{
		IsErr: true, IsJSON: true, Status: status, InternalMsg: internalMsg,
		resp: ErrorResponse{Error: userMsg, Status: status},
	}
}

// Result is an HTTP response waiting to be written: a status code, a JSON
// (or plain-text) body, and an internal message used only for logging.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string
}

// WithHeader returns a copy of r with an additional response header set.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return cp
}

// WriteResponse marshals and writes r to w. It panics if r was never
// populated via one of the constructor functions — a programmer error, not
// a request-time error.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	var body []byte
	if r.IsJSON && r.Status != http.StatusNoContent {
		var err error
		body, err = json.Marshal(r.resp)
		if err != nil {
			InternalServerError("could not marshal JSON response: %s", err.Error()).WriteResponse(w)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}
	w.WriteHeader(r.Status)
	if r.Status != http.StatusNoContent {
		w.Write(body)
	}
}

// Log emits r's outcome at the appropriate level, mirroring the teacher's
// logHttpResponse but through github.com/charmbracelet/log instead of the
// standard library logger (SPEC_FULL.md §2.2).
func (r Result) Log(req *http.Request, elapsed time.Duration) {
	fields := []interface{}{
		"method", req.Method,
		"path", req.URL.Path,
		"status", r.Status,
		"duration", elapsed.String(),
		"msg", r.InternalMsg,
	}
	if r.IsErr {
		log.Error("compile service request", fields...)
	} else {
		log.Info("compile service request", fields...)
	}
}
