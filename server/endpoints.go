package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maxvdec/hana/internal/cache"
	"github.com/maxvdec/hana/internal/codegen/opengl"
	"github.com/maxvdec/hana/internal/parser"
	"github.com/maxvdec/hana/internal/report"
	"github.com/maxvdec/hana/server/result"
	"github.com/maxvdec/hana/server/serr"
)

// EndpointFunc is the signature every compile-service route handler has,
// matching the teacher's server/endpoints.go EndpointFunc/Endpoint split:
// handlers return a result.Result instead of writing to the
// ResponseWriter directly, and a single wrapper writes and logs the
// response. Panic recovery is done by the router's middle.DontPanic
// middleware, not by this wrapper.
type EndpointFunc func(req *http.Request) result.Result

// Endpoint adapts an EndpointFunc into an http.HandlerFunc, logging the
// outcome of every request.
func Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		res := ep(req)
		res.WriteResponse(w)
		res.Log(req, time.Since(start))
	}
}

func (a *API) epHealth(req *http.Request) result.Result {
	return result.OK(map[string]string{"status": "ok"})
}

func (a *API) epCompile(req *http.Request) result.Result {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		badErr := serr.New("could not read request body", err)
		return result.BadRequest(serr.ErrBadArgument.Error(), badErr.Error())
	}

	var creq CompileRequest
	if err := json.Unmarshal(body, &creq); err != nil {
		unmarshalErr := serr.New("could not parse request body", serr.ErrBodyUnmarshal, err)
		return result.BadRequest(serr.ErrBodyUnmarshal.Error(), unmarshalErr.Error())
	}

	if creq.API != "opengl" {
		apiErr := serr.New(fmt.Sprintf("api=%q", creq.API), serr.ErrUnsupportedAPI)
		return result.BadRequest(serr.ErrUnsupportedAPI.Error(), apiErr.Error())
	}

	key := cache.Key([]byte(creq.Source), creq.API)
	if stages, err := a.cache.Get(key); err == nil {
		return result.OK(CompileResponse{Stages: stages}, "compile cache hit")
	}

	nodes, err := parser.Parse(creq.Source)
	if err != nil {
		return result.BadRequest(diagnosticMessage(err), "parse error: %s", err.Error())
	}

	stageOutputs, err := opengl.Generate(nodes)
	if err != nil {
		return result.BadRequest(diagnosticMessage(err), "codegen error: %s", err.Error())
	}

	stages := make(map[string]string, len(stageOutputs))
	for stage, text := range stageOutputs {
		stages[stage.String()] = text
	}

	if err := a.cache.Put(key, stages); err != nil {
		return result.InternalServerError("could not write compile cache: %s", err.Error())
	}

	sum := sha256.Sum256([]byte(creq.Source))
	if _, err := a.cache.LogCompile(hex.EncodeToString(sum[:]), creq.API, len(stages)); err != nil {
		return result.InternalServerError("could not log compile history: %s", err.Error())
	}

	return result.OK(CompileResponse{Stages: stages}, "compiled %d stage(s)", len(stages))
}

func (a *API) epHistory(req *http.Request) result.Result {
	entries, err := a.cache.History(50)
	if err != nil {
		return result.InternalServerError("could not read compile history: %s", err.Error())
	}

	models := make([]HistoryEntryModel, len(entries))
	for i, e := range entries {
		models[i] = HistoryEntryModel{
			ID:         e.ID,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
			SourceHash: e.SourceHash,
			API:        e.API,
			StageCount: e.StageCount,
		}
	}
	return result.OK(HistoryResponse{Entries: models})
}

// diagnosticMessage extracts a user-facing message from one of report's
// fatal error kinds, falling back to err.Error() for anything else.
func diagnosticMessage(err error) string {
	switch e := err.(type) {
	case *report.TokenizationError:
		return e.Error()
	case *report.ParseError:
		return e.Error()
	case *report.InternalError:
		return e.Error()
	default:
		return fmt.Sprintf("%s", err)
	}
}
