package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// pathUUID binds a uuid path parameter the way generated oapi-codegen
// servers do.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return id, nil
}

// tripIDParam binds {tripID}; on failure it writes a 400 and returns false.
func tripIDParam(w http.ResponseWriter, r *http.Request) (domain.TripID, bool) {
	id, err := pathUUID(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return domain.TripID{}, false
	}
	return domain.TripID(id), true
}

// queryInt binds an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

// decodeBody decodes the JSON request body into dst. A body cut short by the
// size limit is returned as *http.MaxBytesError so writeError can map it.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	default:
		return fmt.Errorf("can't decode JSON body: %w", err)
	}
}

// readBody decodes dst and answers the request itself when that fails.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodeBody(r, dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, r, err)
		return false
	}
	badRequest(w, err.Error())
	return false
}
