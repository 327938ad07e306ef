package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/storage/files"
)

type filesApi struct {
	store files.Store
}

// registerFilesAPI serves stored attachments. The routes sit outside /v1 so
// the file_url values stored on submissions resolve as-is.
func registerFilesAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := filesApi{store: deps.FileStore}
	e.GET(files.URLPrefix+"/:name", api.serve, jwt)
}

func (api *filesApi) serve(ctx echo.Context) error {
	data, err := api.store.Open(files.URLPrefix + "/" + ctx.Param("name"))
	if err != nil {
		if errors.Cause(err) == files.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening stored file")
	}
	return ctx.Blob(http.StatusOK, http.DetectContentType(data), data)
}
