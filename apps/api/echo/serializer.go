package echoapi

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// sonicSerializer is the echo.JSONSerializer of the API.
type sonicSerializer struct{}

var _ echo.JSONSerializer = sonicSerializer{}

func (sonicSerializer) Serialize(ctx echo.Context, i interface{}, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(ctx.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(ctx echo.Context, i interface{}) error {
	if err := sonic.ConfigStd.NewDecoder(ctx.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
