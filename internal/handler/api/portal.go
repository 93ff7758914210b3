package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"DevSight/internal/domain/models"
	"DevSight/internal/usecase"
	xhttp "DevSight/pkg/http"
	xlogger "DevSight/pkg/logger"
)

const (
	headerAcceptCH          = "Accept-CH"
	headerCriticalCH        = "Critical-CH"
	headerPermissionsPolicy = "Permissions-Policy"

	hintModel           = "Sec-CH-UA-Model"
	hintPlatform        = "Sec-CH-UA-Platform"
	hintPlatformVersion = "Sec-CH-UA-Platform-Version"
	hintMobile          = "Sec-CH-UA-Mobile"
	hintFullVersionList = "Sec-CH-UA-Full-Version-List"
)

var requestedHints = strings.Join([]string{
	hintModel, hintPlatform, hintPlatformVersion, hintMobile, hintFullVersionList,
}, ", ")

const loginPage = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>WiFi Login</title>
</head>
<body>
<main>
<h1>WiFi Login</h1>
<form method="post" action="/login">
<label>Username <input name="username" required maxlength="128" autocomplete="username"></label>
<label>Password <input name="password" type="password" autocomplete="current-password"></label>
<button type="submit">Connect</button>
</form>
</main>
</body>
</html>`

// ClientHints echoes the hint headers the browser sent.
type ClientHints struct {
	Model           string `json:"model"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	Mobile          string `json:"mobile"`
}

type LoginResponse struct {
	Username    string                `json:"username"`
	Result      models.IdentifyResult `json:"result"`
	Record      models.LoginRecord    `json:"record"`
	ClientHints ClientHints           `json:"client_hints"`
}

// PortalHandler serves the captive-portal login.
type PortalHandler struct {
	logger     *xlogger.Logger
	identifier *usecase.Identifier
	recorder   *usecase.LoginRecorder
}

func NewPortalHandler(logger *xlogger.Logger, identifier *usecase.Identifier, recorder *usecase.LoginRecorder) *PortalHandler {
	return &PortalHandler{logger: logger, identifier: identifier, recorder: recorder}
}

func (h *PortalHandler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/login")
}

// LoginForm serves the form and asks the browser for high-entropy client hints
// on the next request.
func (h *PortalHandler) LoginForm(c echo.Context) error {
	hdr := c.Response().Header()
	hdr.Set(headerAcceptCH, requestedHints)
	hdr.Set(headerCriticalCH, hintModel)
	hdr.Set(headerPermissionsPolicy, "ch-ua-model=(self), ch-ua-platform=(self)")
	return c.HTML(http.StatusOK, loginPage)
}

func (h *PortalHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ua := c.Request().UserAgent()
	rawHint := strings.TrimSpace(c.Request().Header.Get(hintModel))
	hints := ClientHints{
		Model:           xhttp.HeaderValue(c, hintModel),
		Platform:        xhttp.HeaderValue(c, hintPlatform),
		PlatformVersion: xhttp.HeaderValue(c, hintPlatformVersion),
		Mobile:          xhttp.HeaderValue(c, hintMobile),
	}

	ctx := c.Request().Context()
	res := h.identifier.Identify(ctx, usecase.IdentifyInput{UserAgent: ua, ModelHint: rawHint})
	rec := h.identifier.BuildRecord(res, req.Username, c.RealIP(), rawHint)

	if err := h.recorder.Record(ctx, &rec); err != nil {
		h.logger.Error("record login failed", xlogger.String("username", req.Username), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not record login").WithError(err))
	}

	return xhttp.SuccessResponse(c, &LoginResponse{
		Username:    req.Username,
		Result:      res,
		Record:      rec,
		ClientHints: hints,
	})
}
