package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aziwar/dr-islam-website-sub002/internal/app/bootstrap"
	appconfig "github.com/aziwar/dr-islam-website-sub002/internal/config"
	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting contact relay lambda", "env", cfg.Env)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		panic(err)
	}

	handler, err := bootstrap.BuildHandler(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build handler", "error", err)
		panic(err)
	}

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, handler, evt)
	})
}

// handle translates an API Gateway v2 event into an http.Request, serves it
// through the regular router, and translates the captured response back.
func handle(ctx context.Context, handler http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}

	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	url := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		url += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = ip + ":0"
		if req.Header.Get("X-Forwarded-For") == "" {
			req.Header.Set("X-Forwarded-For", ip)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: rec.Code,
		Body:       rec.Body.String(),
		Headers:    map[string]string{},
	}
	for k, vals := range rec.Header() {
		if len(vals) > 0 {
			out.Headers[strings.ToLower(k)] = vals[0]
		}
	}
	return out, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}
