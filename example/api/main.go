// Command api demonstrates the full orchestration pipeline against an
// in-process HTTP server that misbehaves on purpose: the first call is
// rejected with 403 until the token is refreshed, and the retried call
// fails once with 500 before succeeding.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/nivalis-labs/conduit-go/conduit"
)

type Order struct {
	ID       int    `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

func newFlakyServer() *httptest.Server {
	var failures atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"fresh-token"}`)
	})
	mux.HandleFunc("GET /orders/42", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":"token expired"}`)
			return
		}
		if failures.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"transient"}`)
			return
		}
		fmt.Fprint(w, `{"id":42,"amount":1250,"currency":"EUR"}`)
	})
	return httptest.NewServer(mux)
}

func main() {
	ctx := context.Background()

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("Failed to create trace exporter: %v", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	defer tp.Shutdown(ctx)
	otel.SetTracerProvider(tp)

	server := newFlakyServer()
	defer server.Close()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	client := conduit.New(
		conduit.WithServiceName("example-api"),
		conduit.WithLogger(logger),
		conduit.WithDebug(true),
	)

	// The token source starts stale; the 403 triggers one nested refresh
	// call and the retried request goes out with the fresh token.
	source := conduit.NewTokenSource("stale-token")
	refreshReq := conduit.NewRequest("RefreshToken", server.URL+"/token").
		Method(conduit.MethodPost)

	req := conduit.NewRequest("GetOrder", server.URL+"/orders/42").
		Bearer(source.Token).
		Decisions(
			conduit.NewRefreshTokenDecision(refreshReq, source),
			conduit.NewRetryDecision(2),
			conduit.ValidateStatus2xx(),
			conduit.NormalizeEmptyBody(),
			conduit.ParseInto[Order](),
		)

	order, err := conduit.Send[Order](ctx, client, req)
	if err != nil {
		log.Fatalf("Send failed: %v", err)
	}

	fmt.Printf("✅ Order resolved after refresh and retry: %+v\n", order)
}
