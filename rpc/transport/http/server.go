package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/transport"
	"github.com/go-chi/chi/v5"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// PacketStatusHeader carries the packet status of a reply
const PacketStatusHeader = "X-Packet-Status"

// shutdownTimeout bounds the graceful shutdown of the server
const shutdownTimeout = 5 * time.Second

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.GatewayConfig

	mu     sync.Mutex // protects server and closed
	server *http.Server
	closed bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.GatewayConfig) error {
	t.config = config

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.server = &http.Server{
		Addr:    config.Endpoint,
		Handler: NewRouter(t.handler, config.LogLevel == "debug"),
	}
	server := t.server
	t.mu.Unlock()

	Logger.Infof("Starting HTTP gateway on %s", config.Endpoint)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (t *httpServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return t.server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Router
// --------------------------------------------------------------------------

// NewRouter returns the chi router serving POST /operations/{code}. The
// request body is the packet payload, the reply carries the packet status in
// the X-Packet-Status header.
func NewRouter(handler transport.ServerHandleFunc, debug bool) http.Handler {
	r := chi.NewRouter()
	if debug {
		r.Use(loggerMiddleware)
	}
	r.Post("/operations/{code}", handleRequest(handler))
	return r
}

// handleRequest handles incoming HTTP requests and writes the reply to the writer
func handleRequest(handler transport.ServerHandleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.ParseUint(chi.URLParam(r, "code"), 10, 8)
		if err != nil {
			http.Error(w, "Invalid operation code", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, common.MessageSizeMax))
		defer r.Body.Close()
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusRequestEntityTooLarge)
			return
		}

		status, reply, err := handler(common.Operation(code), body)
		if err != nil {
			Logger.Errorf("Failed to process %s: %v", common.Operation(code), err)
			http.Error(w, "Backend unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set(PacketStatusHeader, strconv.Itoa(int(status)))
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(reply); err != nil {
			Logger.Errorf("Failed to write reply: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
