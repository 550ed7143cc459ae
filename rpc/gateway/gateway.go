package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("gateway")

// adminShutdownTimeout bounds the graceful shutdown of the admin server
const adminShutdownTimeout = 5 * time.Second

// Gateway exposes a backend client to remote ledger clients
type Gateway struct {
	config    common.GatewayConfig
	transport transport.IRPCServerTransport
	backend   IBackend

	admin     *http.Server
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewGateway creates a gateway that serves backend through the transport
//
// Usage:
//
//	g := gateway.NewGateway(config, tcp.NewTCPServerTransport(0, 16), backend)
//	if err := g.Serve(); err != nil {
//		panic(err)
//	}
func NewGateway(config common.GatewayConfig, transport transport.IRPCServerTransport, backend IBackend) *Gateway {
	Logger.Infof("Created gateway")
	Logger.Infof(config.String())

	return &Gateway{
		config:    config,
		transport: transport,
		backend:   backend,
	}
}

// Serve registers the packet handler, starts the admin server (if configured)
// and blocks in the transport's Listen until Close is called
func (g *Gateway) Serve() error {
	g.transport.RegisterHandler(g.handle)

	if g.config.AdminEndpoint != "" {
		g.admin = &http.Server{
			Addr:    g.config.AdminEndpoint,
			Handler: NewAdminRouter(g.Healthy),
		}
		go func() {
			Logger.Infof("Starting admin server on %s", g.config.AdminEndpoint)
			if err := g.admin.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				Logger.Errorf("Admin server failed: %v", err)
			}
		}()
	}

	return g.transport.Listen(g.config)
}

// Healthy reports whether the gateway accepts packets
func (g *Gateway) Healthy() bool {
	return !g.closing.Load()
}

// Close stops the backend first, so packets still being processed fail and
// their connections are dropped, then stops the transport and the admin server
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		g.closing.Store(true)

		var errs []error
		if err := g.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("backend: %w", err))
		}
		if err := g.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("transport: %w", err))
		}
		if g.admin != nil {
			ctx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
			if err := g.admin.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("admin: %w", err))
			}
			cancel()
		}

		g.closeErr = errors.Join(errs...)
		Logger.Infof("Gateway closed")
	})
	return g.closeErr
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handle forwards one packet to the backend. Packet errors become the reply
// status; every other error is returned so the transport drops the connection.
func (g *Gateway) handle(op common.Operation, payload []byte) (common.PacketStatus, []byte, error) {
	reply, err := g.backend.Submit(op, payload)

	var packetErr *common.PacketError
	switch {
	case err == nil:
		g.count(op, common.PacketOk.String())
		return common.PacketOk, reply, nil
	case errors.As(err, &packetErr):
		g.count(op, packetErr.Status.String())
		return packetErr.Status, nil, nil
	case errors.Is(err, common.ErrEmptyBatch):
		g.count(op, common.PacketInvalidDataSize.String())
		return common.PacketInvalidDataSize, nil, nil
	default:
		g.count(op, "error")
		return 0, nil, fmt.Errorf("backend failed: %w", err)
	}
}

func (g *Gateway) count(op common.Operation, status string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`dledger_gateway_packets_total{transport=%q,operation=%q,status=%q}`,
		g.config.Transport, op, status)).Inc()
}
