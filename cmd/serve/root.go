package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/rpc/client"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/gateway"
	"github.com/ValentinKolb/dLedger/rpc/transport"
	"github.com/ValentinKolb/dLedger/rpc/transport/http"
	"github.com/ValentinKolb/dLedger/rpc/transport/tcp"
	"github.com/ValentinKolb/dLedger/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.GatewayConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start a dLedger gateway",
		Long: `Start a gateway that forwards packets from remote clients (tcp, unix or http
executor) to a backend client. The backend is selected with --executor and
configured with the client flags. The configuration can be set via command
line flags or environment variables. The format of the environment variables
is DLEDGER_<flag> (e.g. DLEDGER_WORKERS=32)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// the backend client
	cmdUtil.SetupClientFlags(ServeCmd)

	// add flags
	key := "transport"
	ServeCmd.Flags().String(key, "tcp", cmdUtil.WrapString("The transport remote clients connect with (tcp, unix, http)"))

	key = "endpoint"
	ServeCmd.Flags().String(key, "0.0.0.0:3001", cmdUtil.WrapString("The address on which the gateway will listen (e.g. 0.0.0.0:3001, /tmp/dledger.sock, ...)"))

	key = "admin-endpoint"
	ServeCmd.Flags().String(key, "", cmdUtil.WrapString("Address for /healthz and /metrics (e.g. localhost:9100), disabled if empty"))

	key = "workers"
	ServeCmd.Flags().Int(key, 16, cmdUtil.WrapString("Maximum number of packets processed concurrently per connection (tcp and unix)"))

	key = "buffer-size"
	ServeCmd.Flags().Int(key, 0, cmdUtil.WrapString("Initial size of the pooled read buffers in KB, 0 selects the transport default"))

	key = "write-timeout"
	ServeCmd.Flags().Int(key, 5, cmdUtil.WrapString("Timeout in seconds for writing a reply"))

	key = "listen-write-buffer"
	ServeCmd.Flags().Int(key, 512, cmdUtil.WrapString("The size of the socket write buffer of accepted connections (in KB, ignored for http)"))

	key = "listen-read-buffer"
	ServeCmd.Flags().Int(key, 512, cmdUtil.WrapString("The size of the socket read buffer of accepted connections (in KB, ignored for http)"))

	key = "listen-tcp-nodelay"
	ServeCmd.Flags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY on accepted connections"))

	key = "listen-tcp-keepalive"
	ServeCmd.Flags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds of accepted connections"))

	key = "listen-tcp-linger"
	ServeCmd.Flags().Int(key, 0, cmdUtil.WrapString("The linger time in seconds of accepted connections, 0 keeps the system default"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the gateway configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	backend, err := cmdUtil.GetClientConfig()
	if err != nil {
		return err
	}

	serveCmdConfig.Transport = viper.GetString("transport")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.AdminEndpoint = viper.GetString("admin-endpoint")
	serveCmdConfig.MaxWorkersPerConn = viper.GetInt("workers")
	serveCmdConfig.BufferSize = viper.GetInt("buffer-size") * 1024
	serveCmdConfig.TimeoutSecond = viper.GetInt("write-timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.SocketConf = common.SocketConf{
		WriteBufferSize: viper.GetInt("listen-write-buffer") * 1024,
		ReadBufferSize:  viper.GetInt("listen-read-buffer") * 1024,
	}
	serveCmdConfig.TCPConf = common.TCPConf{
		TCPNoDelay:      viper.GetBool("listen-tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("listen-tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("listen-tcp-linger"),
	}
	serveCmdConfig.Executor = viper.GetString("executor")
	serveCmdConfig.Backend = *backend

	if serveCmdConfig.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	return nil
}

// run starts the gateway and closes it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {

	// Parse the transport
	var t transport.IRPCServerTransport
	switch serveCmdConfig.Transport {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport(serveCmdConfig.BufferSize, serveCmdConfig.MaxWorkersPerConn)
	case "unix":
		t = unix.NewUnixServerTransport(serveCmdConfig.BufferSize, serveCmdConfig.MaxWorkersPerConn)
	default:
		return fmt.Errorf("invalid transport %s", serveCmdConfig.Transport)
	}

	backend, err := newBackend()
	if err != nil {
		return err
	}

	g := gateway.NewGateway(*serveCmdConfig, t, backend)

	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Serve()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case err := <-errCh:
		if closeErr := g.Close(); closeErr != nil {
			gateway.Logger.Warningf("Failed to close the gateway: %v", closeErr)
		}
		return err
	case sig := <-signals:
		gateway.Logger.Infof("Received %s, shutting down", sig)
		if err := g.Close(); err != nil {
			return err
		}
		return <-errCh
	}
}

// newBackend creates the client the gateway forwards to
func newBackend() (gateway.IBackend, error) {
	exec, err := cmdUtil.NewExecutor(serveCmdConfig.Executor)
	if err != nil {
		return nil, err
	}

	// the echo backend replies with the request, remote echo clients expect that
	if serveCmdConfig.Executor == "echo" {
		c, err := client.NewEchoClient(serveCmdConfig.Backend, exec)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := client.NewClient(serveCmdConfig.Backend, exec)
	if err != nil {
		return nil, err
	}
	return c, nil
}
