package unix

import (
	"net"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("unix", endpoint)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientTransportConfig) error {
	return upgradeConnection(conn, config.SocketConf)
}

// ParseEndpoints accepts a comma separated list of socket paths
func (c *clientConnector) ParseEndpoints(addresses string) ([]string, error) {
	return common.SplitAddresses(addresses)
}

// --------------------------------------------------------------------------
// Executor Factory Method
// --------------------------------------------------------------------------

// NewUnixClientExecutor creates an executor that sends packets to a gateway
// over Unix domain sockets
func NewUnixClientExecutor() executor.IExecutor {
	return base.NewBaseClientExecutor(&clientConnector{})
}
