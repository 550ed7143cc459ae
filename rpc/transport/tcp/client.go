package tcp

import (
	"net"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientTransportConfig) error {
	return upgradeConnection(conn, config.SocketConf, config.TCPConf)
}

func (c *clientConnector) ParseEndpoints(addresses string) ([]string, error) {
	return common.ParseAddresses(addresses)
}

// --------------------------------------------------------------------------
// Executor Factory Method
// --------------------------------------------------------------------------

// NewTCPClientExecutor creates an executor that sends packets to a gateway over TCP
func NewTCPClientExecutor() executor.IExecutor {
	return base.NewBaseClientExecutor(&clientConnector{})
}
