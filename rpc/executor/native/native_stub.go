//go:build !tbnative

package native

import (
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
)

// unavailableExecutor is used when the binary was built without libtb_client
type unavailableExecutor struct{}

// NewNativeExecutor returns an executor that fails to initialize, since the
// binary was built without the tbnative tag
func NewNativeExecutor() executor.IExecutor {
	return unavailableExecutor{}
}

func (unavailableExecutor) Init(common.ClientConfig, executor.CompletionFunc) error {
	return common.NewInitializationError(common.InitUnexpected, "native executor not available, rebuild with -tags tbnative")
}

func (unavailableExecutor) Submit(p *packet.Packet) {
	executor.Logger.Errorf("native executor not available, dropping %s", p)
}

func (unavailableExecutor) Deinit() error {
	return nil
}

func (unavailableExecutor) GetName() string {
	return "native"
}
