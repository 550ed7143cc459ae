//go:build tbnative

package native

/*
#cgo LDFLAGS: -ltb_client
#include <stdlib.h>
#include <string.h>
#include "tb_client.h"
*/
import "C"

import (
	"encoding/binary"
	"runtime/cgo"
	"sync"
	"time"
	"unsafe"

	"github.com/ValentinKolb/dLedger/lib/util"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	acquireOk                     = 0
	acquireConcurrencyMaxExceeded = 1
	acquireShutdown               = 2
)

// inflight couples a native packet with the client packet and the C copy of its payload
type inflight struct {
	packet *packet.Packet
	data   unsafe.Pointer
}

// nativeExecutor drives the ledger's client library through cgo
type nativeExecutor struct {
	client       C.tb_client_t
	handle       cgo.Handle
	onCompletion executor.CompletionFunc
	inflight     *xsync.MapOf[uintptr, inflight]

	mu      sync.RWMutex // guards stopped against Submit
	stopped bool
}

// --------------------------------------------------------------------------
// Executor Factory Method
// --------------------------------------------------------------------------

// NewNativeExecutor creates an executor backed by libtb_client
func NewNativeExecutor() executor.IExecutor {
	return &nativeExecutor{
		inflight: xsync.NewMapOf[uintptr, inflight](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see executor.IExecutor)
// --------------------------------------------------------------------------

func (e *nativeExecutor) Init(config common.ClientConfig, onCompletion executor.CompletionFunc) error {
	if onCompletion == nil {
		return common.NewInitializationError(common.InitUnexpected, "no completion callback")
	}
	e.onCompletion = onCompletion
	e.handle = cgo.NewHandle(e)

	address := C.CString(config.Addresses)
	defer C.free(unsafe.Pointer(address))

	id := config.ClusterID.Bytes()
	status := C.dledger_client_init(
		&e.client,
		C.uint64_t(binary.LittleEndian.Uint64(id[:8])),
		C.uint64_t(binary.LittleEndian.Uint64(id[8:])),
		address,
		C.uint32_t(len(config.Addresses)),
		C.uint32_t(config.Concurrency),
		C.uintptr_t(e.handle),
	)

	if status != 0 {
		e.handle.Delete()
		return &common.InitializationError{Status: common.InitializationStatus(status)}
	}

	executor.Logger.Infof("native client initialized for cluster %s (%s)", config.ClusterID, config.Addresses)
	return nil
}

func (e *nativeExecutor) Submit(p *packet.Packet) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		executor.Logger.Debugf("native executor is stopped, dropping %s", p)
		return
	}

	native, ok := e.acquire()
	if !ok {
		executor.Logger.Warningf("native client shut down, failing %s", p)
		e.onCompletion(p, common.PacketClientShutdown, nil)
		return
	}

	// the library keeps the pointer until completion, so the payload lives in C memory
	var data unsafe.Pointer
	if len(p.Data) > 0 {
		data = C.malloc(C.size_t(len(p.Data)))
		C.memcpy(data, unsafe.Pointer(&p.Data[0]), C.size_t(len(p.Data)))
	}

	native.operation = C.uint8_t(p.Operation)
	native.status = 0
	native.data_size = C.uint32_t(len(p.Data))
	native.data = data
	native.user_data = nil

	e.inflight.Store(uintptr(unsafe.Pointer(native)), inflight{packet: p, data: data})
	C.tb_client_submit(e.client, native)
}

func (e *nativeExecutor) Deinit() error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	e.mu.Unlock()

	// returns after the library thread has stopped, no callback runs afterwards
	C.tb_client_deinit(e.client)

	e.inflight.Range(func(key uintptr, value inflight) bool {
		if value.data != nil {
			C.free(value.data)
		}
		e.inflight.Delete(key)
		return true
	})
	e.handle.Delete()

	executor.Logger.Infof("native client deinitialized")
	return nil
}

func (e *nativeExecutor) GetName() string {
	return "native"
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acquire gets a native packet. The native pool has the same size as the
// client pool, so exhaustion only lasts until a completion releases a packet.
func (e *nativeExecutor) acquire() (*C.tb_packet_t, bool) {
	backoff := util.NewBackoff(time.Microsecond, 10*time.Millisecond)
	for {
		var native *C.tb_packet_t
		switch C.tb_client_acquire_packet(e.client, &native) {
		case acquireOk:
			return native, true
		case acquireConcurrencyMaxExceeded:
			time.Sleep(backoff.Next())
		default:
			return nil, false
		}
	}
}

// complete runs on the library thread for every finished native packet
func (e *nativeExecutor) complete(native *C.tb_packet_t, result *C.uint8_t, size C.uint32_t) {
	entry, ok := e.inflight.LoadAndDelete(uintptr(unsafe.Pointer(native)))
	if !ok {
		executor.Logger.Errorf("completion for unknown native packet %p", native)
		return
	}

	status := common.PacketStatus(native.status)

	var reply []byte
	if size > 0 && result != nil {
		reply = unsafe.Slice((*byte)(unsafe.Pointer(result)), int(size))
	}

	if entry.data != nil {
		C.free(entry.data)
	}
	native.data = nil
	C.tb_client_release_packet(e.client, native)

	e.onCompletion(entry.packet, status, reply)
}

//export nativeOnCompletion
func nativeOnCompletion(ctx C.uintptr_t, client C.tb_client_t, native *C.tb_packet_t, result *C.uint8_t, size C.uint32_t) {
	e := cgo.Handle(ctx).Value().(*nativeExecutor)
	e.complete(native, result, size)
}
