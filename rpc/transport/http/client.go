package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dLedger/lib/util"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
)

const (
	retryBackoffMin = 50 * time.Millisecond
	retryBackoffMax = 2 * time.Second
)

// NewHttpClientExecutor creates an executor that posts packets to a gateway
func NewHttpClientExecutor() executor.IExecutor {
	return &httpClientExecutor{}
}

type httpClientExecutor struct {
	serverURLs   []*url.URL
	client       *http.Client
	counter      atomic.Uint32
	onCompletion executor.CompletionFunc

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex // guards stopped against Submit
	stopped bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see executor.IExecutor)
// --------------------------------------------------------------------------

func (t *httpClientExecutor) Init(config common.ClientConfig, onCompletion executor.CompletionFunc) error {
	if onCompletion == nil {
		return common.NewInitializationError(common.InitUnexpected, "no completion callback")
	}

	endpoints, err := common.SplitAddresses(config.Addresses)
	if err != nil {
		return err
	}

	// Parse each gateway URL
	parsedURLs := make([]*url.URL, len(endpoints))
	for i, endpoint := range endpoints {
		parsedURL, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
		if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
			return common.NewInitializationError(common.InitAddressInvalid, "invalid gateway url %q", endpoint)
		}
		parsedURLs[i] = parsedURL
	}

	connectionsPerEP := config.Transport.ConnectionsPerEndpoint
	if connectionsPerEP < 1 {
		connectionsPerEP = 1
	}

	t.client = &http.Client{
		Timeout: time.Duration(config.Transport.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: connectionsPerEP,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	t.serverURLs = parsedURLs
	t.onCompletion = onCompletion
	t.ctx, t.cancel = context.WithCancel(context.Background())

	executor.Logger.Infof("http executor using %d gateways", len(parsedURLs))
	return nil
}

func (t *httpClientExecutor) Submit(p *packet.Packet) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped || t.client == nil {
		executor.Logger.Debugf("http executor is stopped, dropping %s", p)
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.send(p)
	}()
}

func (t *httpClientExecutor) Deinit() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()

	if t.client != nil {
		t.client.CloseIdleConnections()
	}
	return nil
}

func (t *httpClientExecutor) GetName() string {
	return "http"
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// send posts the packet until a gateway answers or the executor is stopped
func (t *httpClientExecutor) send(p *packet.Packet) {
	backoff := util.NewBackoff(retryBackoffMin, retryBackoffMax)

	for attempt := 1; ; attempt++ {
		// Select the next gateway via round-robin
		idx := t.counter.Add(1) % uint32(len(t.serverURLs))
		requestURL := fmt.Sprintf("%s/operations/%d", t.serverURLs[idx].String(), uint8(p.Operation))

		status, reply, err := t.post(requestURL, p.Data)
		if err == nil {
			// Deinit may have started while the request was running
			if t.ctx.Err() != nil {
				return
			}
			t.onCompletion(p, status, reply)
			return
		}

		if t.ctx.Err() != nil {
			return
		}
		executor.Logger.Debugf("Attempt %d for %s failed: %v", attempt, p, err)

		select {
		case <-t.ctx.Done():
			return
		case <-time.After(backoff.Next()):
		}
	}
}

// post sends one request and returns the packet status and reply body
func (t *httpClientExecutor) post(requestURL string, data []byte) (common.PacketStatus, []byte, error) {
	httpRequest, err := http.NewRequestWithContext(t.ctx, http.MethodPost, requestURL, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/octet-stream")

	httpResponse, err := t.client.Do(httpRequest)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			executor.Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Check if the response status code is OK
	if httpResponse.StatusCode != http.StatusOK {
		return 0, nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	status, err := strconv.ParseUint(httpResponse.Header.Get(PacketStatusHeader), 10, 8)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid %s header: %v", PacketStatusHeader, err)
	}

	reply, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return 0, nil, err
	}
	return common.PacketStatus(status), reply, nil
}
