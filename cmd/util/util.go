package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/client"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/executor/echo"
	"github.com/ValentinKolb/dLedger/rpc/executor/native"
	"github.com/ValentinKolb/dLedger/rpc/transport/http"
	"github.com/ValentinKolb/dLedger/rpc/transport/tcp"
	"github.com/ValentinKolb/dLedger/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (e.g. DLEDGER_ADDRESSES)
	EnvPrefix = "dledger"
)

// ExecutorNames lists the values accepted by the executor flag
var ExecutorNames = []string{"echo", "native", "tcp", "unix", "http"}

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the ledger client flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "cluster-id"
	cmd.PersistentFlags().String(key, "0", WrapString("The id of the ledger cluster (decimal or 0x prefixed hex)"))

	key = "addresses"
	cmd.PersistentFlags().String(key, "3000", WrapString("Comma-separated list of replica addresses (a port, host:port or ip:port). For the unix executor these are socket paths, for the http executor gateway URLs"))

	key = "concurrency"
	cmd.PersistentFlags().Int(key, common.ConcurrencyDefault, WrapString(fmt.Sprintf("Maximum number of requests in flight (1-%d)", common.ConcurrencyMax)))

	key = "acquire-mode"
	cmd.PersistentFlags().String(key, "block", WrapString("What to do when all requests are in flight: block waits for a free slot, fail-fast returns an error"))

	key = "max-payload"
	cmd.PersistentFlags().Int(key, common.MessageBodySizeMax, WrapString("Maximum request payload in bytes"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The write timeout in seconds of the network executors"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous connections per endpoint (tcp and unix executor)"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to try the initial connection to each endpoint"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the socket write buffer (in KB, ignored for http)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the socket read buffer (in KB, ignored for http)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (tcp executor only)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds (tcp executor only)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, 0, WrapString("The linger time in seconds, 0 keeps the system default (tcp executor only)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	clusterID, err := ParseUint128(viper.GetString("cluster-id"))
	if err != nil {
		return nil, fmt.Errorf("invalid cluster id: %w", err)
	}

	acquireMode, err := common.ParseAcquireMode(viper.GetString("acquire-mode"))
	if err != nil {
		return nil, err
	}

	conf := &common.ClientConfig{
		ClusterID:      clusterID,
		Addresses:      viper.GetString("addresses"),
		Concurrency:    viper.GetInt("concurrency"),
		AcquireMode:    acquireMode,
		MaxPayloadSize: viper.GetInt("max-payload"),
		Transport: common.ClientTransportConfig{
			TimeoutSecond:          viper.GetInt("timeout"),
			RetryCount:             viper.GetInt("transport-retries"),
			ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			},
		},
	}

	return conf, nil
}

// GetExecutor creates the executor named by the executor flag
func GetExecutor() (executor.IExecutor, error) {
	return NewExecutor(viper.GetString("executor"))
}

// NewExecutor creates an executor by name
func NewExecutor(name string) (executor.IExecutor, error) {
	switch name {
	case "echo":
		return echo.NewEchoExecutor(), nil
	case "native":
		return native.NewNativeExecutor(), nil
	case "tcp":
		return tcp.NewTCPClientExecutor(), nil
	case "unix":
		return unix.NewUnixClientExecutor(), nil
	case "http":
		return http.NewHttpClientExecutor(), nil
	default:
		return nil, fmt.Errorf("invalid executor %s (expected one of: %s)", name, strings.Join(ExecutorNames, ", "))
	}
}

// NewClient creates a ledger client from the flags. The echo executor does
// not produce ledger results and is rejected.
func NewClient() (*client.Client, error) {
	if viper.GetString("executor") == "echo" {
		return nil, fmt.Errorf("the echo executor only mirrors requests, use it with the perf command")
	}

	config, err := GetClientConfig()
	if err != nil {
		return nil, err
	}

	exec, err := GetExecutor()
	if err != nil {
		return nil, err
	}

	return client.NewClient(*config, exec)
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// ParseUint128 parses a decimal or 0x prefixed hexadecimal 128-bit value
func ParseUint128(value string) (types.Uint128, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return types.HexStringToUint128(value)
	}
	return types.ParseUint128(value)
}

// ParseUint128List parses a list of ids (see ParseUint128)
func ParseUint128List(values []string) ([]types.Uint128, error) {
	ids := make([]types.Uint128, 0, len(values))
	for _, value := range values {
		id, err := ParseUint128(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
