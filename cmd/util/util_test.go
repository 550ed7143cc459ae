package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Line exceeds %d characters: %q", Wrap, line)
		}
	}
	if got := WrapString("  short   text "); got != "short text" {
		t.Errorf("Expected %q, got %q", "short text", got)
	}
}

func TestParseUint128(t *testing.T) {
	tests := []struct {
		input   string
		want    types.Uint128
		wantErr bool
	}{
		{"0", types.Uint128{}, false},
		{"42", types.ToUint128(42), false},
		{"0x2a", types.ToUint128(42), false},
		{" 0X2A ", types.ToUint128(42), false},
		{"-1", types.Uint128{}, true},
		{"abc", types.Uint128{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUint128(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, err := ParseUint128List([]string{"1", "x"}); err == nil {
		t.Errorf("Expected an error for an invalid list entry")
	}
}

func TestNewExecutor(t *testing.T) {
	for _, name := range ExecutorNames {
		exec, err := NewExecutor(name)
		if err != nil {
			t.Fatalf("NewExecutor(%s) failed: %v", name, err)
		}
		if exec.GetName() != name {
			t.Errorf("Expected executor %s, got %s", name, exec.GetName())
		}
	}

	if _, err := NewExecutor("carrier-pigeon"); err == nil {
		t.Errorf("Expected an error for an unknown executor")
	}
}

func TestGetClientConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	SetupClientFlags(cmd)
	if err := cmd.PersistentFlags().Parse([]string{
		"--cluster-id=0x10",
		"--addresses=3000,3001",
		"--acquire-mode=fail-fast",
		"--transport-write-buffer=4",
	}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	viper.Reset()
	defer viper.Reset()
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		t.Fatalf("BindPFlags failed: %v", err)
	}

	config, err := GetClientConfig()
	if err != nil {
		t.Fatalf("GetClientConfig failed: %v", err)
	}
	if config.ClusterID != types.ToUint128(16) {
		t.Errorf("Expected cluster id 16, got %s", config.ClusterID)
	}
	if config.Addresses != "3000,3001" {
		t.Errorf("Expected addresses 3000,3001, got %s", config.Addresses)
	}
	if config.AcquireMode != common.AcquireModeFailFast {
		t.Errorf("Expected fail-fast, got %s", config.AcquireMode)
	}
	if config.Concurrency != common.ConcurrencyDefault {
		t.Errorf("Expected default concurrency, got %d", config.Concurrency)
	}
	if config.Transport.WriteBufferSize != 4*1024 {
		t.Errorf("Expected a 4 KB write buffer, got %d", config.Transport.WriteBufferSize)
	}

	viper.Set("acquire-mode", "sometimes")
	if _, err := GetClientConfig(); err == nil {
		t.Errorf("Expected an error for an invalid acquire mode")
	}
}
