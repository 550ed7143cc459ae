package perf

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/client"
	"github.com/ValentinKolb/dLedger/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

var (
	// PerfCmd runs batched load against a ledger (or the echo executor)
	PerfCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for ledger clusters",
		Long: `Runs a series of benchmarks with batched requests. Every benchmark operation
submits one batch, so events/sec is ops/sec times the batch size. With
--executor=echo nothing leaves the process and the client runtime itself is
measured.`,
		PreRunE: processPerfConfig,
		RunE:    run,
	}
	perfNumThreads = 10
	perfBatchSize  = 100
	perfAccounts   = 1000
	perfRate       = 0.0
	perfSkip       = make([]string, 0)
)

// benchmarks in the order they run
var benchmarks = []string{
	"create-accounts",
	"create-transfers",
	"lookup-accounts",
	"lookup-transfers",
	"account-transfers",
	"mixed",
}

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common client flags
	util.SetupClientFlags(PerfCmd)

	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. mixed,lookup-transfers)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per CPU submitting batches"))
	key = "batch-size"
	PerfCmd.Flags().Int(key, 100, util.WrapString("Number of events per batch"))
	key = "accounts"
	PerfCmd.Flags().Int(key, 1000, util.WrapString("How many accounts (and transfers) to create before the lookup benchmarks"))
	key = "rate"
	PerfCmd.Flags().Float64(key, 0, util.WrapString("Maximum batches per second across all goroutines, 0 is unlimited"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfBatchSize = viper.GetInt("batch-size")
	perfAccounts = viper.GetInt("accounts")
	perfRate = viper.GetFloat64("rate")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfBatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}
	if perfAccounts < 2 {
		return fmt.Errorf("at least 2 accounts are needed for transfers")
	}
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for ledger clusters")

	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}

	r, err := newRunner(*config)
	if err != nil {
		return err
	}
	defer r.close()

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Executor: %s\n", viper.GetString("executor"))
	fmt.Printf("Threads: %d, Batch Size: %d, Rate: %s\n", perfNumThreads, perfBatchSize, rateString())
	fmt.Println()

	fmt.Printf("seeding %d accounts and transfers...\n", perfAccounts)
	if err := r.seed(); err != nil {
		return fmt.Errorf("failed to seed the ledger: %w", err)
	}

	fmt.Println("starting tests...")

	results := make(map[string]testing.BenchmarkResult)
	for _, name := range benchmarks {
		result := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(name) {
				return
			}

			op := r.operation(name)

			b.SetParallelism(perfNumThreads)
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				counter := 0
				for pb.Next() {
					r.do(name, func() error { return op(counter) })
					counter++
				}
			})
		})

		results[name] = result
		r.printResult(name, result)
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := r.writeResultsToCSV(csvPath, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Runner
// --------------------------------------------------------------------------

// runner submits batches through either a ledger client or an echo client
type runner struct {
	ledger  *client.Client
	echo    *client.EchoClient
	limiter *rate.Limiter
	timers  gometrics.Registry

	accounts  []types.Uint128
	transfers []types.Uint128
	next      atomic.Uint64
}

func newRunner(config common.ClientConfig) (*runner, error) {
	exec, err := util.GetExecutor()
	if err != nil {
		return nil, err
	}

	r := &runner{
		limiter: rate.NewLimiter(rate.Inf, 0),
		timers:  gometrics.NewRegistry(),
	}
	if perfRate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(perfRate), int(math.Max(1, perfRate/10)))
	}

	if exec.GetName() == "echo" {
		r.echo, err = client.NewEchoClient(config, exec)
	} else {
		r.ledger, err = client.NewClient(config, exec)
	}
	return r, err
}

func (r *runner) close() {
	var err error
	if r.echo != nil {
		err = r.echo.Close()
	} else {
		err = r.ledger.Close()
	}
	if err != nil {
		log.Printf("error closing client: %v\n", err)
	}
}

// do waits for the rate limiter and times a single batch
func (r *runner) do(name string, fn func() error) {
	if err := r.limiter.Wait(context.Background()); err != nil {
		log.Printf("(%s) - rate limiter: %v\n", name, err)
		return
	}

	start := time.Now()
	err := fn()
	gometrics.GetOrRegisterTimer(name, r.timers).UpdateSince(start)
	if err != nil {
		gometrics.GetOrRegisterCounter(name+".errors", r.timers).Inc(1)
		log.Printf("(%s) - %v\n", name, err)
	}
}

// seed creates the accounts and transfers the lookup benchmarks read
func (r *runner) seed() error {
	accounts := make([]types.Account, perfAccounts)
	for i := range accounts {
		accounts[i] = newAccount()
		r.accounts = append(r.accounts, accounts[i].ID)
	}
	for start := 0; start < len(accounts); start += perfBatchSize {
		end := min(start+perfBatchSize, len(accounts))
		if err := r.createAccounts(accounts[start:end]); err != nil {
			return err
		}
	}

	transfers := make([]types.Transfer, perfAccounts)
	for i := range transfers {
		transfers[i] = r.newTransfer(i)
		r.transfers = append(r.transfers, transfers[i].ID)
	}
	for start := 0; start < len(transfers); start += perfBatchSize {
		end := min(start+perfBatchSize, len(transfers))
		if err := r.createTransfers(transfers[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// operation returns the batch submitted by a benchmark for a counter value
func (r *runner) operation(name string) func(counter int) error {
	switch name {
	case "create-accounts":
		return func(int) error {
			batch := make([]types.Account, perfBatchSize)
			for i := range batch {
				batch[i] = newAccount()
			}
			return r.createAccounts(batch)
		}
	case "create-transfers":
		return func(counter int) error {
			batch := make([]types.Transfer, perfBatchSize)
			for i := range batch {
				batch[i] = r.newTransfer(counter*perfBatchSize + i)
			}
			return r.createTransfers(batch)
		}
	case "lookup-accounts":
		return func(counter int) error {
			return r.lookupAccounts(window(r.accounts, counter))
		}
	case "lookup-transfers":
		return func(counter int) error {
			return r.lookupTransfers(window(r.transfers, counter))
		}
	case "account-transfers":
		return func(counter int) error {
			return r.accountTransfers(r.accounts[counter%len(r.accounts)])
		}
	default:
		mixed := []func(int) error{
			r.operation("create-transfers"),
			r.operation("lookup-accounts"),
			r.operation("lookup-transfers"),
			r.operation("account-transfers"),
		}
		return func(counter int) error {
			return mixed[counter%len(mixed)](counter)
		}
	}
}

func (r *runner) createAccounts(batch []types.Account) error {
	if r.echo != nil {
		_, err := r.echo.CreateAccounts(batch)
		return err
	}
	results, err := r.ledger.CreateAccounts(batch)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		return fmt.Errorf("%d of %d accounts failed (first: %s)", len(results), len(batch), results[0].Result)
	}
	return nil
}

func (r *runner) createTransfers(batch []types.Transfer) error {
	if r.echo != nil {
		_, err := r.echo.CreateTransfers(batch)
		return err
	}
	results, err := r.ledger.CreateTransfers(batch)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		return fmt.Errorf("%d of %d transfers failed (first: %s)", len(results), len(batch), results[0].Result)
	}
	return nil
}

func (r *runner) lookupAccounts(ids []types.Uint128) error {
	if r.echo != nil {
		_, err := r.echo.LookupAccounts(ids)
		return err
	}
	_, err := r.ledger.LookupAccounts(ids)
	return err
}

func (r *runner) lookupTransfers(ids []types.Uint128) error {
	if r.echo != nil {
		_, err := r.echo.LookupTransfers(ids)
		return err
	}
	_, err := r.ledger.LookupTransfers(ids)
	return err
}

func (r *runner) accountTransfers(id types.Uint128) error {
	filter := types.AccountFilter{
		AccountID: id,
		Limit:     uint32(perfBatchSize),
		Flags:     types.AccountFilterFlagDebits | types.AccountFilterFlagCredits,
	}
	if r.echo != nil {
		_, err := r.echo.GetAccountTransfers(filter)
		return err
	}
	_, err := r.ledger.GetAccountTransfers(filter)
	return err
}

// newTransfer moves one unit between two seeded accounts
func (r *runner) newTransfer(i int) types.Transfer {
	n := len(r.accounts)
	debit := i % n
	credit := (debit + 1 + int(r.next.Add(1))%(n-1)) % n
	return types.Transfer{
		ID:              types.ID(),
		DebitAccountID:  r.accounts[debit],
		CreditAccountID: r.accounts[credit],
		Amount:          types.ToUint128(1),
		Ledger:          1,
		Code:            1,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func newAccount() types.Account {
	return types.Account{ID: types.ID(), Ledger: 1, Code: 1}
}

// window returns perfBatchSize ids starting at counter (with wraparound)
func window(ids []types.Uint128, counter int) []types.Uint128 {
	batch := make([]types.Uint128, perfBatchSize)
	for i := range batch {
		batch[i] = ids[(counter*perfBatchSize+i)%len(ids)]
	}
	return batch
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

func rateString() string {
	if perfRate <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.0f batches/sec", perfRate)
}

// latencies returns the p50 and p99 batch latency recorded for a test
func (r *runner) latencies(test string) (time.Duration, time.Duration) {
	timer := gometrics.GetOrRegisterTimer(test, r.timers)
	if timer.Count() == 0 {
		return 0, 0
	}
	ps := timer.Percentiles([]float64{0.5, 0.99})
	return time.Duration(ps[0]), time.Duration(ps[1])
}

func (r *runner) errors(test string) int64 {
	return gometrics.GetOrRegisterCounter(test+".errors", r.timers).Count()
}

// printResult prints the result of a benchmark test in a formatted way
func (r *runner) printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	p50, p99 := r.latencies(test)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\t%.0f events/sec\tp50 %s\tp99 %s\terrors %d\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, opsPerSec*float64(perfBatchSize), p50, p99, r.errors(test))
}

// writeResultsToCSV writes benchmark results to a CSV file
func (r *runner) writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "EventsPerSec",
		"P50", "P99", "Errors", "Skipped",
		"Executor", "Addresses", "Concurrency", "AcquireMode", "ConnectionsPerEndpoint",
		"Threads", "BatchSize", "Rate",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, test := range benchmarks {
		result, ok := results[test]
		if !ok {
			continue
		}

		var nsPerOp float64
		var opsPerSec float64
		skipped := "true"

		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}
		p50, p99 := r.latencies(test)

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", opsPerSec*float64(perfBatchSize)),
			p50.String(),
			p99.String(),
			strconv.FormatInt(r.errors(test), 10),
			skipped,
			viper.GetString("executor"),
			strings.ReplaceAll(config.Addresses, ",", ";"),
			strconv.Itoa(config.Concurrency),
			config.AcquireMode.String(),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfBatchSize),
			strconv.FormatFloat(perfRate, 'f', -1, 64),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
