package kv

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dododb/dodo/cmd/util"
	"github.com/dododb/dodo/lib/store"
	"github.com/dododb/dodo/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for dodo servers",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(1, viper.GetInt("keys"))
	perfNumThreads = max(1, viper.GetInt("threads"))
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfTest describes one benchmark. prefill sets every key before the run,
// op is called for every iteration with the key of that iteration.
type perfTest struct {
	name    string
	prefill bool
	op      func(kv store.IStore, key string, i int) error
}

func perfTests() []perfTest {
	smallValue := json.RawMessage(`"test"`)
	largeValue := json.RawMessage(strconv.Quote(strings.Repeat("x", perfLargeValueSizeKB*1024)))

	return []perfTest{
		{name: "set", op: func(kv store.IStore, key string, _ int) error {
			return kv.Set(key, smallValue)
		}},
		{name: "set-large", op: func(kv store.IStore, key string, _ int) error {
			return kv.Set(key, largeValue)
		}},
		{name: "get", prefill: true, op: func(kv store.IStore, key string, _ int) error {
			_, err := kv.Get(key)
			return err
		}},
		{name: "exists", prefill: true, op: func(kv store.IStore, key string, _ int) error {
			_, err := kv.Exists(key)
			return err
		}},
		{name: "exists-not", op: func(kv store.IStore, key string, _ int) error {
			_, err := kv.Exists(key + "-missing")
			return err
		}},
		{name: "delete", prefill: true, op: func(kv store.IStore, key string, _ int) error {
			return kv.Delete(key)
		}},
		{name: "mixed", prefill: true, op: func(kv store.IStore, key string, i int) error {
			switch i % 4 {
			case 0:
				return kv.Set(key, smallValue)
			case 1:
				_, err := kv.Get(key)
				if store.IsNotFound(err) {
					return nil
				}
				return err
			case 2:
				return kv.Delete(key)
			default:
				_, err := kv.Exists(key)
				return err
			}
		}},
	}
}

func run(_ *cobra.Command, _ []string) error {
	config := util.GetClientConfig()

	fmt.Println("Performance testing tool for dodo servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	results := make(map[string]testing.BenchmarkResult)
	for _, test := range perfTests() {
		if shouldSkip(test.name) {
			printResult(test.name, testing.BenchmarkResult{})
			continue
		}
		result := runPerfTest(test)
		results[test.name] = result
		printResult(test.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

func runPerfTest(test perfTest) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		getKey, iter := getKeys(test.name)

		if test.prefill {
			iter(func(k string) {
				if err := rpcStore.Set(k, json.RawMessage(`"test"`)); err != nil {
					log.Printf("(%s) - error setting key: %v\n", test.name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcStore.Delete(k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", test.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := test.op(rpcStore, getKey(counter), counter); err != nil && !store.IsNotFound(err) {
					log.Printf("(%s) - error: %v\n", test.name, err)
				}
				counter++
			}
		})
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.N == 0 || result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec",
		"Endpoints", "TimeoutSec", "RetryCount",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range perfTests() {
		result, ok := results[test.name]
		if !ok {
			continue
		}
		nsPerOp := math.Max(float64(result.NsPerOp()), 1)

		row := []string{
			test.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", 1.0/(nsPerOp/1e9)),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test.name, err)
		}
	}

	return nil
}
