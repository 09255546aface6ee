package testing

import (
	"fmt"
	"github.com/dododb/dodo/lib/db"
	"math/rand"
	"testing"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Swap", func(b *testing.B) {
		benchmarkSwap(b, factory())
	})

	b.Run("SwapExisting", func(b *testing.B) {
		benchmarkSwapExisting(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Snapshot", func(b *testing.B) {
		benchmarkSnapshot(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Swap operation
func benchmarkSwap(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			database.Swap(key, db.Entry{Value: `"test-value"`, CreatedAt: int64(counter)})
			counter++
		}
	})
}

// Benchmark for Swap operation with existing keys
func benchmarkSwapExisting(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		database.Swap(fmt.Sprintf("test-key-%d", i), db.Entry{Value: `0`})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			database.Swap(key, db.Entry{Value: `1`, CreatedAt: int64(counter)})
			counter++
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		database.Swap(fmt.Sprintf("test-key-%d", i), db.Entry{Value: fmt.Sprintf(`"test-value-%d"`, i)})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Get(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for copying the whole database (used by snapshot saves)
func benchmarkSnapshot(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	for i := 0; i < 100000; i++ {
		database.Swap(fmt.Sprintf("test-key-%d", i), db.Entry{Value: fmt.Sprintf(`"test-value-%d"`, i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = database.Snapshot()
	}
}

// Benchmark with 80% reads and 20% writes
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		database.Swap(fmt.Sprintf("test-key-%d", i), db.Entry{Value: `0`})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", r.Intn(numKeys))
			if r.Intn(100) < 80 {
				database.Get(key)
			} else {
				database.Swap(key, db.Entry{Value: `1`, CreatedAt: 1})
			}
		}
	})
}
