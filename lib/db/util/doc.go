// Package util provides small utility components shared by the database and
// the layers built on top of it.
//
// The package contains:
//   - clock: The Clock and Ticker interfaces used for every time read and every
//     periodic task, with a wall-clock implementation (RealClock) and a manually
//     driven one for tests (ManualClock)
//
// This package is particularly useful for:
//   - Stamping entries with their creation time in the store layer
//   - Age computations and periodic save and cleanup loops in the persistence layer
//   - Deterministic tests of time dependent behaviour without sleeping
package util
