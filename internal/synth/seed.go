// Package synth produces the synthetic per-identity datasets served by the
// read-only endpoints: daily route, income summary, heatmap and weekly
// forecast. Output is a pure function of (identity, topic, calendar day):
// stable within a day and across restarts, varied across identities and
// days. There is no process-wide generator state.
package synth

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// Topics name the independent data streams. Including the topic in the seed
// decorrelates the streams even for the same identity and day.
const (
	TopicRoute    = "route"
	TopicSummary  = "summary"
	TopicHeatmap  = "heatmap"
	TopicForecast = "forecast"
)

// Seed derives the deterministic seed for one (identity, topic, day)
// triple: SHA-256 of "<id>|<topic>|<YYYY-MM-DD>" folded to 64 bits. The
// day is the local calendar date, not a wall-clock instant.
func Seed(identityID int64, topic string, day time.Time) int64 {
	sum := sha256.Sum256([]byte(strconv.FormatInt(identityID, 10) + "|" + topic + "|" + day.Format("2006-01-02")))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

func source(identityID int64, topic string, day time.Time) *rand.Rand {
	return rand.New(rand.NewSource(Seed(identityID, topic, day)))
}

// intIn draws from the inclusive range [lo, hi].
func intIn(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func floatIn(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func roundTo(f float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(f*p) / p
}
