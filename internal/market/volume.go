package market

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mosquito/internal/core"
)

// historyTimeLayout is the exchange's market-history timestamp format. A
// fractional second part may follow and is dropped before parsing.
const historyTimeLayout = "2006-01-02T15:04:05"

// VolumeWithin sums trade quantities whose timestamp falls inside the
// trailing window [now - minutes, now], both bounds inclusive. Timestamps
// carry no zone marker and are read as UTC. Records that do not parse are
// skipped with a warning; input order does not matter.
func VolumeWithin(history []core.TradeRecord, windowMinutes int, now time.Time) float64 {
	nowEpoch := now.UTC().Unix()
	windowStart := nowEpoch - int64(windowMinutes)*60

	volume := 0.0
	for _, rec := range history {
		raw := rec.Timestamp
		if i := strings.IndexByte(raw, '.'); i >= 0 {
			raw = raw[:i]
		}
		ts, err := time.ParseInLocation(historyTimeLayout, raw, time.UTC)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"timestamp": rec.Timestamp,
			}).Warn("unparseable trade timestamp")
			continue
		}
		epoch := ts.Unix()
		if epoch >= windowStart && epoch <= nowEpoch {
			volume += rec.Quantity
		}
	}
	return volume
}
