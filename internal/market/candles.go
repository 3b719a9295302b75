package market

import (
	"sort"

	"github.com/sirupsen/logrus"

	"mosquito/internal/core"
)

// historyMarginSec is how far before the requested window raw ticks are
// retained, sized to cover the exchange's native candle granularity.
const historyMarginSec int64 = 6 * 3600

// Normalize resamples raw exchange ticks onto a fixed-period grid covering
// [epochStart, epochEnd). For each grid point the last tick observed at or
// before it is carried forward with its timestamp overwritten to the grid
// point. Grid points preceding the first retained tick produce no candle.
//
// Input order does not matter and the input is never mutated; the same
// arguments always yield the same candles.
func Normalize(raw []core.RawTick, epochStart, epochEnd, period int64) []core.Candle {
	if len(raw) == 0 || period <= 0 || epochStart >= epochEnd {
		return nil
	}

	cutoff := epochStart - historyMarginSec
	reachesStart := false
	kept := make([]core.RawTick, 0, len(raw))
	for _, tick := range raw {
		if tick.Timestamp <= epochStart {
			reachesStart = true
		}
		if tick.Timestamp < cutoff {
			continue
		}
		kept = append(kept, tick)
	}
	if !reachesStart {
		logrus.WithError(core.ErrIncompleteHistory).WithFields(logrus.Fields{
			"epoch_start": epochStart,
		}).Warn("tick history does not reach back to window start")
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Timestamp < kept[j].Timestamp })

	candles := make([]core.Candle, 0, (epochEnd-epochStart+period-1)/period)
	last := -1
	next := 0
	for t := epochStart; t < epochEnd; t += period {
		for next < len(kept) && kept[next].Timestamp <= t {
			last = next
			next++
		}
		if last < 0 {
			logrus.WithFields(logrus.Fields{
				"epoch": t,
			}).Warn("no tick at or before grid point")
			continue
		}
		src := kept[last]
		candles = append(candles, core.Candle{
			High:            src.High,
			Low:             src.Low,
			Open:            src.Open,
			Close:           src.Close,
			Volume:          src.Volume,
			QuoteVolume:     src.QuoteVolume,
			Timestamp:       t,
			WeightedAverage: src.WeightedAverage,
		})
	}
	return candles
}
