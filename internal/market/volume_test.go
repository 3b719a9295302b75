package market

import (
	"testing"
	"time"

	"mosquito/internal/core"
)

func historyAt(now time.Time, offset time.Duration, qty float64) core.TradeRecord {
	return core.TradeRecord{
		Timestamp: now.Add(offset).UTC().Format(historyTimeLayout),
		Quantity:  qty,
	}
}

func TestVolumeWithinWindow(t *testing.T) {
	now := time.Date(2017, 8, 14, 12, 0, 0, 0, time.UTC)
	history := []core.TradeRecord{
		historyAt(now, -30*time.Minute, 5),
		historyAt(now, -90*time.Minute, 7),
	}
	if got := VolumeWithin(history, 60, now); got != 5 {
		t.Fatalf("VolumeWithin() = %v, want 5", got)
	}
}

func TestVolumeWithinBoundsInclusive(t *testing.T) {
	now := time.Date(2017, 8, 14, 12, 0, 0, 0, time.UTC)
	history := []core.TradeRecord{
		historyAt(now, -60*time.Minute, 1), // exactly on the lower bound
		historyAt(now, 0, 2),               // exactly now
		historyAt(now, time.Minute, 4),     // ahead of the window
	}
	if got := VolumeWithin(history, 60, now); got != 3 {
		t.Fatalf("VolumeWithin() = %v, want 3", got)
	}
}

func TestVolumeWithinFractionalTimestamps(t *testing.T) {
	now := time.Date(2017, 8, 14, 12, 0, 0, 0, time.UTC)
	history := []core.TradeRecord{
		{Timestamp: "2017-08-14T11:45:13.37", Quantity: 2.5},
		{Timestamp: "2017-08-14T11:50:00", Quantity: 1.5},
	}
	if got := VolumeWithin(history, 60, now); got != 4 {
		t.Fatalf("VolumeWithin() = %v, want 4", got)
	}
}

func TestVolumeWithinSkipsUnparseable(t *testing.T) {
	now := time.Date(2017, 8, 14, 12, 0, 0, 0, time.UTC)
	history := []core.TradeRecord{
		{Timestamp: "not-a-time", Quantity: 100},
		historyAt(now, -5*time.Minute, 3),
	}
	if got := VolumeWithin(history, 60, now); got != 3 {
		t.Fatalf("VolumeWithin() = %v, want 3", got)
	}
}

func TestVolumeWithinUnorderedInput(t *testing.T) {
	now := time.Date(2017, 8, 14, 12, 0, 0, 0, time.UTC)
	history := []core.TradeRecord{
		historyAt(now, -5*time.Minute, 1),
		historyAt(now, -55*time.Minute, 2),
		historyAt(now, -25*time.Minute, 4),
	}
	if got := VolumeWithin(history, 60, now); got != 7 {
		t.Fatalf("VolumeWithin() = %v, want 7", got)
	}
}
