package appletime

import (
	"testing"
	"time"
)

func TestEpoch(t *testing.T) {
	// 2001-01-01 is 978307200 seconds after the Unix epoch
	if got := FromSeconds(0).Unix(); got != 978307200 {
		t.Errorf("Expected FromSeconds(0) at Unix 978307200, got %d", got)
	}
}

func TestSecondsRoundTrip(t *testing.T) {
	seconds := []int64{0, 1, -1, 60, 86400, 700000000, 978307200}
	for _, sec := range seconds {
		if got := ToSeconds(FromSeconds(sec)); got != sec {
			t.Errorf("Round trip of %d seconds gave %d", sec, got)
		}
	}
}

func TestToSeconds(t *testing.T) {
	ts := time.Date(2021, 3, 14, 1, 59, 26, 0, time.UTC)
	sec := ToSeconds(ts)
	if got := FromSeconds(sec); !got.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, got)
	}
}

func TestNanosecondsMatchSeconds(t *testing.T) {
	// A message date of N nanoseconds must convert to the same instant as
	// an attachment date of N/1e9 seconds.
	nanos := []int64{0, NanosPerSecond, 700000000 * NanosPerSecond, 123456789123456789}
	for _, ns := range nanos {
		msg := FromNanoseconds(ns)
		att := FromSeconds(ns / NanosPerSecond)
		if !msg.Equal(att) {
			t.Errorf("FromNanoseconds(%d) = %v, want %v", ns, msg, att)
		}
	}
}

func TestNanosecondsTruncate(t *testing.T) {
	// Sub-second precision is dropped, not rounded
	ns := int64(1)*NanosPerSecond + 999999999
	if got := FromNanoseconds(ns); !got.Equal(FromSeconds(1)) {
		t.Errorf("Expected truncation to 1s, got %v", got)
	}
}

func TestToNanoseconds(t *testing.T) {
	ts := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	ns := ToNanoseconds(ts)
	if ns%NanosPerSecond != 0 {
		t.Errorf("Expected whole-second nanoseconds, got %d", ns)
	}
	if got := FromNanoseconds(ns); !got.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, got)
	}
}
