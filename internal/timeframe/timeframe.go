// Package timeframe maps short timeframe codes ("M1".."MN1") to the venue's
// timeframe identifiers and their duration in seconds.
package timeframe

import (
	"fmt"
	"time"
)

type Timeframe struct {
	Code    string
	ID      int // venue timeframe constant
	Seconds int
}

func (t Timeframe) Duration() time.Duration {
	return time.Duration(t.Seconds) * time.Second
}

// Venue identifiers follow the MT5 convention: minute frames are the minute
// count, hour/day/week/month frames carry a unit flag in the high bits.
var table = map[string]Timeframe{
	"M1":  {"M1", 1, 60},
	"M2":  {"M2", 2, 120},
	"M3":  {"M3", 3, 180},
	"M4":  {"M4", 4, 240},
	"M5":  {"M5", 5, 300},
	"M6":  {"M6", 6, 360},
	"M10": {"M10", 10, 600},
	"M12": {"M12", 12, 720},
	"M15": {"M15", 15, 900},
	"M20": {"M20", 20, 1200},
	"M30": {"M30", 30, 1800},
	"H1":  {"H1", 0x4001, 3600},
	"H2":  {"H2", 0x4002, 7200},
	"H3":  {"H3", 0x4003, 10800},
	"H4":  {"H4", 0x4004, 14400},
	"H6":  {"H6", 0x4006, 21600},
	"H8":  {"H8", 0x4008, 28800},
	"H12": {"H12", 0x400C, 43200},
	"D1":  {"D1", 0x4018, 86400},
	"W1":  {"W1", 0x8001, 604800},
	"MN1": {"MN1", 0xC001, 2592000},
}

// Lookup resolves a timeframe code. Unknown codes are an error.
func Lookup(code string) (Timeframe, error) {
	tf, ok := table[code]
	if !ok {
		return Timeframe{}, fmt.Errorf("unknown timeframe %q", code)
	}
	return tf, nil
}

// Codes returns every supported timeframe code.
func Codes() []string {
	out := make([]string, 0, len(table))
	for c := range table {
		out = append(out, c)
	}
	return out
}
