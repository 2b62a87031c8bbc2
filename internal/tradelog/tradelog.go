// Package tradelog appends submitted orders and confirmed signal points to
// daily JSON-lines files, with gzip compression of files past retention.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

type Entry struct {
	Time     string  `json:"time"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Kind     string  `json:"kind"`
	Volume   float64 `json:"volume"`
	Price    float64 `json:"price"`
	Retcode  int     `json:"retcode"`
	Comment  string  `json:"comment,omitempty"`
	ClientID string  `json:"client_id,omitempty"`
}

type SignalEntry struct {
	Time      string  `json:"time"`
	Symbol    string  `json:"symbol"`
	Close     float64 `json:"close"`
	UpperBand float64 `json:"upper_band"`
	LowerBand float64 `json:"lower_band"`
	Positions int     `json:"positions"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func signalsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "signals", t.UTC().Format("2006-01-02")+".txt")
}

// Append records a submitted order in the daily trade journal.
func Append(e Entry) error {
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

// AppendSignal records a confirmed signal point in the daily signal journal.
func AppendSignal(e SignalEntry) error {
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(signalsFilepath(now), e)
}

func appendLine(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files older than retentionDays and removes the
// originals. A non-positive retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}
		compressFile(p, gz)
		return nil
	})
}

func compressFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err == nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(src)
		return
	}
	_ = gw.Close()
	_ = out.Close()
}
