package tradelog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	require.NoError(t, Append(Entry{Symbol: "ETHUSD", Side: "buy", Kind: "market", Volume: 1, Price: 2500, Retcode: 10009, Comment: "Open"}))
	require.NoError(t, Append(Entry{Symbol: "ETHUSD", Side: "sell", Kind: "market", Volume: 1, Price: 2550, Retcode: 10009, Comment: "Close"}))

	p := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".txt")
	b, err := os.ReadFile(p)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, "ETHUSD", e.Symbol)
	assert.Equal(t, "buy", e.Side)
	assert.NotEmpty(t, e.Time)
}

func TestAppendSignal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	require.NoError(t, AppendSignal(SignalEntry{Symbol: "ETHUSD", Close: 2500, UpperBand: 2550, LowerBand: 2450, Positions: 1}))

	p := filepath.Join(dir, "signals", time.Now().UTC().Format("2006-01-02")+".txt")
	b, err := os.ReadFile(p)
	require.NoError(t, err)

	var e SignalEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(b))), &e))
	assert.Equal(t, 2500.0, e.Close)
	assert.Equal(t, 1, e.Positions)
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	old := filepath.Join(dir, "2020-01-01.txt")
	require.NoError(t, os.WriteFile(old, []byte("{}\n"), 0o644))
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, past, past))

	fresh := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".txt")
	require.NoError(t, os.WriteFile(fresh, []byte("{}\n"), 0o644))

	require.NoError(t, CompressOlder(7))

	_, err := os.Stat(old + ".gz")
	assert.NoError(t, err, "old file compressed")
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "original removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh file untouched")
}

func TestCompressOlderDisabled(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	assert.NoError(t, CompressOlder(0))
}
