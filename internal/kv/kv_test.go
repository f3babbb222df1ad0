package kv

import (
	"fmt"
	"sync"
	"testing"

	"github.com/finch-db/finchdb/internal/partition"
	"github.com/finch-db/finchdb/internal/partition/memfilebackend"
	"github.com/finch-db/finchdb/internal/storage"
	"github.com/finch-db/finchdb/internal/writebuffer"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	dev := memfilebackend.New()
	initialPages := uint32(32)
	if err := dev.Truncate(initialPages); err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	part := partition.New(dev, partition.Options{Growable: true, GrowthPages: 8})
	if err := part.Format(initialPages); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	store := storage.New(part, nil)
	wm := writebuffer.New(store, 1<<20, nil)
	return New(wm, store, nil)
}

func TestRequestHandlerEndToEndScenarios(t *testing.T) {
	f := newTestFacade(t)

	tests := []struct {
		name       string
		line       string
		wantStatus string
		wantMsg    string
	}{
		{"put", "PUT k1 v1", "OK", "Successful Insert"},
		{"get", "GET k1", "OK", "Key: 'k1', Value: 'v1'"},
		{"del", "DEL k1", "OK", "Successful Delete"},
		{"get after del", "GET k1", "ERROR", "Requested key is marked as deleted in write manager"},
		{"flush", "FLUSH", "OK", "Successful Flush"},
		{"get missing key", "GET nosuchkey", "ERROR", "Requested key was not found in the storage manager."},
		{"invalid request", "FOO bar", "ERROR", "INVALID REQUEST: 'FOO bar'"},
		{"put wrong arity", "PUT onlykey", "ERROR", "INVALID REQUEST: 'PUT onlykey'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := f.RequestHandler(tt.line)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("RequestHandler(%q) = (%q, %q), want (%q, %q)", tt.line, status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestGetFallsThroughToStorageAfterFlush(t *testing.T) {
	f := newTestFacade(t)
	f.Put("k1", "v1")
	f.Flush()

	var v string
	var err error
	for i := 0; i < 1000; i++ {
		v, err = f.Get("k1")
		if err == nil {
			break
		}
	}
	if err != nil {
		t.Fatalf("Get() after Flush() error = %v", err)
	}
	if v != "v1" {
		t.Errorf("Get() after Flush() = %q, want %q", v, "v1")
	}
}

// TestConcurrentInsertsDoNotCorrupt exercises the "N threads each
// inserting R distinct keys" property: every key must be retrievable
// once every goroutine has joined and a FLUSH has drained the write
// manager to the storage manager.
func TestConcurrentInsertsDoNotCorrupt(t *testing.T) {
	f := newTestFacade(t)

	const goroutines = 8
	const keysPerGoroutine = 25

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < keysPerGoroutine; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i)
				value := fmt.Sprintf("g%d-v%d", g, i)
				f.Put(key, value)
			}
		}(g)
	}
	wg.Wait()
	f.Flush()

	for g := 0; g < goroutines; g++ {
		for i := 0; i < keysPerGoroutine; i++ {
			key := fmt.Sprintf("g%d-k%d", g, i)
			wantValue := fmt.Sprintf("g%d-v%d", g, i)

			var v string
			var err error
			for attempt := 0; attempt < 1000; attempt++ {
				v, err = f.Get(key)
				if err == nil {
					break
				}
			}
			if err != nil {
				t.Fatalf("Get(%q) error = %v, want the concurrently inserted key to be retrievable", key, err)
			}
			if v != wantValue {
				t.Errorf("Get(%q) = %q, want %q", key, v, wantValue)
			}
		}
	}
}
