// Package kv implements the key-value facade: it routes GET to the write
// manager then falls through to the storage manager, and routes PUT/DEL
// to the write manager directly.
package kv

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/finch-db/finchdb/internal/record"
	"github.com/finch-db/finchdb/internal/storage"
	"github.com/finch-db/finchdb/internal/writebuffer"
	finchErrors "github.com/finch-db/finchdb/pkg/errors"
)

// Facade is the key-value store's public surface.
type Facade struct {
	writeMgr *writebuffer.Manager
	storeMgr *storage.Manager
	logger   *zap.SugaredLogger
}

// New constructs a Facade over an already-wired write manager and storage
// manager.
func New(writeMgr *writebuffer.Manager, storeMgr *storage.Manager, logger *zap.SugaredLogger) *Facade {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Facade{writeMgr: writeMgr, storeMgr: storeMgr, logger: logger}
}

// Get tries the write manager first; on a write-manager miss it falls
// through to the storage manager.
func (f *Facade) Get(key string) (string, error) {
	v, err := f.writeMgr.Get(key)
	if err == nil {
		return v, nil
	}
	if finchErrors.HasCode(err, finchErrors.CodeKeyNotInWriteManager) {
		return f.storeMgr.Get(key)
	}
	return "", err
}

// Put inserts key=value via the write manager.
func (f *Facade) Put(key, value string) {
	f.writeMgr.Put(key, value, record.Insert)
}

// Del marks key deleted via the write manager.
func (f *Facade) Del(key string) {
	f.writeMgr.Put(key, "", record.Delete)
}

// Flush forces the write manager to drain to the storage manager.
func (f *Facade) Flush() {
	f.writeMgr.Flush()
}

// RequestHandler parses a request line's whitespace-separated tokens into
// GET/PUT/DEL/FLUSH and returns the ("OK"|"ERROR", message) pair the
// request layer frames onto the wire.
func (f *Facade) RequestHandler(line string) (status, message string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "ERROR", fmt.Sprintf("INVALID REQUEST: '%s'", line)
	}

	switch args[0] {
	case "GET":
		if len(args) != 2 {
			return "ERROR", fmt.Sprintf("INVALID REQUEST: '%s'", line)
		}
		v, err := f.Get(args[1])
		if err != nil {
			return "ERROR", finchErrors.Message(err)
		}
		return "OK", fmt.Sprintf("Key: '%s', Value: '%s'", args[1], v)

	case "PUT":
		if len(args) != 3 {
			return "ERROR", fmt.Sprintf("INVALID REQUEST: '%s'", line)
		}
		f.Put(args[1], args[2])
		return "OK", "Successful Insert"

	case "DEL":
		if len(args) != 2 {
			return "ERROR", fmt.Sprintf("INVALID REQUEST: '%s'", line)
		}
		f.Del(args[1])
		return "OK", "Successful Delete"

	case "FLUSH":
		f.Flush()
		return "OK", "Successful Flush"

	default:
		return "ERROR", fmt.Sprintf("INVALID REQUEST: '%s'", line)
	}
}
