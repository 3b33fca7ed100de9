package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Debug logging is off unless MINDTERM_DEBUG is set or the config asks for
// it. The terminal belongs to the UI, so messages go to a file. The logger is
// read from command and watcher goroutines, so it is swapped atomically.
var (
	debugLogger atomic.Pointer[log.Logger]
	debugMu     sync.Mutex
	debugFile   *os.File
)

const debugEnv = "MINDTERM_DEBUG"

func initDebug(enabled bool, path string) error {
	if !enabled && os.Getenv(debugEnv) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening debug log: %w", err)
	}

	debugMu.Lock()
	defer debugMu.Unlock()
	old := debugFile
	debugFile = f
	debugLogger.Store(log.New(f, "[mindterm] ", log.Ltime|log.Lmicroseconds))
	if old != nil {
		old.Close()
	}
	return nil
}

func closeDebug() {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLogger.Store(nil)
	if debugFile != nil {
		debugFile.Close()
		debugFile = nil
	}
}

func debugEnabled() bool {
	return debugLogger.Load() != nil
}

func debugLog(format string, args ...any) {
	if l := debugLogger.Load(); l != nil {
		l.Printf(format, args...)
	}
}

func debugTiming(name string, d time.Duration) {
	if l := debugLogger.Load(); l != nil {
		l.Printf("%s took %v", name, d)
	}
}
