package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDebugLogConcurrentWithClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "debug.log")
	if err := initDebug(true, path); err != nil {
		t.Fatalf("initDebug: %v", err)
	}
	if !debugEnabled() {
		t.Fatal("debug logging should be enabled")
	}
	debugLog("hello %s", "log")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				debugTiming("layout", time.Duration(i*j))
			}
		}(i)
	}
	closeDebug()
	wg.Wait()

	if debugEnabled() {
		t.Error("debug logging should be off after close")
	}
	debugLog("dropped")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello log") {
		t.Errorf("log file missing message: %q", data)
	}
	if strings.Contains(string(data), "dropped") {
		t.Error("messages after close should not be written")
	}
}
