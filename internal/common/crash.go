package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// CrashLogDir receives crash-<timestamp>.log files
var CrashLogDir = "./logs"

// InstallCrashHandler points crash reports at logDir and makes sure it exists.
// Pair it with a deferred RecoverWithCrashFile in main.
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		CrashLogDir = logDir
	}
	if err := os.MkdirAll(CrashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to create log directory: %v\n", err)
	}
}

// WriteCrashReport renders the report for panicVal into w
func WriteCrashReport(w io.Writer, panicVal interface{}, stackTrace string) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Fprintf(w, "=== TELETON CRASH REPORT ===\n")
	fmt.Fprintf(w, "Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Version: %s\n\n", GetFullVersion())

	fmt.Fprintf(w, "=== PANIC ===\n%v\n\n", panicVal)
	fmt.Fprintf(w, "=== STACK TRACE ===\n%s\n", stackTrace)
	fmt.Fprintf(w, "=== ALL GOROUTINES ===\n%s\n", allGoroutineStacks())

	fmt.Fprintf(w, "=== RUNTIME ===\n")
	fmt.Fprintf(w, "Goroutines: %d\n", runtime.NumGoroutine())
	fmt.Fprintf(w, "Platform: %s/%s (%d CPU)\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	fmt.Fprintf(w, "Alloc: %d MB, Sys: %d MB, NumGC: %d\n", mem.Alloc/1024/1024, mem.Sys/1024/1024, mem.NumGC)
	fmt.Fprintf(w, "=== END ===\n")
}

// WriteCrashFile stores a crash report under CrashLogDir and returns its path.
// The report goes to stderr when the file cannot be written.
func WriteCrashFile(panicVal interface{}, stackTrace string) string {
	crashPath := filepath.Join(CrashLogDir, fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))

	file, err := os.OpenFile(crashPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to create crash file: %v\n", err)
		WriteCrashReport(os.Stderr, panicVal, stackTrace)
		return ""
	}
	WriteCrashReport(file, panicVal, stackTrace)
	file.Sync()
	file.Close()

	fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - report saved to %s !!!\nPanic: %v\n", crashPath, panicVal)
	return crashPath
}

func allGoroutineStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) || len(buf) >= 16*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}

// RecoverWithCrashFile is meant to be deferred at the top of main
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		buf := make([]byte, 8192)
		n := runtime.Stack(buf, false)
		WriteCrashFile(r, string(buf[:n]))
		os.Exit(1)
	}
}
