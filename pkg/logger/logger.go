// Package logger provides leveled, component-tagged logging for rainrelay.
package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var (
	mu       sync.Mutex
	minLevel = INFO
	out      = os.Stdout
)

// SetLevel sets the minimum level that will be written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

func log(level Level, component, msg string, fields map[string]any) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" ")
	b.WriteString(levelNames[level])
	b.WriteString(" [")
	b.WriteString(component)
	b.WriteString("] ")
	b.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}

	fmt.Fprintln(out, b.String())
}

func DebugC(component, msg string) { log(DEBUG, component, msg, nil) }
func InfoC(component, msg string)  { log(INFO, component, msg, nil) }
func WarnC(component, msg string)  { log(WARN, component, msg, nil) }
func ErrorC(component, msg string) { log(ERROR, component, msg, nil) }

func DebugCF(component, msg string, fields map[string]any) { log(DEBUG, component, msg, fields) }
func InfoCF(component, msg string, fields map[string]any)  { log(INFO, component, msg, fields) }
func WarnCF(component, msg string, fields map[string]any)  { log(WARN, component, msg, fields) }
func ErrorCF(component, msg string, fields map[string]any) { log(ERROR, component, msg, fields) }
