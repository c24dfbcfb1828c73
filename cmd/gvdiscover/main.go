// Command gvdiscover enumerates host network interfaces, broadcasts a
// GVCP DISCOVERY on each, and prints the resulting device catalog.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"

	"github.com/bassosimone/gigevision"
)

// apexLogger adapts apex/log onto [gigevision.Logger].
type apexLogger struct{}

func (apexLogger) Debug(message string)          { log.Debug(message) }
func (apexLogger) Debugf(format string, v ...any) { log.Debugf(format, v...) }
func (apexLogger) Info(message string)           { log.Info(message) }
func (apexLogger) Infof(format string, v ...any)  { log.Infof(format, v...) }
func (apexLogger) Warn(message string)           { log.Warn(message) }
func (apexLogger) Warnf(format string, v ...any)  { log.Warnf(format, v...) }

var _ gigevision.Logger = apexLogger{}

func main() {
	timeout := flag.Duration("timeout", 500*time.Millisecond, "discovery timeout per interface")
	vendor := flag.String("vendor", "", "match on manufacturer name (exact, optional)")
	model := flag.String("model", "", "match on model name (exact, optional)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log.SetHandler(logcli.Default)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	sys := gigevision.NewSystem(apexLogger{})
	defer sys.Close()

	gigevision.Must0(sys.UpdateInterfaceList())

	devices := gigevision.Must1(sys.Discover(*timeout, *vendor, *model))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	gigevision.Must0(enc.Encode(devices))
}
