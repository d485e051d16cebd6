//go:build !windows

package winutil

import (
	"log"

	"github.com/kbinani/screenshot"
)

func EnableDPIAwareness() {}

func MinimizeConsole() {}

func LogMonitorConfiguration() {
	n := screenshot.NumActiveDisplays()
	log.Printf("MONITOR: Detected %d displays", n)
	for i := 0; i < n; i++ {
		log.Printf("MONITOR: Display %d - %v", i, screenshot.GetDisplayBounds(i))
	}
}
