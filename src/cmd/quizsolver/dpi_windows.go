//go:build windows

package main

import (
	"golang.org/x/sys/windows"

	"quiz-ocr-llm/src/logutil"
)

const processPerMonitorDPIAware = 2

// enableDPIAwareness opts into per-monitor DPI awareness so captured pixels
// line up with calibrated coordinates on scaled displays.
func enableDPIAwareness() {
	dpiLog := logutil.Module("dpi")

	setProcessDpiAwareness := windows.NewLazySystemDLL("Shcore.dll").NewProc("SetProcessDpiAwareness")
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			dpiLog.Debug().Msg("per-monitor DPI awareness enabled")
		} else {
			dpiLog.Warn().Uint64("hresult", uint64(ret)).Msg("SetProcessDpiAwareness failed")
		}
		return
	}

	setProcessDPIAware := windows.NewLazySystemDLL("user32.dll").NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		dpiLog.Warn().Msg("no DPI awareness API available")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
		dpiLog.Warn().Msg("SetProcessDPIAware failed")
	}
}
