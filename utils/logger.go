package utils

import (
	"fmt"

	"github.com/fatih/color"
)

// LogInfo prints an informational line in yellow.
func LogInfo(format string, v ...any) {
	color.Yellow("[INFO] %s", fmt.Sprintf(format, v...))
}

// LogSuccess prints a completed step in green.
func LogSuccess(format string, v ...any) {
	color.Green("[OK] %s", fmt.Sprintf(format, v...))
}

// LogError prints an error line in red.
func LogError(format string, v ...any) {
	color.Red("[ERROR] %s", fmt.Sprintf(format, v...))
}

// LogDebug prints a debug line in cyan.
func LogDebug(format string, v ...any) {
	color.Cyan("[DEBUG] %s", fmt.Sprintf(format, v...))
}
