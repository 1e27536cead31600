// Package logger provides the process-wide structured logger used by every
// pipeline stage and adapter.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Log is the package-level logger every component writes to.
var Log = logrus.New()

const (
	ColorFlag     = "log-color"
	ColorFlagHelp = "Enable or disable colored log output."
	FileFlag      = "log-file"
	FileFlagHelp  = "File to additionally write log output to."
	LevelsFlag    = "log-level"
	LevelsHelp    = "Minimum log level to print."

	ColorsPlaceholder = "(always|auto|never)"
	LevelsPlaceholder = "(panic|fatal|error|warning|info|debug|trace)"
)

// LogFlags mirrors the set of CLI flags that control logger behavior. The
// enum/placeholder tags resolve against the kong.Vars returned by
// KongVars, which must be passed to kong.Parse alongside this struct.
type LogFlags struct {
	LogColor *string `name:"log-color" placeholder:"${logcolorplaceholder}" help:"${logcolorhelp}" enum:"${logcolorvalues}" default:""`
	LogFile  *string `name:"log-file" help:"${logfilehelp}"`
	LogLevel *string `name:"log-level" placeholder:"${loglevelplaceholder}" help:"${loglevelhelp}" enum:"${loglevelvalues}" default:""`
}

func Colors() []string {
	return []string{"always", "auto", "never"}
}

func Levels() []string {
	levels := make([]string, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		levels = append(levels, l.String())
	}
	return levels
}

// KongVars supplies the ${...} placeholders LogFlags' struct tags reference.
func KongVars() map[string]string {
	return map[string]string{
		"logcolorhelp":        ColorFlagHelp,
		"logcolorplaceholder": ColorsPlaceholder,
		"logcolorvalues":      strings.Join(Colors(), ",") + ",",
		"logfilehelp":         FileFlagHelp,
		"loglevelhelp":        LevelsHelp,
		"loglevelplaceholder": LevelsPlaceholder,
		"loglevelvalues":      strings.Join(Levels(), ",") + ",",
	}
}

// InitBestEffort configures the logger from CLI flags, falling back to sane
// defaults and logging (rather than failing) on bad input.
func InitBestEffort(flags *LogFlags) {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if flags == nil {
		return
	}

	if flags.LogLevel != nil && *flags.LogLevel != "" {
		level, err := logrus.ParseLevel(*flags.LogLevel)
		if err != nil {
			Log.Warnf("invalid log level (%s), defaulting to info", *flags.LogLevel)
		} else {
			Log.SetLevel(level)
		}
	}

	if flags.LogColor != nil {
		applyColorSetting(*flags.LogColor)
	}

	if flags.LogFile != nil && *flags.LogFile != "" {
		file, err := os.OpenFile(*flags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			Log.Warnf("failed to open log file (%s):\n%v", *flags.LogFile, err)
		} else {
			Log.SetOutput(io.MultiWriter(os.Stderr, file))
		}
	}
}

// InitStderrLog configures a plain stderr logger at debug level.
func InitStderrLog() {
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.DebugLevel)
}

func applyColorSetting(setting string) {
	switch strings.ToLower(setting) {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		// "auto" (or unset): let fatih/color auto-detect based on the
		// output stream.
	}
}

// Warnf is a convenience wrapper that also returns a formatted string, used
// where a caller wants to both log and propagate the warning text.
func Warnf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	Log.Warn(msg)
	return msg
}
