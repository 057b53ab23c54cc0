// Package useragent assembles the libacvp User-Agent string (spec.md
// §4.I): `libacvp/<ver>;<osname>/<osver>;<arch>;<cpu_model>;<compiler>/<ver>`.
// Each field is harvested from the platform first, an environment
// variable override second; a field that overruns its cap is dropped
// with a warning rather than truncated silently.
package useragent

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// LibVersion is this module's reported client version.
const LibVersion = "1.0.0"

// field caps, named after the C client's ACV_USER_AGENT_STR_MAX-derived
// per-field slices (spec.md §4.I).
const (
	maxOSName   = 64
	maxOSVer    = 64
	maxArch     = 16
	maxCPUModel = 128
	maxCompiler = 16
)

// Build assembles the User-Agent string, logging (at Warn) and omitting
// any field that can't be harvested or overruns its cap.
func Build(logger *slog.Logger) string {
	osName, osVer := harvestOS(logger)
	arch := harvestField(logger, "arch", maxArch, os.Getenv("ACV_USER_AGENT_ARCH"), runtime.GOARCH)
	cpuModel := harvestCPU(logger)
	compiler := fmt.Sprintf("gc/%s", strings.TrimPrefix(runtime.Version(), "go"))

	return fmt.Sprintf("libacvp/%s;%s/%s;%s;%s;%s",
		LibVersion, osName, osVer, arch, cpuModel, compiler)
}

func harvestOS(logger *slog.Logger) (name, version string) {
	info, err := host.Info()
	if err != nil {
		logger.Warn("useragent: host.Info failed, falling back to env/runtime", "error", err)
		name = harvestField(logger, "osname", maxOSName, os.Getenv("ACV_USER_AGENT_OSNAME"), runtime.GOOS)
		version = harvestField(logger, "osver", maxOSVer, os.Getenv("ACV_USER_AGENT_OSVER"), "unknown")
		return name, version
	}
	name = harvestField(logger, "osname", maxOSName, os.Getenv("ACV_USER_AGENT_OSNAME"), info.Platform)
	version = harvestField(logger, "osver", maxOSVer, os.Getenv("ACV_USER_AGENT_OSVER"), info.PlatformVersion)
	return name, version
}

func harvestCPU(logger *slog.Logger) string {
	infos, err := cpu.Info()
	if err != nil || len(infos) == 0 {
		logger.Warn("useragent: cpu.Info failed, falling back to env", "error", err)
		return harvestField(logger, "cpu_model", maxCPUModel, os.Getenv("ACV_USER_AGENT_PROC"), "unknown")
	}
	return harvestField(logger, "cpu_model", maxCPUModel, os.Getenv("ACV_USER_AGENT_PROC"), infos[0].ModelName)
}

// harvestField prefers an explicit env override, falls back to the
// harvested value, and drops the field entirely (returns "unknown") if
// the winning value overruns cap.
func harvestField(logger *slog.Logger, field string, cap int, override, harvested string) string {
	value := harvested
	if override != "" {
		value = override
	}
	if value == "" {
		value = "unknown"
	}
	if len(value) > cap {
		logger.Warn("useragent: field overruns cap, dropping", "field", field, "len", len(value), "cap", cap)
		return "unknown"
	}
	return sanitize(value)
}

// sanitize strips the ';' and '/' delimiters the User-Agent format
// itself uses, so a harvested value can never corrupt the field layout.
func sanitize(value string) string {
	value = strings.ReplaceAll(value, ";", "_")
	value = strings.ReplaceAll(value, "/", "_")
	return strings.TrimSpace(value)
}
