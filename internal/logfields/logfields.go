package logfields

import "log/slog"

// Canonical log field names shared by the build pipeline and the CLI.
const (
	KeyStage      = "stage"
	KeyInputPath  = "input_path"
	KeyOutputPath = "output_path"
	KeyURL        = "url"
	KeyPlugin     = "plugin"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func InputPath(p string) slog.Attr    { return slog.String(KeyInputPath, p) }
func OutputPath(p string) slog.Attr   { return slog.String(KeyOutputPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
