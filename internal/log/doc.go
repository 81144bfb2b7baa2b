// Package log provides the structured logger used by divbalance, built on
// top of the standard slog package.
//
// Logs always go to stderr so that diagnostic rows on stdout stay clean for
// piping and diffing. The package adds:
//   - A PathHandler that shortens absolute paths under the user's home
//     directory to "~/..." in every attribute
//   - Verbose mode switching the level from Warn to Debug
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("scanning file", "path", "/home/dev/app/App.tsx")
//	// level=DEBUG msg="scanning file" path=~/app/App.tsx
package log
