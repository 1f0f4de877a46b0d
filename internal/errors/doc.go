// Package errors provides coded, categorized errors for u2a.
//
// Every core operation returns an *Error (or wraps one) so that callers can
// make policy decisions from the category instead of parsing log output:
// the CLI maps the category to an exit code, the bulk upgrade loop counts
// failures and carries on.
//
// # Categories
//
//   - user: duplicate names, unknown apps, cancelled prompts (exit 2)
//   - transient: network failures that callers usually degrade around (exit 3)
//   - subprocess: npm, packager and installer failures (exit 4)
//   - filesystem: directory, file and registry I/O (exit 5)
//   - privilege: running as root/administrator (exit 6)
//   - config: invalid or unreadable settings (exit 7)
//
// # Usage
//
//	err := errors.New("E200").
//	    WithDetailf("an application named %q is already registered", name).
//	    WithSuggestion("Choose another name with --name")
//
//	errors.Print(os.Stderr, err)
//	os.Exit(errors.ExitCode(err))
package errors
