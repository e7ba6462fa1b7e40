// Package cli contains shared helpers for the codeset commands: typed
// auth errors with actionable guidance, value formatting (key masking,
// cents, timestamps), pagination math, interactive prompts, and the
// balance watcher used after a deposit.
package cli
