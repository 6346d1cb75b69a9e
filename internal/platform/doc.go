// Package platform contains OS-facing helpers: download and config
// directories, episode file naming, and revealing files in the desktop shell.
package platform
