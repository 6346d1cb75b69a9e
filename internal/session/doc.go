// Package session owns the application state shown by the window and the
// orchestration of searches, detail loads and downloads.
//
// Controller methods and every State mutation run on the UI goroutine.
// Blocking provider and downloader calls run in dispatched tasks, which
// hand their outcome back through the relay. Detail loads carry the token
// that was current when they were issued and are discarded once a newer
// search or selection has been made.
package session
