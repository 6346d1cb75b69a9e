// Package ui contains the Fyne-based desktop window. RootUI implements
// session.View: every method runs on the Fyne event loop and only renders
// what the session controller hands it. User actions are forwarded to the
// controller; no blocking call is made from here.
package ui
