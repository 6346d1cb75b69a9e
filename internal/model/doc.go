package model

// Package model defines domain data structures shared by the app: catalog
// search results, languages and qualities, resolved streams, download
// settings, download tasks with their status machine, and batch progress.
