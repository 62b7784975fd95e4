// Package ui renders human-facing console output: the banner, coloured
// status lines, the download progress line and optional desktop
// notifications. Colour is only emitted to terminals and can be turned off.
package ui
