// Package ui implements an interactive terminal browser for the catalogue using bubbletea's Elm architecture.
//
// The browser shows one tab (videos or photos) at a time:
//   - tab switches between videos and photos
//   - f cycles the tag filter through the tags of the active tab
//   - enter selects the highlighted item
//   - a adds comma separated tags, x removes a tag by number
//   - d deletes the highlighted item after a y/n confirmation
//   - s reconciles with the backend
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine commits and status changes flow through a [Bridge], whose channels are drained by a
// waiting command so the engine never blocks on the terminal.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
