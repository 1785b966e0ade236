// Package ui renders the dashboard page.
//
// The page carries an H1 title, the site dropdown ("All Sites" first, then
// every site in first-seen order), the payload range slider and two chart
// containers. Charts are pre-rendered as inline SVG for the default state;
// static/dash.js then opens /ws/callbacks and swaps in new SVG whenever the
// dropdown or slider changes.
//
// Presentation settings are read on every request through a settings
// function, so a hot-reloaded title or slider step applies to the next page
// load without restarting.
package ui
