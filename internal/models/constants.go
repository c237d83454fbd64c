// Package models contains data types and constants for the forecast chat client.
package models

// DefaultEndpoint is the WebSocket endpoint of a locally running forecast backend
const DefaultEndpoint = "ws://localhost:8369/ws"

// Frame types observed on the wire. Dispatch never depends on them.
const (
	FrameTypeForecast = "forecast"
	FrameTypeResponse = "response"
)

// Chart layout defaults
const (
	// HistoryWindow is the number of most recent historical points displayed
	HistoryWindow = 60
	// MaxTicks caps the number of visible x-axis labels
	MaxTicks = 10
	// YAxisTitle labels the value axis
	YAxisTitle = "Units"
	// MarkerLabel annotates the boundary between observed and forecast data
	MarkerLabel = "Today"
)

// Greeting is shown once the socket opens
const Greeting = `Connected! I can help you adjust your supply chain forecast. Try saying things like "Increase steel by 20% next week" or "We expect lower wood demand for 10 days".`

// DisconnectedNotice is shown when the transport fails
const DisconnectedNotice = "Connection to the forecast server was lost. Please restart forecastchat to reconnect."
