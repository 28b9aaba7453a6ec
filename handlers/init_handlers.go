package handlers

import "app/forecast"

// engine is the forecasting engine shared by all handlers.
var engine *forecast.Engine

// Init wires the handlers to the forecasting engine. Must be called
// before the routes are registered.
func Init(e *forecast.Engine) {
	engine = e
}
