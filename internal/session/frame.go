package session

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/forecastchat/internal/errors"
	"github.com/diogo/forecastchat/internal/models"
)

// JSON paths inside an inbound frame
const (
	pathType       = "type"
	pathMessage    = "message"
	pathHistorical = "historical"
	pathForecast   = "forecast"
)

// DecodeFrame parses an inbound socket frame.
// An error means the frame is unusable and must be dropped. Dispatch depends
// only on which fields are present, never on the type field.
func DecodeFrame(data []byte) (models.Frame, error) {
	if !gjson.ValidBytes(data) {
		return models.Frame{}, apierrors.NewFrameError("not valid JSON", "")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return models.Frame{}, apierrors.NewFrameError("not a JSON object", "")
	}

	frame := models.Frame{
		Type: root.Get(pathType).String(),
	}

	// only string messages are chat text
	if msg := root.Get(pathMessage); msg.Type == gjson.String {
		frame.HasMessage = true
		frame.Message = msg.String()
	}

	hist := root.Get(pathHistorical)
	fc := root.Get(pathForecast)
	if !hist.Exists() || !fc.Exists() {
		return frame, nil
	}

	if !hist.IsArray() {
		frame.PayloadErr = apierrors.NewFrameError("not an array", pathHistorical)
		return frame, nil
	}
	if !fc.IsArray() {
		frame.PayloadErr = apierrors.NewFrameError("not an array", pathForecast)
		return frame, nil
	}

	payload := &models.ForecastPayload{Message: frame.Message}
	if err := json.Unmarshal([]byte(hist.Raw), &payload.Historical); err != nil {
		frame.PayloadErr = apierrors.NewFrameError(err.Error(), pathHistorical)
		return frame, nil
	}
	if err := json.Unmarshal([]byte(fc.Raw), &payload.Forecast); err != nil {
		frame.PayloadErr = apierrors.NewFrameError(err.Error(), pathForecast)
		return frame, nil
	}

	frame.Payload = payload
	return frame, nil
}
