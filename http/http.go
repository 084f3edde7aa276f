// Package http implements [converse.Backend] over the backend's multipart
// HTTP endpoint and [converse.AudioSource] over its download endpoint.
package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/converse"
)

const (
	conversePath  = "/converse"
	uploadField   = "file"
	uploadName    = "input.wav"
	correlationID = "X-Correlation-ID"

	// maxErrorBody bounds how much of an error response is read into a
	// message.
	maxErrorBody = 4 * 1024
)

// apiResult is the JSON body returned by the converse endpoint. Pipeline
// failures arrive as {"error", "details"} with a success status.
type apiResult struct {
	Transcript string `json:"transcript"`
	Response   string `json:"response"`
	AudioFile  string `json:"audio_file"`
	Error      string `json:"error"`
	Details    string `json:"details"`
}

func (r apiResult) message() string {
	if r.Details == "" {
		return r.Error
	}
	return r.Error + ": " + r.Details
}

// DecodeResult decodes a converse response body. Missing transcript and
// response fields decode as empty strings. A body carrying an error key is
// returned as a *converse.BackendError.
func DecodeResult(body []byte) (converse.Result, error) {
	var r apiResult
	if err := json.Unmarshal(body, &r); err != nil {
		return converse.Result{}, fmt.Errorf("%w: %s", converse.ErrMalformedResponse, err)
	}
	if r.Error != "" {
		return converse.Result{}, &converse.BackendError{Message: r.message()}
	}
	return converse.Result{
		Transcript: r.Transcript,
		Response:   r.Response,
		AudioFile:  r.AudioFile,
	}, nil
}

// errorMessage extracts a human-readable message from an error body: the
// error key when the body is JSON, otherwise the trimmed text.
func errorMessage(body []byte) string {
	var r apiResult
	if err := json.Unmarshal(body, &r); err == nil && r.Error != "" {
		return r.message()
	}
	return strings.TrimSpace(string(body))
}
