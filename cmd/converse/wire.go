package main

import (
	"fmt"

	"github.com/fwojciec/converse"
	convexec "github.com/fwojciec/converse/exec"
	convhttp "github.com/fwojciec/converse/http"
	"github.com/fwojciec/converse/wav"
	convws "github.com/fwojciec/converse/websocket"
	"github.com/google/uuid"
)

type deps struct {
	controller *converse.Controller
	closers    []func() error
}

func (d deps) close() {
	for _, c := range d.closers {
		_ = c()
	}
}

// wire builds the controller for cfg. Response audio is always fetched over
// HTTP, whichever transport carries the upload.
func wire(cfg converse.Config, logger converse.Logger) (deps, error) {
	var (
		d       deps
		backend converse.Backend
	)

	httpClient, err := convhttp.New(cfg.BackendURL, convhttp.WithCorrelationIDs(uuid.NewString))
	if err != nil {
		return d, fmt.Errorf("http client: %w", err)
	}

	switch cfg.Transport {
	case converse.TransportWebSocket:
		wsClient, err := convws.New(cfg.BackendURL)
		if err != nil {
			return d, fmt.Errorf("websocket client: %w", err)
		}
		backend = wsClient
		d.closers = append(d.closers, wsClient.Close)
	default:
		backend = httpClient
	}

	device := convexec.NewDevice(cfg.Capture)
	recorder := converse.NewRecorder(device, wav.Encoder{})
	player := convexec.NewPlayer(cfg.Playback, httpClient)

	d.controller = converse.NewController(recorder, backend, player,
		converse.WithLogger(logger),
		converse.WithIDGenerator(uuid.NewString),
		converse.WithRequestTimeout(cfg.RequestTimeout),
	)
	return d, nil
}
