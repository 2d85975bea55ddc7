// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"github.com/pion/logging"
)

// API bundles the settings shared by the Sessions it creates.
type API struct {
	settingEngine *SettingEngine
	mediaEngine   *MediaEngine
}

// NewAPI Creates a new API object for keeping semi-global settings to Sessions.
func NewAPI(options ...func(*API)) (*API, error) {
	a := &API{}

	for _, o := range options {
		o(a)
	}

	if a.settingEngine == nil {
		a.settingEngine = &SettingEngine{}
	}

	if a.settingEngine.LoggerFactory == nil {
		a.settingEngine.LoggerFactory = logging.NewDefaultLoggerFactory()
	}

	if a.mediaEngine == nil {
		a.mediaEngine = &MediaEngine{}
		if err := a.mediaEngine.RegisterDefaultCodecs(); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// WithMediaEngine allows providing a MediaEngine to the API.
// Settings can be changed after passing the engine to an API.
// When a MediaEngine is not provided the default codecs are used.
func WithMediaEngine(m *MediaEngine) func(a *API) {
	return func(a *API) {
		if m != nil {
			a.mediaEngine = m
		}
	}
}

// WithSettingEngine allows providing a SettingEngine to the API.
// Settings should not be changed after passing the engine to an API.
func WithSettingEngine(s SettingEngine) func(a *API) {
	return func(a *API) {
		a.settingEngine = &s
	}
}
