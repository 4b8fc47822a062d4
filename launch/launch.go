// Package launch parses game launch URLs into the ambient parameters the rgs
// client resolves against. A game frontend is started with a URL like
//
//	https://cdn.example.com/game/index.html?sessionID=abc&rgs_url=rgs.example.com&lang=de&currency=EUR
//
// and optionally a replay parameter set (replay=true&game=...&version=...&
// mode=...&event=...&amount=...). Params implements rgs.ContextProvider, so a
// parsed launch URL can be plugged straight into rgs.Config.
package launch

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/MJE43/rgs-client-go/rgs"
)

// Query parameter names as they appear in launch URLs.
const (
	ParamSessionID = "sessionID"
	ParamRGSURL    = "rgs_url"
	ParamLanguage  = "lang"
	ParamCurrency  = "currency"

	ParamReplay        = "replay"
	ParamReplayGame    = "game"
	ParamReplayVersion = "version"
	ParamReplayMode    = "mode"
	ParamReplayEvent   = "event"
	ParamReplayAmount  = "amount"
)

// ReplayParams is the replay parameter set carried by a launch URL. Enabled
// is true only when the URL says replay=true; the remaining fields identify
// the recorded round to show.
type ReplayParams struct {
	Enabled bool
	Game    string
	Version string
	Mode    string
	Event   string

	// DisplayAmount is the bet amount to show alongside the replay, in
	// display units. Zero when absent or unparseable; replay display is
	// cosmetic, so a bad amount never fails the parse.
	DisplayAmount decimal.Decimal
}

// Params holds everything a launch URL contributes: ambient client context
// plus the optional replay set.
type Params struct {
	SessionID  string
	ServerHost string
	Language   string
	Currency   string

	Replay ReplayParams
}

// AmbientContext implements rgs.ContextProvider.
func (p *Params) AmbientContext() rgs.Context {
	return rgs.Context{
		SessionID:  p.SessionID,
		ServerHost: p.ServerHost,
		Language:   p.Language,
		Currency:   p.Currency,
	}
}

// Parse extracts launch parameters from a raw URL. Absent parameters stay
// empty; the rgs resolver applies its own defaults, so Parse never invents
// values. Only a malformed URL fails.
func Parse(rawURL string) (*Params, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("launch: parse url: %w", err)
	}
	return FromQuery(u.Query()), nil
}

// FromQuery extracts launch parameters from an already-parsed query, for
// hosts that have url.Values in hand (e.g. an HTTP handler).
func FromQuery(q url.Values) *Params {
	p := &Params{
		SessionID:  q.Get(ParamSessionID),
		ServerHost: q.Get(ParamRGSURL),
		Language:   q.Get(ParamLanguage),
		Currency:   q.Get(ParamCurrency),
	}

	p.Replay = ReplayParams{
		Enabled: q.Get(ParamReplay) == "true",
		Game:    q.Get(ParamReplayGame),
		Version: q.Get(ParamReplayVersion),
		Mode:    q.Get(ParamReplayMode),
		Event:   q.Get(ParamReplayEvent),
	}
	if raw := q.Get(ParamReplayAmount); raw != "" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			p.Replay.DisplayAmount = amount
		}
	}
	return p
}

// ReplayRequest converts the replay set into an rgs replay request. It does
// not validate the fields; rgs.Client.FetchReplay rejects incomplete sets.
func (p *Params) ReplayRequest() rgs.ReplayRequest {
	return rgs.ReplayRequest{
		Game:    p.Replay.Game,
		Version: p.Replay.Version,
		Mode:    p.Replay.Mode,
		Event:   p.Replay.Event,
	}
}
