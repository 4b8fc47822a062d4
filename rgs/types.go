package rgs

import "encoding/json"

// --- Status taxonomy ---

// StatusCode is the domain status the RGS reports inside a 200 body. The
// server uses both patterns: domain errors as 200-with-status-code and as
// HTTP-level failures. This layer does not normalize them; callers branch
// on the code for the former and handle *HTTPError for the latter.
type StatusCode string

const (
	StatusSuccess              StatusCode = "SUCCESS"
	StatusInvalidSession       StatusCode = "ERR_IS"  // invalid or expired session
	StatusActiveBetInProgress  StatusCode = "ERR_IPB" // player already has an active bet
	StatusInsufficientBalance  StatusCode = "ERR_ISB"
	StatusAuthenticationFailed StatusCode = "ERR_ATE"
	StatusLimitsExceeded       StatusCode = "ERR_LIE"
	StatusBetNotFound          StatusCode = "ERR_BNF"
	StatusInvalidBet           StatusCode = "ERR_IB"
	StatusUnknownServerError   StatusCode = "ERR_UKS"
)

// IsSuccess returns true for the SUCCESS code.
func (s StatusCode) IsSuccess() bool { return s == StatusSuccess }

// IsInvalidSession returns true if the session is invalid or expired.
func (s StatusCode) IsInvalidSession() bool { return s == StatusInvalidSession }

// IsActiveBetInProgress returns true if the player already has an active bet
// that must be settled before a new one can be placed.
func (s StatusCode) IsActiveBetInProgress() bool { return s == StatusActiveBetInProgress }

// IsInsufficientBalance returns true if there aren't enough funds.
func (s StatusCode) IsInsufficientBalance() bool { return s == StatusInsufficientBalance }

// --- Wire types ---

// Balance is a player balance in API minor units (see APIAmountMultiplier).
type Balance struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// GameConfig is the game configuration block returned by authenticate.
type GameConfig struct {
	MinBet          int64   `json:"minBet"`
	MaxBet          int64   `json:"maxBet"`
	StepBet         int64   `json:"stepBet"`
	DefaultBetLevel int64   `json:"defaultBetLevel"`
	BetLevels       []int64 `json:"betLevels"`
	Jurisdiction    string  `json:"jurisdiction,omitempty"`
}

// Round describes one bet round. Amounts are API minor units. State carries
// the game-specific payload and is left raw; callers unmarshal it into their
// own game types.
type Round struct {
	ID               string          `json:"roundID,omitempty"`
	Mode             string          `json:"mode,omitempty"`
	Active           bool            `json:"active"`
	Amount           int64           `json:"amount"`
	Payout           int64           `json:"payout"`
	PayoutMultiplier float64         `json:"payoutMultiplier"`
	Event            int             `json:"event,omitempty"`
	State            json.RawMessage `json:"state,omitempty"`
}

// IsWin returns true if the round paid at least the stake back.
func (r *Round) IsWin() bool {
	return r.PayoutMultiplier >= 1.0
}

// --- Per-operation results ---

// AuthenticateResult is the response body of POST /wallet/authenticate.
type AuthenticateResult struct {
	Balance       Balance    `json:"balance"`
	Config        GameConfig `json:"config"`
	Round         *Round     `json:"round,omitempty"` // unfinished round, if any
	StatusCode    StatusCode `json:"statusCode,omitempty"`
	StatusMessage string     `json:"statusMessage,omitempty"`
}

// PlayResult is the response body of POST /wallet/play.
type PlayResult struct {
	Balance       Balance    `json:"balance"`
	Round         *Round     `json:"round,omitempty"`
	StatusCode    StatusCode `json:"statusCode,omitempty"`
	StatusMessage string     `json:"statusMessage,omitempty"`
}

// BalanceResult is the response body of POST /wallet/balance and
// POST /wallet/end-round.
type BalanceResult struct {
	Balance       Balance    `json:"balance"`
	StatusCode    StatusCode `json:"statusCode,omitempty"`
	StatusMessage string     `json:"statusMessage,omitempty"`
}

// EventResult is the response body of POST /bet/event.
type EventResult struct {
	Event         int        `json:"event"`
	StatusCode    StatusCode `json:"statusCode,omitempty"`
	StatusMessage string     `json:"statusMessage,omitempty"`
}

// SearchRound is one entry of a search-result list.
type SearchRound struct {
	BookID           int64   `json:"bookID"`
	Mode             string  `json:"mode,omitempty"`
	Payout           int64   `json:"payout"`
	PayoutMultiplier float64 `json:"payoutMultiplier"`
}

// SearchResult is the response body of POST /game/search.
type SearchResult struct {
	Results       []SearchRound `json:"results"`
	StatusCode    StatusCode    `json:"statusCode,omitempty"`
	StatusMessage string        `json:"statusMessage,omitempty"`
}
