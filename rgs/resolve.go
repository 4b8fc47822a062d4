package rgs

// Fixed defaults applied when neither the explicit option nor the ambient
// context yields a value. sessionID and server host deliberately have none.
const (
	DefaultLanguage = "en"
	DefaultCurrency = "USD"
)

// Context holds the ambient parameter values a provider can contribute.
// Empty fields mean "not present".
type Context struct {
	SessionID  string
	ServerHost string
	Language   string
	Currency   string
}

// ContextProvider yields ambient context for parameter resolution. Concrete
// implementations read a launch URL (package launch) or static configuration
// (StaticProvider); the client never sniffs its environment.
type ContextProvider interface {
	AmbientContext() Context
}

// StaticProvider is a ContextProvider backed by fixed values, for headless
// hosts that configure the client explicitly.
type StaticProvider struct {
	SessionID  string
	ServerHost string
	Language   string
	Currency   string
}

// AmbientContext implements ContextProvider.
func (p *StaticProvider) AmbientContext() Context {
	return Context{
		SessionID:  p.SessionID,
		ServerHost: p.ServerHost,
		Language:   p.Language,
		Currency:   p.Currency,
	}
}

// CallOptions carries optional per-call overrides. An empty field falls
// through to the ambient context, then to the default (where one exists).
// Every operation request embeds CallOptions.
type CallOptions struct {
	SessionID  string
	ServerHost string
	Language   string
	Currency   string
}

// requirement flags which resolved fields an operation cannot proceed
// without.
type requirement struct {
	session bool
	server  bool
}

var (
	needsSessionAndServer = requirement{session: true, server: true}
	needsServerOnly       = requirement{server: true}
)

// operationContext is the fully resolved parameter set for one call. Built
// fresh per call and discarded afterwards.
type operationContext struct {
	sessionID  string
	serverHost string
	language   string
	currency   string
}

// resolve merges explicit options over ambient context over defaults.
// The provider is consulted exactly once. op names the operation for error
// messages.
func (c *Client) resolve(op string, opts CallOptions, need requirement) (operationContext, error) {
	var ambient Context
	if c.config.Provider != nil {
		ambient = c.config.Provider.AmbientContext()
	}

	oc := operationContext{
		sessionID:  firstNonEmpty(opts.SessionID, ambient.SessionID),
		serverHost: firstNonEmpty(opts.ServerHost, ambient.ServerHost),
		language:   firstNonEmpty(opts.Language, ambient.Language, DefaultLanguage),
		currency:   firstNonEmpty(opts.Currency, ambient.Currency, DefaultCurrency),
	}

	if need.session && oc.sessionID == "" {
		return operationContext{}, &MissingSessionError{Operation: op}
	}
	if need.server && oc.serverHost == "" {
		return operationContext{}, &MissingServerError{Operation: op}
	}
	return oc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
