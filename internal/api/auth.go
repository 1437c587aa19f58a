package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"teamstats/internal/config"
	"teamstats/internal/constants"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog"
)

// Authorizer produces the access token used to sign lookup requests.
type Authorizer interface {
	Authorize(ctx context.Context) (*oauth1.Token, error)
}

type StaticAuthorizer struct {
	Token *oauth1.Token
}

func (a StaticAuthorizer) Authorize(context.Context) (*oauth1.Token, error) {
	if a.Token == nil {
		return nil, errors.New("no access token configured")
	}
	return a.Token, nil
}

// PINAuthorizer runs the out-of-band flow: fetch a request token, show the
// operator the authorization URL and exchange the PIN they paste back.
type PINAuthorizer struct {
	config *oauth1.Config
	in     *bufio.Reader
	out    io.Writer
	logger zerolog.Logger
}

func NewPINAuthorizer(config *oauth1.Config, in io.Reader, out io.Writer, logger zerolog.Logger) *PINAuthorizer {
	return &PINAuthorizer{
		config: config,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

func (a *PINAuthorizer) Authorize(ctx context.Context) (*oauth1.Token, error) {
	requestToken, requestSecret, err := a.config.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain request token, check CONSUMER_KEY and CONSUMER_SECRET: %w", err)
	}
	a.logger.Debug().Str("request_token", requestToken).Msg("got request token")

	authURL, err := a.config.AuthorizationURL(requestToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization url: %w", err)
	}

	fmt.Fprintf(a.out, "Please go here and authorize: %s\n", authURL.String())
	fmt.Fprint(a.out, "Paste the PIN here: ")

	pin, err := a.readPIN(ctx)
	if err != nil {
		return nil, err
	}

	accessToken, accessSecret, err := a.config.AccessToken(requestToken, requestSecret, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange pin for access token: %w", err)
	}

	a.logger.Info().Msg("operator authorization complete")
	return oauth1.NewToken(accessToken, accessSecret), nil
}

func (a *PINAuthorizer) readPIN(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read pin: %w", err)
	}
	pin := strings.TrimSpace(line)
	if pin == "" {
		return "", errors.New("empty pin")
	}
	return pin, nil
}

// NewOAuthConfig builds the consumer configuration for the PIN flow.
func NewOAuthConfig(cfg *config.Config, transport *Transport) (*oauth1.Config, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}
	return &oauth1.Config{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		CallbackURL:    constants.OutOfBandCallback,
		HTTPClient: &http.Client{
			Transport: transport,
			Timeout:   constants.ExternalAPITimeout,
		},
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: constants.TwitterRequestTokenURL,
			AuthorizeURL:    constants.TwitterAuthorizeURL,
			AccessTokenURL:  constants.TwitterAccessTokenURL,
		},
	}, nil
}

// NewAuthorizer skips the interactive step when an access token is preconfigured.
func NewAuthorizer(cfg *config.Config, oauthCfg *oauth1.Config, prompt Prompt, logger zerolog.Logger) Authorizer {
	if cfg.HasAccessToken() {
		logger.Debug().Msg("using preconfigured access token")
		return StaticAuthorizer{Token: oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)}
	}
	return NewPINAuthorizer(oauthCfg, prompt.In, prompt.Out, logger)
}

// Prompt is the operator's terminal.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}
