package main

import (
	"encoding/json"
	"fmt"
	"strings"

	graphauth "github.com/goliatone/go-graphauth"
	"github.com/goliatone/go-graphauth/adapters/gologger"
	"github.com/goliatone/go-graphauth/core"

	"github.com/urfave/cli/v2"
)

func main() {
	newApp().RunAndExitOnError()
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "graphauth",
		Usage: "inspect signed cookies, build OAuth URLs and exchange tokens against a Graph-style API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "app-id",
				Usage:   "application id",
				EnvVars: []string{"GRAPHAUTH_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "app-secret",
				Usage:   "application secret",
				EnvVars: []string{"GRAPHAUTH_APP_SECRET"},
			},
			&cli.StringFlag{
				Name:    "callback-url",
				Usage:   "default redirect URI",
				EnvVars: []string{"GRAPHAUTH_CALLBACK_URL"},
			},
			&cli.StringFlag{
				Name:    "graph-host",
				Usage:   "API host for token and authorize endpoints",
				Value:   core.DefaultGraphHost,
				EnvVars: []string{"GRAPHAUTH_GRAPH_HOST"},
			},
			&cli.StringFlag{
				Name:    "dialog-host",
				Usage:   "host serving dialog endpoints",
				Value:   core.DefaultDialogHost,
				EnvVars: []string{"GRAPHAUTH_DIALOG_HOST"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "token request timeout",
				Value:   core.DefaultTokenRequestTimeout,
				EnvVars: []string{"GRAPHAUTH_TOKEN_REQUEST_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "allow-insecure-http",
				Usage:   "talk to the API host over plain http",
				EnvVars: []string{"GRAPHAUTH_ALLOW_INSECURE_HTTP"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log every operation to stderr",
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "authorize-url",
			Usage: "print the OAuth authorize URL",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "permissions", Usage: "requested permissions, joined into scope"},
				&cli.StringFlag{Name: "redirect-uri", Usage: "redirect URI (defaults to the callback URL)"},
				&cli.StringSliceFlag{Name: "param", Usage: "extra key=value query parameter"},
			},
			Action: runAuthorizeURL,
		},
		{
			Name:      "dialog-url",
			Usage:     "print a dialog URL",
			ArgsUsage: "<dialog-type>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "redirect-uri", Usage: "redirect URI (defaults to the callback URL)"},
				&cli.StringSliceFlag{Name: "param", Usage: "extra key=value query parameter"},
			},
			Action: runDialogURL,
		},
		{
			Name:      "verify-envelope",
			Usage:     "verify a signed envelope token and print its payload",
			ArgsUsage: "<token>",
			Action:    runVerifyEnvelope,
		},
		{
			Name:      "parse-legacy-cookie",
			Usage:     "validate a legacy session cookie value and print its fields",
			ArgsUsage: "<cookie-value>",
			Action:    runParseLegacyCookie,
		},
		{
			Name:   "app-token",
			Usage:  "request an application access token",
			Action: runAppToken,
		},
		{
			Name:      "exchange-code",
			Usage:     "exchange an authorization code for an access token",
			ArgsUsage: "<code>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "redirect-uri", Usage: "redirect URI sent with the code"},
				&cli.BoolFlag{Name: "use-callback", Usage: "send the configured callback URL as redirect URI"},
			},
			Action: runExchangeCode,
		},
		{
			Name:      "exchange-sessions",
			Usage:     "convert legacy session keys into access tokens",
			ArgsUsage: "<session-key>...",
			Action:    runExchangeSessions,
		},
	}
	return app
}

func configFromFlags(cctx *cli.Context) graphauth.Config {
	cfg := graphauth.DefaultConfig()
	cfg.AppID = cctx.String("app-id")
	cfg.AppSecret = cctx.String("app-secret")
	cfg.CallbackURL = cctx.String("callback-url")
	cfg.GraphHost = cctx.String("graph-host")
	cfg.DialogHost = cctx.String("dialog-host")
	cfg.TokenRequestTimeout = cctx.Duration("timeout")
	cfg.AllowInsecureHTTP = cctx.Bool("allow-insecure-http")
	return cfg
}

func newService(cctx *cli.Context) (*graphauth.Service, error) {
	logger := gologger.Component(nil, newSlogLogger(cctx.App.ErrWriter, cctx.Bool("verbose")), "cli")
	return graphauth.NewService(configFromFlags(cctx), graphauth.WithLogger(logger))
}

// parseParams turns key=value flag values into URL options. A value-less
// entry maps to an empty string.
func parseParams(values []string) (core.URLOptions, error) {
	options := core.URLOptions{}
	for _, entry := range values {
		key, value, _ := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid --param %q: key is required", entry)
		}
		options[key] = value
	}
	return options, nil
}

func urlOptions(cctx *cli.Context) (core.URLOptions, error) {
	options, err := parseParams(cctx.StringSlice("param"))
	if err != nil {
		return nil, err
	}
	if redirect := cctx.String("redirect-uri"); redirect != "" {
		options["redirect_uri"] = redirect
	}
	return options, nil
}

func requireArgs(cctx *cli.Context, count int) error {
	if cctx.Args().Len() < count {
		return cli.Exit(fmt.Sprintf("%s: expected %s", cctx.Command.Name, cctx.Command.ArgsUsage), 2)
	}
	return nil
}

func printJSON(cctx *cli.Context, value any) error {
	encoder := json.NewEncoder(cctx.App.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func runAuthorizeURL(cctx *cli.Context) error {
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	options, err := urlOptions(cctx)
	if err != nil {
		return err
	}
	if permissions := cctx.StringSlice("permissions"); len(permissions) > 0 {
		options["permissions"] = permissions
	}
	out, err := svc.AuthorizeURL(cctx.Context, options)
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, out)
	return nil
}

func runDialogURL(cctx *cli.Context) error {
	if err := requireArgs(cctx, 1); err != nil {
		return err
	}
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	options, err := urlOptions(cctx)
	if err != nil {
		return err
	}
	out, err := svc.DialogURL(cctx.Context, cctx.Args().First(), options)
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, out)
	return nil
}

func runVerifyEnvelope(cctx *cli.Context) error {
	if err := requireArgs(cctx, 1); err != nil {
		return err
	}
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	envelope, err := svc.VerifyEnvelope(cctx.Context, cctx.Args().First())
	if err != nil {
		return err
	}
	_, err = cctx.App.Writer.Write(append(envelope.Payload, '\n'))
	return err
}

func runParseLegacyCookie(cctx *cli.Context) error {
	if err := requireArgs(cctx, 1); err != nil {
		return err
	}
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	session, found := svc.ParseLegacyCookie(cctx.Context, cctx.Args().First())
	if !found {
		return cli.Exit("legacy cookie rejected: bad signature or expired", 1)
	}
	return printJSON(cctx, session.Fields)
}

func runAppToken(cctx *cli.Context) error {
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	info, err := svc.AppToken(cctx.Context, core.TokenRequestOptions{})
	if err != nil {
		return err
	}
	return printJSON(cctx, info.Fields)
}

func runExchangeCode(cctx *cli.Context) error {
	if err := requireArgs(cctx, 1); err != nil {
		return err
	}
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	code := cctx.Args().First()
	var info core.AccessTokenInfo
	if cctx.Bool("use-callback") {
		info, err = svc.ExchangeCodeDefault(cctx.Context, code, core.TokenRequestOptions{})
	} else {
		info, err = svc.ExchangeCode(cctx.Context, code, cctx.String("redirect-uri"), core.TokenRequestOptions{})
	}
	if err != nil {
		return err
	}
	return printJSON(cctx, info.Fields)
}

func runExchangeSessions(cctx *cli.Context) error {
	if err := requireArgs(cctx, 1); err != nil {
		return err
	}
	svc, err := newService(cctx)
	if err != nil {
		return err
	}
	sessions := cctx.Args().Slice()
	tokens, err := svc.ExchangeSessionKeys(cctx.Context, sessions, core.TokenRequestOptions{})
	if err != nil {
		return err
	}
	out := make([]map[string]string, len(tokens))
	for idx, token := range tokens {
		if token != nil {
			out[idx] = token.Fields
		}
	}
	return printJSON(cctx, out)
}
