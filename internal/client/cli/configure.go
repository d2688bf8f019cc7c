package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) configureCmd() *cobra.Command {
	var (
		baseURL, accessKey string
		forget, show, check bool
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set the server URL and access key",
		Long: `Store the summary server URL and access key in the local database.
Without flags the values are asked for interactively; the access key is
read without echo. Stored values take precedence over the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			switch {
			case show:
				return a.showConfig(cmd)
			case forget:
				if err := a.provider.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.Out, "Stored server settings cleared")
				return nil
			}

			f := cmd.Flags()
			if !f.Changed("base-url") && !f.Changed("access-key") {
				cur, err := a.provider.BaseURL(ctx)
				if err != nil {
					return err
				}
				if baseURL, err = GetTextWithDefault(a.reader, "Server URL", cur, a.Out); err != nil {
					return err
				}
				if accessKey, err = GetSecret(a.reader, "Access key (empty keeps the current one)", a.Out); err != nil {
					return err
				}
			}

			if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
				if err := a.provider.SetBaseURL(ctx, baseURL); err != nil {
					return err
				}
			}
			if accessKey = strings.TrimSpace(accessKey); accessKey != "" {
				if err := a.provider.SetAccessKey(ctx, accessKey); err != nil {
					return err
				}
			}
			fmt.Fprintln(a.Out, successStyle.Render("Server settings saved"))

			if check {
				if err := a.client.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.Out, successStyle.Render("Server is reachable"))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&baseURL, "base-url", "", "summary server URL")
	f.StringVar(&accessKey, "access-key", "", "access key sent as X-API-Key")
	f.BoolVar(&forget, "clear", false, "forget the stored values")
	f.BoolVar(&show, "show", false, "print the current values")
	f.BoolVar(&check, "check", false, "probe the server after saving")
	return cmd
}

func (a *App) showConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	base, err := a.provider.BaseURL(ctx)
	if err != nil {
		return err
	}
	key, err := a.provider.AccessKey(ctx)
	if err != nil {
		return err
	}

	if base == "" {
		base = "(not set)"
	}
	keyState := "(not set)"
	if key != "" {
		keyState = "(set)"
	}

	fmt.Fprintf(a.Out, "server:     %s\n", base)
	fmt.Fprintf(a.Out, "access key: %s\n", keyState)
	fmt.Fprintf(a.Out, "database:   %s\n", a.cfg.DatabasePath)
	return nil
}
