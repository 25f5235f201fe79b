package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunen/internal/services"
	"github.com/desertthunder/tunen/internal/shared"
	"github.com/desertthunder/tunen/internal/ui"
	"github.com/urfave/cli/v3"
)

// SpotifyToken verifies the configured client credentials by requesting an app-only token.
//
// Only a masked prefix of the token is printed.
func (r *Runner) SpotifyToken(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	tokens, err := services.NewTokenClient(clientConfig(config), r.endpoint, r.httpClient)
	if err != nil {
		return err
	}

	tok, err := tokens.AppToken(ctx)
	if err != nil {
		if upstream, ok := shared.AsUpstream(err); ok {
			r.writePlain("%s Spotify rejected the client credentials (status %d)\n", ui.Styles.Err("✗"), upstream.Status)
		}
		return fmt.Errorf("failed to fetch app token: %w", err)
	}

	r.writePlain("%s Client credentials accepted\n", ui.Styles.OK("✓"))
	r.writePlain("  Token:   %s\n", shared.Mask(tok.AccessToken))
	r.writePlain("  Expires: %s\n", tok.Expiry.Local().Format("2006-01-02 15:04:05"))
	return nil
}
