// Package export implements program commands rendering tournament statistics.
package export

import (
	"context"
	"fmt"
	"image/color"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"statsnap/config"
	"statsnap/majors"
	"statsnap/raster"
	"statsnap/state"
	"statsnap/utils/images"
)

// Stats selection for render command.
const (
	OnlyAll    = "all"
	OnlyTeam   = "team"
	OnlyPlayer = "player"
)

// Run renders player and then team statistics of selected tournaments.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	only := cmd.String("only")
	switch only {
	case OnlyAll, OnlyTeam, OnlyPlayer:
	default:
		return fmt.Errorf("unknown stats selection %q, expected one of %s, %s, %s", only, OnlyAll, OnlyTeam, OnlyPlayer)
	}
	if cmd.Args().Len() > 0 {
		log.Warn("Malformed command line, unexpected arguments", zap.Strings("ignoring", cmd.Args().Slice()))
	}

	env.CodePage = resolveEncoding(env.Cfg.Input.Encoding, log)

	idx, err := majors.LoadTournaments(env.Cfg.Input.Tournaments, env.CodePage)
	if err != nil {
		return fmt.Errorf("unable to load tournaments: %w", err)
	}
	if idx, err = idx.Select(cmd.Int64Slice("event")); err != nil {
		return err
	}

	r, err := newRenderer(&env.Cfg.Render, log)
	if err != nil {
		return err
	}
	defer func() {
		if er := r.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to release renderer: %w", er))
		}
	}()

	opts, err := stylingOptions(env.Cfg)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("run", env.RunID), zap.Int("tournaments", idx.Len()), zap.String("only", only))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return render(ctx, env, idx, only, opts, r, log)
}

func render(ctx context.Context, env *state.LocalEnv, idx *majors.Tournaments, only string, opts majors.Options, p majors.Painter, log *zap.Logger) error {
	cfg := env.Cfg

	if only == OnlyAll || only == OnlyPlayer {
		snapshot(env.Rpt, "styles/player.css", cfg.Styles.Player, log)
		ps, err := majors.NewPlayerStats(cfg.Input.PlayerStats, cfg.Styles.Player, env.CodePage, traced(opts, env, "grids/player/"), cfg.Render.PageSize, cfg.Render.Pages, p, log)
		if err != nil {
			return fmt.Errorf("unable to load player stats: %w", err)
		}
		env.Rpt.Store("output/player", cfg.Output.PlayerDir)
		if err := majors.ExportAll(ctx, ps, idx, cfg.Output.PlayerDir); err != nil {
			return fmt.Errorf("player stats: %w", err)
		}
	}

	if only == OnlyAll || only == OnlyTeam {
		snapshot(env.Rpt, "styles/team.css", cfg.Styles.Team, log)
		ts, err := majors.NewTeamStats(cfg.Input.TeamStats, cfg.Styles.Team, env.CodePage, traced(opts, env, "grids/team/"), p, log)
		if err != nil {
			return fmt.Errorf("unable to load team stats: %w", err)
		}
		env.Rpt.Store("output/team", cfg.Output.TeamDir)
		if err := majors.ExportAll(ctx, ts, idx, cfg.Output.TeamDir); err != nil {
			return fmt.Errorf("team stats: %w", err)
		}
	}
	return nil
}

// snapshot copies path into the debug report. Report content is best effort,
// failures are only logged.
func snapshot(rpt *config.Report, name, path string, log *zap.Logger) {
	if err := rpt.StoreCopy(name, path); err != nil {
		log.Debug("Unable to add file to debug report", zap.String("name", name), zap.String("path", path), zap.Error(err))
	}
}

// traced adds grid dumps to the debug report when one is being collected.
func traced(opts majors.Options, env *state.LocalEnv, prefix string) majors.Options {
	if env.Rpt == nil {
		return opts
	}
	opts.Trace = func(name string, dump []byte) {
		env.Rpt.StoreData(prefix+name, dump)
	}
	return opts
}

// resolveEncoding finds input character set by IANA name, unknown names fall
// back to UTF-8.
func resolveEncoding(name string, log *zap.Logger) encoding.Encoding {
	if name == "" {
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", name), zap.Error(err))
		return nil
	}
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug("Decoding input tables", zap.String("charset", n))
	return enc
}

func newRenderer(cfg *config.RenderConfig, log *zap.Logger) (*raster.Renderer, error) {
	opts := raster.Options{DPI: cfg.DPI, FontSize: cfg.FontSize, Margin: cfg.Margin}
	if cfg.Logo.Path != "" {
		// logo height is given in CSS pixels
		h := int(float64(cfg.Logo.Height)*cfg.DPI/96 + 0.5)
		logo, err := images.LoadLogo(cfg.Logo.Path, h)
		if err != nil {
			return nil, fmt.Errorf("unable to load logo: %w", err)
		}
		opts.Logo = logo
	}
	return raster.New(opts, log)
}

func stylingOptions(cfg *config.Config) (majors.Options, error) {
	names, err := majors.NewNames(cfg.Output.TeamNameTemplate, cfg.Output.PlayerNameTemplate, cfg.Output.FileNameTransliterate)
	if err != nil {
		return majors.Options{}, err
	}

	pc := cfg.Render.Palette
	palette := majors.Palette{High: pc.High, Low: pc.Low}
	for _, c := range []struct {
		name  string
		value string
		dst   *color.Color
	}{
		{"positive", pc.Positive, &palette.Positive},
		{"negative", pc.Negative, &palette.Negative},
		{"neutral", pc.Neutral, &palette.Neutral},
	} {
		v, ok := raster.ParseColor(c.value)
		if !ok {
			return majors.Options{}, fmt.Errorf("invalid %s color %q", c.name, c.value)
		}
		*c.dst = v
	}
	return majors.Options{Precision: cfg.Render.Precision, Palette: palette, Names: names}, nil
}
