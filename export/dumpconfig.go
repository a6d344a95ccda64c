package export

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"statsnap/config"
	"statsnap/state"
)

// DumpConfig writes default or effective configuration into the file named by
// the first argument, or to the command output when there is none.
func DumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	args := cmd.Args().Slice()
	if len(args) > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", args[1:]))
	}

	var (
		kind = "effective"
		data []byte
		err  error
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get %s configuration: %w", kind, err)
	}

	if len(args) == 0 {
		if _, err := cmd.Root().Writer.Write(data); err != nil {
			return fmt.Errorf("unable to write configuration: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", args[0], err)
	}
	env.Log.Info("Configuration written", zap.String("state", kind), zap.String("file", args[0]))
	return nil
}
