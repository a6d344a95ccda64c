package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"statsnap/config"
	"statsnap/majors"
	"statsnap/state"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// testEnv prepares program environment with inputs located in a temporary
// directory.
func testEnv(t *testing.T) (context.Context, *state.LocalEnv, string) {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Input.Tournaments = filepath.Join(dir, "data", "majors.csv")
	cfg.Input.PlayerStats = filepath.Join(dir, "data", "majors_player_stats.csv")
	cfg.Input.TeamStats = filepath.Join(dir, "data", "majors_team_stats.csv")
	cfg.Styles.Player = filepath.Join(dir, "css", "player_stats.css")
	cfg.Styles.Team = filepath.Join(dir, "css", "team_stats.css")
	cfg.Output.PlayerDir = filepath.Join(dir, "img", "player_stats")
	cfg.Output.TeamDir = filepath.Join(dir, "img", "team_stats")
	cfg.Render.DPI = 96

	writeFile(t, cfg.Input.Tournaments, ",Event,Year\n1,Major A,2019\n10,Major J,2022\n2,Major B,2021\n")

	var players strings.Builder
	players.WriteString("Player,Event ID,Rounds,Rating1.0,Rating2.0\n")
	for i := range 20 {
		fmt.Fprintf(&players, "p%d,1,%d,,1.%02d\n", i, 100+i, i)
	}
	players.WriteString("q,2,40,0.90,\n")
	writeFile(t, cfg.Input.PlayerStats, players.String())

	writeFile(t, cfg.Input.TeamStats, "Team,Event ID,Maps,Rating1.0,Rating2.0\n"+
		"NAVI,1,9,,1.07\nG2,1,7,,1.01\nFaZe,1,5,,0.95\nVP,1,4,,0.93\nMIBR,1,3,,0.88\nSK,2,8,1.12,\n")

	writeFile(t, cfg.Styles.Player, "caption { font-weight: bold }\ntbody tr:nth-child(even) { background-color: #eeeeee }\n")
	writeFile(t, cfg.Styles.Team, "th, td { padding: 2px 6px }\n")

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx, env, dir
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:   "render",
		Action: Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "only", Value: OnlyAll},
			&cli.Int64SliceFlag{Name: "event"},
		},
	}
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_All(t *testing.T) {
	ctx, env, _ := testEnv(t)
	if err := renderCommand().Run(ctx, []string{"render", "--event", "1", "--event", "2"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	team := listFiles(t, env.Cfg.Output.TeamDir)
	if want := []string{"1_team_stats.png", "2_team_stats.png"}; !slices.Equal(team, want) {
		t.Errorf("team images = %v, want %v", team, want)
	}
	player := listFiles(t, env.Cfg.Output.PlayerDir)
	if len(player) != 10 {
		t.Errorf("player images = %v, want 5 per tournament", player)
	}
	if !slices.Contains(player, "2_5_player_stats.png") {
		t.Errorf("empty trailing pages must be written: %v", player)
	}
}

func TestRun_OnlyTeam(t *testing.T) {
	ctx, env, _ := testEnv(t)
	// tournament 10 has no rows and still gets an image
	if err := renderCommand().Run(ctx, []string{"render", "--only", "team"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := listFiles(t, env.Cfg.Output.TeamDir); len(got) != 3 {
		t.Errorf("team images = %v, want 3", got)
	}
	if got := listFiles(t, env.Cfg.Output.PlayerDir); len(got) != 0 {
		t.Errorf("player images must not be produced: %v", got)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("bad_selection", func(t *testing.T) {
		ctx, _, _ := testEnv(t)
		if err := renderCommand().Run(ctx, []string{"render", "--only", "coach"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown_event", func(t *testing.T) {
		ctx, _, _ := testEnv(t)
		err := renderCommand().Run(ctx, []string{"render", "--event", "77"})
		if !errors.Is(err, majors.ErrUnknownTournament) {
			t.Errorf("error = %v, want ErrUnknownTournament", err)
		}
	})

	t.Run("ambiguous_rating", func(t *testing.T) {
		ctx, env, _ := testEnv(t)
		writeFile(t, env.Cfg.Input.TeamStats, "Team,Event ID,Rating1.0,Rating2.0\nNAVI,1,1.1,1.2\n")
		err := renderCommand().Run(ctx, []string{"render", "--only", "team", "--event", "1"})
		if !errors.Is(err, majors.ErrAmbiguousRating) || !strings.Contains(err.Error(), "tournament 1") {
			t.Errorf("error = %v, want ErrAmbiguousRating for tournament 1", err)
		}
	})

	t.Run("missing_stylesheet", func(t *testing.T) {
		ctx, env, _ := testEnv(t)
		env.Cfg.Styles.Team = filepath.Join(t.TempDir(), "absent.css")
		if err := renderCommand().Run(ctx, []string{"render", "--only", "team"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, _, _ := testEnv(t)
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := Run(ctx, renderCommand()); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestStylingOptions(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := stylingOptions(cfg)
	if err != nil {
		t.Fatalf("stylingOptions() error = %v", err)
	}
	def := majors.DefaultPalette()
	if opts.Palette != def {
		t.Errorf("palette = %+v, want %+v", opts.Palette, def)
	}
	if opts.Precision != 2 {
		t.Errorf("precision = %d", opts.Precision)
	}

	cfg.Render.Palette.Neutral = "grayish"
	if _, err := stylingOptions(cfg); err == nil {
		t.Error("expected error for invalid color")
	}
	cfg.Render.Palette.Neutral = "gray"
	cfg.Output.TeamNameTemplate = "{{ .ID"
	if _, err := stylingOptions(cfg); err == nil {
		t.Error("expected error for invalid template")
	}
}

func TestResolveEncoding(t *testing.T) {
	log := zaptest.NewLogger(t)
	if enc := resolveEncoding("", log); enc != nil {
		t.Error("empty name must mean UTF-8")
	}
	if enc := resolveEncoding("windows-1252", log); enc == nil {
		t.Error("windows-1252 must be known")
	}
	if enc := resolveEncoding("no-such-charset", log); enc != nil {
		t.Error("unknown charset must fall back to UTF-8")
	}
}

func TestList(t *testing.T) {
	ctx, _, _ := testEnv(t)

	var buf bytes.Buffer
	cmd := &cli.Command{
		Name:   "list",
		Writer: &buf,
		Action: List,
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "by-name"}},
	}
	if err := cmd.Run(ctx, []string{"list", "--by-name"}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("output:\n%s", buf.String())
	}
	var order []string
	for _, l := range lines[1:] {
		order = append(order, strings.Fields(l)[0])
	}
	// Major A, Major B, Major J
	if !slices.Equal(order, []string{"1", "2", "10"}) {
		t.Errorf("order = %v", order)
	}
	if f := strings.Fields(lines[1]); f[len(f)-2] != "20" || f[len(f)-1] != "5" {
		t.Errorf("counts for Major A = %v", f)
	}
}

func TestDumpConfig(t *testing.T) {
	ctx, env, dir := testEnv(t)

	dumpCommand := func(out *bytes.Buffer) *cli.Command {
		return &cli.Command{
			Name:   "dumpconfig",
			Writer: out,
			Action: DumpConfig,
			Flags:  []cli.Flag{&cli.BoolFlag{Name: "default"}},
		}
	}

	var buf bytes.Buffer
	if err := dumpCommand(&buf).Run(ctx, []string{"dumpconfig"}); err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}
	if !strings.Contains(buf.String(), env.Cfg.Input.TeamStats) {
		t.Errorf("effective configuration lacks team stats path:\n%s", buf.String())
	}

	dst := filepath.Join(dir, "default.yaml")
	buf.Reset()
	if err := dumpCommand(&buf).Run(ctx, []string{"dumpconfig", "--default", dst}); err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing expected on output when destination is given, got %q", buf.String())
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `team_name_template: "{{ .ID }}_team_stats"`) {
		t.Errorf("default configuration:\n%s", data)
	}
}

func TestRun_DebugReportHoldsGridDumps(t *testing.T) {
	ctx, env, dir := testEnv(t)
	rc := config.ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	env.Rpt = rpt

	if err := renderCommand().Run(ctx, []string{"render", "--only", OnlyTeam, "--event", "1"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatal(err)
	}

	arc, err := zip.OpenReader(rc.Destination)
	if err != nil {
		t.Fatal(err)
	}
	defer arc.Close()
	var names []string
	for _, f := range arc.File {
		names = append(names, f.Name)
	}
	for _, want := range []string{"grids/team/1_team_stats.txt", "styles/team.css", "output/team/1_team_stats.png"} {
		if !slices.Contains(names, want) {
			t.Errorf("report entries %v lack %s", names, want)
		}
	}
}

func TestSnapshot_LogsFailure(t *testing.T) {
	dir := t.TempDir()
	rc := config.ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	defer rpt.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	snapshot(rpt, "styles/team.css", filepath.Join(dir, "missing.css"), zap.New(core))

	entries := logs.FilterMessage("Unable to add file to debug report").All()
	if len(entries) != 1 {
		t.Fatalf("logged %v, want single entry", logs.All())
	}
	if got := entries[0].ContextMap()["name"]; got != "styles/team.css" {
		t.Errorf("name = %v", got)
	}

	// nil report ignores everything
	snapshot(nil, "styles/team.css", filepath.Join(dir, "missing.css"), zap.New(core))
	if logs.Len() != 1 {
		t.Errorf("nil report must not log, got %v", logs.All())
	}
}
