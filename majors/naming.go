package majors

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"statsnap/config"
)

const imageExt = ".png"

// NameValues are variables available for output name template expansion.
type NameValues struct {
	ID    int64
	Page  int // 1 based, zero for team stats
	Event string
}

// Names expands output file name templates.
type Names struct {
	team          *template.Template
	player        *template.Template
	transliterate bool
}

// NewNames parses team and player file name templates.
func NewNames(teamTmpl, playerTmpl string, transliterate bool) (*Names, error) {
	team, err := parseNameTemplate(config.TeamNameTemplateFieldName, teamTmpl)
	if err != nil {
		return nil, err
	}
	player, err := parseNameTemplate(config.PlayerNameTemplateFieldName, playerTmpl)
	if err != nil {
		return nil, err
	}
	return &Names{team: team, player: player, transliterate: transliterate}, nil
}

// DefaultNames produces "{id}_team_stats.png" and "{id}_{page}_player_stats.png".
func DefaultNames() *Names {
	n, err := NewNames(config.DefaultTeamNameTemplate, config.DefaultPlayerNameTemplate, false)
	if err != nil {
		// this should never happen
		panic(err)
	}
	return n
}

func parseNameTemplate(name config.TemplateFieldName, field string) (*template.Template, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	return tmpl, nil
}

// Team returns file name for team stats image.
func (n *Names) Team(v NameValues) (string, error) {
	return n.expand(n.team, v)
}

// Player returns file name for player stats page.
func (n *Names) Player(v NameValues) (string, error) {
	return n.expand(n.player, v)
}

func (n *Names) expand(tmpl *template.Template, v NameValues) (string, error) {
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, v); err != nil {
		return "", fmt.Errorf("unable to expand %s: %w", tmpl.Name(), err)
	}
	name := buf.String()
	if n.transliterate {
		name = slug.Make(name)
	}
	return config.CleanFileName(name) + imageExt, nil
}
