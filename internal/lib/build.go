// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// buildStep is a set of tool invocations run inside trunk when a marker
// file is present there.
type buildStep struct {
	marker string
	notice string
	cmds   []buildCmd
}

type buildCmd struct {
	name       string
	args       []string
	hideStderr bool
}

var buildSteps = []buildStep{
	{
		marker: "composer.json",
		notice: "A composer.json file is present, running composer install",
		cmds:   []buildCmd{{name: "composer", args: []string{"install"}}},
	},
	{
		marker: "package.json",
		notice: "A package.json file is present, running npm install --production",
		cmds: []buildCmd{
			{name: "npm", args: []string{"install", "--production"}},
			// Runs preprocessors such as gulp, grunt or webpack.
			// Most projects have no build script.
			{name: "npm", args: []string{"run", "build"}, hideStderr: true},
		},
	},
}

// runBuildTools runs every build step whose marker exists in trunk and
// returns the number of commands run. Results are discarded.
func (s *Syncer) runBuildTools(ctx context.Context, log zerolog.Logger, runner Runner, trunk string) int {
	var ran int
	for _, step := range buildSteps {
		if _, err := os.Stat(filepath.Join(trunk, step.marker)); err != nil {
			continue
		}
		log.Info().Msg(step.notice)
		for _, bc := range step.cmds {
			c := Command{Dir: trunk, Name: bc.name, Args: bc.args, Stdout: s.out, Stderr: s.out}
			if bc.hideStderr {
				c.Stderr = nil
			}
			bestEffort(log, runner.Run(ctx, c))
			ran++
		}
	}
	return ran
}
