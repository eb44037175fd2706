// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"pii-analyzer/internal/help"
)

// RecognizersCmd lists the recognizers of a language or describes one
type RecognizersCmd struct {
	Name     string `arg:"" optional:"" help:"Recognizer to describe"`
	Language string `short:"l" help:"Language (default: configured default_language)"`
	Format   string `default:"text" enum:"text,json,yaml" help:"Output format: text, json or yaml"`
}

func (c *RecognizersCmd) Run(g *Globals) error {
	engine, _, _, err := g.buildEngine()
	if err != nil {
		return err
	}
	language := c.Language
	if language == "" {
		language = engine.DefaultLanguage()
	}
	infos, err := engine.Describe(language)
	if err != nil {
		return err
	}

	switch c.Format {
	case "json":
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(g.stdout, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(infos)
		if err != nil {
			return err
		}
		fmt.Fprint(g.stdout, string(data))
		return nil
	}

	system := help.NewSystem(g.stdout, g.colorDisabled(g.stdout))
	if c.Name == "" {
		system.ShowRecognizers(language, infos)
		return nil
	}
	if !system.ShowRecognizer(c.Name, infos) {
		return fmt.Errorf("unknown recognizer %q", c.Name)
	}
	return nil
}

// EntitiesCmd lists the entity types a language supports
type EntitiesCmd struct {
	Language string `short:"l" help:"Language (default: configured default_language)"`
}

func (c *EntitiesCmd) Run(g *Globals) error {
	engine, _, _, err := g.buildEngine()
	if err != nil {
		return err
	}
	entities, err := engine.Entities(c.Language)
	if err != nil {
		return err
	}
	for _, entity := range entities {
		fmt.Fprintln(g.stdout, entity)
	}
	return nil
}
