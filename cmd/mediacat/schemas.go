package main

import (
	"fmt"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/yaml"
)

// Run executes the schemas command.
func (c *SchemasCmd) Run(deps *Dependencies) error {
	registry := deps.Schemas
	if registry == nil {
		registry = mediacat.NewSchemaRegistry()
	}

	if c.Config != "" {
		cfg, err := yaml.Load(c.Config)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
			return err
		}
		if err := cfg.Register(registry); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
	}

	if c.Name == "" {
		for _, name := range registry.List() {
			fmt.Fprintln(deps.Stdout, name)
		}
		return nil
	}

	schema, err := registry.Lookup(c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'mediacat schemas' to see available schemas.\n", mediacat.ErrorMessage(err))
		return err
	}
	data, err := yaml.MarshalSchema(schema)
	if err != nil {
		return err
	}
	_, err = deps.Stdout.Write(data)
	return err
}
