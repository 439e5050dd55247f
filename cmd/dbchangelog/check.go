package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/koba/db-changelog/changelog"
	"github.com/koba/db-changelog/custom"
	"github.com/koba/db-changelog/internal/expr"
	"github.com/koba/db-changelog/parser"
)

func runCheck(cmd *cobra.Command, args []string) error {
	cl, err := parser.ParseFile(args[0],
		changelog.WithProperties(cfg.Properties),
		changelog.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to parse changelog: %w", err)
	}
	printSummary(os.Stdout, cl)
	reportPlaceholders(os.Stdout, cl, cl.Properties)

	if !connect {
		return nil
	}
	ctx := cmd.Context()
	db, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	return validateCustomChanges(ctx, os.Stdout, cl, custom.NewDatabase(db.Type(), conn))
}

func printSummary(w io.Writer, cl *changelog.ChangeLog) {
	fmt.Fprintf(w, "%s: %d changesets\n", cl.FilePath, len(cl.ChangeSets))
	for _, cs := range cl.ChangeSets {
		fmt.Fprintf(w, "  %s (%d changes, %d rollback)\n", cs.Key(), len(cs.Changes), len(cs.Rollback))
		for _, c := range cs.Changes {
			fmt.Fprintf(w, "    - %s\n", c.Kind())
		}
	}
}

// reportPlaceholders lists the ${name} tokens kept in change fields, marking
// whether props binds them
func reportPlaceholders(w io.Writer, cl *changelog.ChangeLog, props map[string]string) {
	for _, cs := range cl.ChangeSets {
		for _, c := range slices.Concat(cs.Changes, cs.Rollback) {
			spec, ok := changelog.Lookup(c.Kind())
			if !ok {
				continue
			}
			for _, f := range spec.Fields(c) {
				p, ok := f.Ptr.(*string)
				if !ok {
					continue
				}
				for _, name := range expr.Placeholders(*p) {
					state := "unbound"
					if _, ok := props[name]; ok {
						state = "bound"
					}
					fmt.Fprintf(w, "  %s: %s.%s: ${%s} %s\n", cs.Key(), c.Kind(), f.Name, name, state)
				}
			}
		}
	}
}

// validateCustomChanges sets up and validates every custom change of the changelog.
// All failures are reported before returning an error.
func validateCustomChanges(ctx context.Context, w io.Writer, cl *changelog.ChangeLog, db custom.Database) error {
	failed := 0
	for _, cs := range cl.ChangeSets {
		for _, c := range slices.Concat(cs.Changes, cs.Rollback) {
			cc, ok := c.(*changelog.CustomChange)
			if !ok {
				continue
			}
			task, err := cc.Task()
			if err == nil {
				err = task.SetUp()
			}
			if err == nil {
				err = task.Validate(ctx, db).Err()
			}
			if err != nil {
				failed++
				fmt.Fprintf(w, "  %s: %s: %v\n", cs.Key(), cc.Class, err)
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", cs.Key(), task.ConfirmationMessage())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d custom changes failed validation", failed)
	}
	return nil
}
