package main

import (
	"fmt"
	"net/url"

	"promotion-console/internal/models"
	"promotion-console/internal/view"

	"github.com/spf13/cobra"
)

// fieldFlags сопоставляет флаги командной строки с полями формы.
var fieldFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"id", models.FieldID, "Promotion id"},
	{"name", models.FieldName, "Promotion name"},
	{"start-date", models.FieldStartDate, "Start date"},
	{"end-date", models.FieldEndDate, "End date"},
	{"type", models.FieldType, "Promotion type"},
	{"value", models.FieldValue, "Discount value"},
	{"product-id", models.FieldProductID, "Product id"},
	{"ongoing", models.FieldOngoing, `Ongoing flag ("true" or "false")`},
}

type globalOptions struct {
	session string
	format  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "promoctl",
		Short:         "Create, edit and search promotions through the /promotions API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.session, "session", "", "Session name (overrides SESSION_NAME)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", view.FormatText, "Output format: text, html or json")

	cmd.AddCommand(
		newActionCmd(opts, models.ActionCreate, "Create a promotion from the form"),
		newActionCmd(opts, models.ActionUpdate, "Replace the promotion addressed by the form id"),
		newIDActionCmd(opts, models.ActionRetrieve, "Load a promotion into the form"),
		newIDActionCmd(opts, models.ActionDelete, "Delete a promotion"),
		newActionCmd(opts, models.ActionSearch, "Search promotions using the form as filters"),
		newClearCmd(opts),
		newShowCmd(opts),
		newShellCmd(opts),
	)
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case view.FormatText, view.FormatHTML, view.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
}

func addFieldFlags(cmd *cobra.Command) {
	for _, f := range fieldFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

// changedFields возвращает только явно переданные флаги полей.
func changedFields(cmd *cobra.Command) url.Values {
	values := url.Values{}
	for _, f := range fieldFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.flag)
		values.Set(f.field, v)
	}
	return values
}

// runAction собирает приложение, применяет правки формы, выполняет действие и печатает состояние.
func runAction(cmd *cobra.Command, opts *globalOptions, action models.Action, edits url.Values) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	app, err := buildApplication(cmd.Context(), opts.session)
	if err != nil {
		return err
	}
	defer app.Close()

	if len(edits) > 0 {
		if err := app.ctrl.SetFields(cmd.Context(), edits); err != nil {
			return err
		}
	}
	if action != "" {
		app.ctrl.Do(cmd.Context(), action)
	}
	return view.State(cmd.OutOrStdout(), app.ctrl.State(), opts.format)
}

func newActionCmd(opts *globalOptions, action models.Action, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, opts, action, changedFields(cmd))
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func newIDActionCmd(opts *globalOptions, action models.Action, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(action) + " [id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits := changedFields(cmd)
			if len(args) == 1 {
				edits.Set(models.FieldID, args[0])
			}
			return runAction(cmd, opts, action, edits)
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func newClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the form and the status line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, opts, models.ActionClear, nil)
		},
	}
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Apply any field flags, then print the form, status line and last search results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, opts, "", changedFields(cmd))
		},
	}
	addFieldFlags(cmd)
	return cmd
}
