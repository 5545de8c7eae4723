package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"propsite/internal/app"
	"propsite/internal/domain"
)

// parseLocalized turns repeated --name values into a LocalizedValue: "fr=Villa X" adds a
// translation, a single value without a language prefix stays plain.
func parseLocalized(values []string) domain.LocalizedValue {
	var ts []domain.Translation
	for _, v := range values {
		lang, text, ok := strings.Cut(v, "=")
		if !ok || !domain.IsSupportedLanguage(strings.ToLower(lang)) {
			if len(values) == 1 {
				return domain.Plain(v)
			}
			lang, text = domain.DefaultLanguage, v
		}
		ts = append(ts, domain.Translation{Lang: strings.ToLower(lang), Text: text})
	}
	return domain.Translated(ts...)
}

func createCmd() *cobra.Command {
	var names, langs []string
	var status string
	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Create an unpublished property shell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) == 0 {
				return fmt.Errorf("--name is required")
			}
			in := app.CreateShellInput{Name: parseLocalized(names), Status: status, ListingLanguages: langs}
			if len(args) == 1 {
				in.ID = args[0]
			}
			id, err := props.CreateShell(context.Background(), localSession(), in)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(map[string]string{"id": id})
			}
			fmt.Printf("created %s (draft)\n", id)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&names, "name", nil, `Name, repeatable as lang=text (e.g. --name "en=Villa X" --name "fr=Villa X")`)
	cmd.Flags().StringVar(&status, "status", domain.StatusRental, "rental or sale")
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Listing languages (default en)")
	return cmd
}

func updateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Write a new draft from a JSON patch of top-level fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch map[string]json.RawMessage
			if err := readJSONFile(file, &patch); err != nil {
				return err
			}
			stamp, err := props.Update(context.Background(), localSession(), args[0], patch)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(map[string]string{"version": stamp})
			}
			fmt.Printf("draft %s saved\n", stamp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Patch file (- for stdin)")
	return cmd
}

func publishCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "publish [id]",
		Short: "Publish the newest draft",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if all {
				rep, err := props.PublishAll(ctx, localSession())
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(rep)
				}
				for _, id := range rep.Published {
					fmt.Printf("published %s\n", id)
				}
				for id, msg := range rep.Failed {
					fmt.Printf("FAILED %s: %s\n", id, msg)
				}
				if len(rep.Failed) > 0 {
					return fmt.Errorf("%d properties failed to publish", len(rep.Failed))
				}
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("property id or --all is required")
			}
			ok, err := props.Publish(ctx, localSession(), args[0])
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(map[string]bool{"published": ok})
			}
			if !ok {
				fmt.Printf("%s has no draft; nothing to publish\n", args[0])
				return nil
			}
			fmt.Printf("published %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Publish every property with pending drafts")
	return cmd
}

func revertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <id>",
		Short: "Discard the newest draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := props.Revert(context.Background(), localSession(), args[0]); err != nil {
				return err
			}
			fmt.Printf("reverted newest draft of %s\n", args[0])
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	var lang string
	var published, raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a property resolved for a language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if raw {
				p, err := props.Latest(ctx, localSession(), args[0])
				if err != nil {
					return err
				}
				return printJSON(p)
			}
			var (
				v   domain.PropertyView
				err error
			)
			if published {
				v, err = queries.GetProperty(ctx, args[0], lang)
			} else {
				v, err = props.Preview(ctx, localSession(), args[0], lang)
			}
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(v)
			}
			fmt.Printf("%s  %s  [%s]  version %s  published=%v\n", v.ID, v.Name, v.Language, v.Version, v.IsPublished)
			if v.Summary != "" {
				fmt.Println(v.Summary)
			}
			for _, pg := range v.Pages {
				fmt.Printf("  /%s  %s (%d sections)\n", pg.Slug, pg.Title, len(pg.Sections))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Language (default from DEFAULT_LANG)")
	cmd.Flags().BoolVar(&published, "published", false, "Show the published record instead of the latest draft")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored latest record unresolved")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := props.List(context.Background(), localSession())
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(out)
			}
			for _, s := range out {
				state := "published"
				switch {
				case s.HasDraft && s.IsPublished:
					state = "published+draft"
				case s.HasDraft:
					state = "draft"
				}
				fmt.Printf("%-24s %-16s %-7s %s  %s\n", s.ID, state, s.Status, s.Version, s.Name)
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "List drafts and archived versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := props.History(context.Background(), localSession(), args[0])
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(h)
			}
			for _, d := range h.Drafts {
				fmt.Printf("draft    %s\n", d)
			}
			for _, a := range h.Archive {
				fmt.Printf("archive  %s\n", a)
			}
			return nil
		},
	}
}
