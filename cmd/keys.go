package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagKeysProject string
	flagKeysYes     bool
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List and delete project API keys (requires an admin API key)",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys of one project or of every project",
	RunE:  runKeysList,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <project-id> <key-id>",
	Short: "Delete one API key",
	Args:  cobra.ExactArgs(2),
	RunE:  runKeysDelete,
}

var keysBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete [project-id:key-id ...]",
	Short: "Delete several API keys; without arguments, pick them interactively",
	RunE:  runKeysBulkDelete,
}

func init() {
	keysListCmd.Flags().StringVarP(&flagKeysProject, "project", "p", "", "Only list keys of this project")
	keysBulkDeleteCmd.Flags().StringVarP(&flagKeysProject, "project", "p", "", "Only offer keys of this project")
	keysDeleteCmd.Flags().BoolVarP(&flagKeysYes, "yes", "y", false, "Do not ask for confirmation")
	keysBulkDeleteCmd.Flags().BoolVarP(&flagKeysYes, "yes", "y", false, "Do not ask for confirmation")
	keysCmd.AddCommand(keysListCmd, keysDeleteCmd, keysBulkDeleteCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysList(cmd *cobra.Command, _ []string) error {
	keys, err := fetchKeys(cmd)
	if err != nil {
		return err
	}
	loc, err := location()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		lastUsed := "-"
		if k.LastUsedAt != nil {
			lastUsed = cli.FormatUnixDate(*k.LastUsedAt, loc)
		}
		rows = append(rows, []string{
			k.ProjectName,
			k.Name,
			k.RedactedValue,
			keyOwner(k),
			cli.FormatUnixDate(k.CreatedAt, loc),
			lastUsed,
			k.ID,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("API keys (%d)", len(keys)),
		Headers: []string{"Project", "Name", "Key", "Owner", "Created", "Last used", "ID"},
		Rows:    rows,
	}))
	return nil
}

func fetchKeys(cmd *cobra.Command) ([]model.APIKey, error) {
	client, err := newOrgClient()
	if err != nil {
		return nil, err
	}
	if flagKeysProject == "" {
		keys, err := client.ListAllAPIKeys(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("listing API keys: %w", err)
		}
		return keys, nil
	}

	keys, err := client.ListProjectAPIKeys(cmd.Context(), flagKeysProject)
	if err != nil {
		return nil, fmt.Errorf("listing API keys of %s: %w", flagKeysProject, err)
	}
	for i := range keys {
		keys[i].ProjectID = flagKeysProject
		keys[i].ProjectName = flagKeysProject
	}
	return keys, nil
}

func keyOwner(k model.APIKey) string {
	if k.Owner.User != nil {
		if k.Owner.User.Email != "" {
			return k.Owner.User.Email
		}
		return k.Owner.User.Name
	}
	return k.Owner.Type
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	ref := model.KeyRef{ProjectID: args[0], APIKeyID: args[1]}
	if !flagKeysYes {
		ok, err := confirm(fmt.Sprintf("Delete API key %s of project %s?", ref.APIKeyID, ref.ProjectID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	client, err := newOrgClient()
	if err != nil {
		return err
	}
	if err := client.DeleteAPIKey(cmd.Context(), ref.ProjectID, ref.APIKeyID); err != nil {
		return fmt.Errorf("deleting key %s: %w", ref.APIKeyID, err)
	}
	fmt.Printf("  Deleted key %s\n", ref.APIKeyID)
	return nil
}

func runKeysBulkDelete(cmd *cobra.Command, args []string) error {
	var refs []model.KeyRef
	if len(args) > 0 {
		for _, arg := range args {
			ref, err := parseKeyRef(arg)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
	} else {
		keys, err := fetchKeys(cmd)
		if err != nil {
			return err
		}
		refs, err = pickKeys(keys)
		if err != nil {
			return err
		}
	}
	if len(refs) == 0 {
		fmt.Println("  Nothing to delete.")
		return nil
	}

	if !flagKeysYes {
		ok, err := confirm(fmt.Sprintf("Delete %d API keys?", len(refs)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	client, err := newOrgClient()
	if err != nil {
		return err
	}
	result := client.BulkDeleteAPIKeys(cmd.Context(), refs)

	fmt.Printf("  Deleted %d of %d keys\n", len(result.Success), len(refs))
	for _, f := range result.Failed {
		fmt.Println(cli.Warn(fmt.Sprintf("  Failed %s/%s: %s", f.ProjectID, f.APIKeyID, f.Error)))
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d key deletions failed", len(result.Failed))
	}
	return nil
}

// parseKeyRef parses "project-id:key-id".
func parseKeyRef(s string) (model.KeyRef, error) {
	project, key, ok := strings.Cut(s, ":")
	if !ok || project == "" || key == "" {
		return model.KeyRef{}, fmt.Errorf("invalid key reference %q: want project-id:key-id", s)
	}
	return model.KeyRef{ProjectID: project, APIKeyID: key}, nil
}

func pickKeys(keys []model.APIKey) ([]model.KeyRef, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	byValue := make(map[string]model.KeyRef, len(keys))
	options := make([]huh.Option[string], 0, len(keys))
	for _, k := range keys {
		ref := model.KeyRef{ProjectID: k.ProjectID, APIKeyID: k.ID, KeyName: k.Name}
		value := ref.ProjectID + ":" + ref.APIKeyID
		byValue[value] = ref
		label := fmt.Sprintf("%s  %s  %s  (%s)", k.ProjectName, k.Name, k.RedactedValue, keyOwner(k))
		options = append(options, huh.NewOption(label, value))
	}

	var selected []string
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Select API keys to delete").
			Options(options...).
			Filterable(true).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	refs := make([]model.KeyRef, 0, len(selected))
	for _, v := range selected {
		refs = append(refs, byValue[v])
	}
	return refs, nil
}

// confirm asks a yes/no question. An aborted prompt counts as no.
func confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
