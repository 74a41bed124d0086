package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/use-agent/webdigest/models"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	summaries, err := deps.Store.FindAll(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.AsDigestError(err).Message)
		return err
	}

	if c.JSON {
		if summaries == nil {
			summaries = []*models.PersistedSummary{}
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(deps.Stdout, "No summaries found. Use 'webdigest summarize <url>' to create one.")
		return nil
	}

	for _, s := range summaries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n",
			s.ID, s.CreatedAt.UTC().Format(time.RFC3339), s.WebsiteLink, s.Result.Name)
	}
	return nil
}
