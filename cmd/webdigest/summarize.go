package main

import (
	"encoding/json"
	"fmt"

	"github.com/use-agent/webdigest/api/handler"
	"github.com/use-agent/webdigest/models"
)

// Run executes the summarize command.
func (c *SummarizeCmd) Run(deps *Dependencies) error {
	out, err := deps.Runner.Run(deps.Ctx, c.URL)
	if err != nil {
		de := models.AsDigestError(err)
		fmt.Fprintf(deps.Stderr, "error: [%s] %s\n", de.Code, de.Message)
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	if !c.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(handler.NewSummarizeResponse(out))
}
