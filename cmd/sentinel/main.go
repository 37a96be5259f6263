/*Offline analysis of a transaction export*/
package main

import (
	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
)

// globals holds options shared by every command
type globals struct {
	Compact bool `help:"Write single-line JSON instead of indented output."`
}

// cli commands / args available
var cli struct {
	Ctx globals `embed:""`

	Summary    summaryCmd    `cmd:"" help:"Print the monthly summary for a CSV export."`
	Duplicates duplicatesCmd `cmd:"" help:"Print recurring-charge clusters and their flags."`
	Classify   classifyCmd   `cmd:"" help:"Show how a single description would be categorized."`
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	ctx := kong.Parse(&cli)
	err := ctx.Run(&cli.Ctx)
	ctx.FatalIfErrorf(err)
}
