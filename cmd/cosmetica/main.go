package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"cosmetica/internal/cli"
)

func main() {
	// prices and totals travel as JSON numbers in responses and order events
	decimal.MarshalJSONWithoutQuotes = true
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
