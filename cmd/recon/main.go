// Command recon reconciles an ERP ledger against a vendor statement.
//
// Usage:
//
//	recon run -erp erp.xlsx -vendor vendor.csv [-push] [-json] [-report out.xlsx]
//	recon serve [-port 8080]
//	recon records list [-status Incomplete] [-vendor "acme*"]
package main

import (
	"os"

	"github.com/eshaffer321/ledger-recon/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:], os.Stdout, os.Stderr))
}
