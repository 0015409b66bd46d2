// Command datatables serves tables described by a YAML definition file over
// the DataTables server-side protocol, or runs a single query from the shell.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
