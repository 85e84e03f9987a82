// Command lotsawa manages per-line translation units for a Tibetan corpus:
// it generates and resynchronizes PO files, annotates units with dictionary
// entries, and renders translated units as plain-text reading copies.
package main

import "lotsawa/internal/cli"

func main() {
	cli.Execute()
}
