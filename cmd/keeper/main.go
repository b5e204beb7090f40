// Command keeper loads record sources and queries the resulting model.
package main

import "github.com/mesh-intelligence/recordkeeper/internal/cli"

func main() {
	cli.Execute()
}
