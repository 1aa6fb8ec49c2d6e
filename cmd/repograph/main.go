// Command repograph ingests a Git repository's history into a property
// graph, either as a one-shot CLI walk or as a long-running HTTP trigger
// service, grounded on the original tool's CLI entrypoint and its
// offline/online backend-mode split.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
