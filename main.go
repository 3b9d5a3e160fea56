package main

import "github.com/rajramo61/aem-core-wcm-components/cmd"

func main() {
	cmd.Execute()
}
