// Command textsteg hides and recovers payloads in plain-text cover corpora.
package main

import "textsteg/cmd"

func main() {
	cmd.Execute()
}
