// Command filevault runs the FileVault file-hosting service.
package main

import (
	"os"

	"github.com/Gaganb-30/cloud-store/cmd/filevault/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%s", err)
		os.Exit(1)
	}
}
