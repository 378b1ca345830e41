package commands

import "testing"

func TestRootCmd_RegistersExpectedSubcommands(t *testing.T) {
	want := []string{"version", "serve", "migrate", "config", "admin"}

	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			if err != nil {
				t.Fatalf("expected %q to be registered: %v", name, err)
			}
			if cmd.Name() != name {
				t.Errorf("expected command name %q, got %q", name, cmd.Name())
			}
		})
	}
}

func TestRootCmd_HasPersistentConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("expected a persistent --config flag")
	}
}

func TestGetConfigFile_DefaultsEmpty(t *testing.T) {
	if GetConfigFile() != "" {
		t.Errorf("expected empty config file by default, got %q", GetConfigFile())
	}
}
