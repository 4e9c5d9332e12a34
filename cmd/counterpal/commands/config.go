package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/counterpal/counterpal/cmd/counterpal/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage contexts and the assistant configuration.

A context is a named directory holding the counterpal.yaml config and
an optional menu.yaml catalog.

Examples:
  counterpal config list-contexts
  counterpal config add-context shop
  counterpal config use-context shop
  counterpal config current-context
  counterpal config set api_key sk-xxx
  counterpal config get api_key`,
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		names, err := cfg.ListContexts()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No contexts configured.")
			fmt.Println("Create one with: counterpal config add-context <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME")
		for _, name := range names {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\n", current, name)
		}
		w.Flush()
		return nil
	},
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Create a new context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.AddContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Context %q created.\n", args[0])
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context and its configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Context %q deleted.\n", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Switch the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to context %q.\n", args[0])
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Show the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			fmt.Println("No current context set.")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in the selected context",
	Long: `Set a configuration value.

Keys: api_key, live_model, vision_model, menu, archive_dir`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		dir, err := cfg.ResolveContext(contextName)
		if err != nil {
			return err
		}
		svc, err := config.LoadService(dir)
		if err != nil {
			return err
		}
		if err := setServiceKey(svc, args[0], args[1]); err != nil {
			return err
		}
		return config.SaveService(dir, svc)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value from the selected context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		dir, err := cfg.ResolveContext(contextName)
		if err != nil {
			return err
		}
		svc, err := config.LoadService(dir)
		if err != nil {
			return err
		}
		v, err := serviceKey(svc, args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

func setServiceKey(svc *config.Service, key, value string) error {
	switch key {
	case "api_key":
		svc.APIKey = value
	case "live_model":
		svc.LiveModel = value
	case "vision_model":
		svc.VisionModel = value
	case "menu":
		svc.Menu = value
	case "archive_dir":
		svc.ArchiveDir = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func serviceKey(svc *config.Service, key string) (string, error) {
	switch key {
	case "api_key":
		return svc.APIKey, nil
	case "live_model":
		return svc.LiveModel, nil
	case "vision_model":
		return svc.VisionModel, nil
	case "menu":
		return svc.Menu, nil
	case "archive_dir":
		return svc.ArchiveDir, nil
	}
	return "", fmt.Errorf("unknown key %q", key)
}

func init() {
	configCmd.AddCommand(
		configListContextsCmd,
		configAddContextCmd,
		configDeleteContextCmd,
		configUseContextCmd,
		configCurrentContextCmd,
		configSetCmd,
		configGetCmd,
	)
	rootCmd.AddCommand(configCmd)
}
