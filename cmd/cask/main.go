package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cask-go/internal/app"
	"cask-go/internal/cask"
	"cask-go/internal/config"
	"cask-go/internal/ipc"
	"cask-go/internal/metadata"
	"cask-go/internal/pack"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the config file from its default (or CASK_CONFIG_PATH) location.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a CaskApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Resolve", "Serve").
func newApp(operation string) (*app.CaskApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewCaskApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptBuildID reads the build identifier without echoing it to the terminal.
func promptBuildID() (string, error) {
	fmt.Fprint(os.Stderr, "Build ID: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading build id: %w", err)
	}
	return string(raw), nil
}

var rootCmd = &cobra.Command{
	Use:   "cask",
	Short: "Encrypted game asset bundle tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"], defaults["install_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Container: %s\n", cfg.Bundle.ContainerPath)
		fmt.Printf("Socket:    %s\n", cfg.IPC.SocketPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Container:  %s\n", cfg.Bundle.ContainerPath)
		fmt.Printf("Metadata:   %s\n", cfg.Bundle.MetadataPath)
		fmt.Printf("Dev Assets: %s\n", cfg.Bundle.DevAssetsDir)
		fmt.Printf("Socket:     %s\n", cfg.IPC.SocketPath)
		fmt.Printf("History:    %s\n", cfg.History.Type)
		fmt.Printf("Vault:      %s\n", cfg.Vault.Type)
		return nil
	},
}

// resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the asset bundle once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Resolve")
		if err != nil {
			return err
		}
		defer a.Close()

		bundle, err := a.Resolve(cmd.Context())
		if err != nil {
			return fmt.Errorf("resolution failed (%s): %w", cask.ErrorKind(err), err)
		}

		mode := "encrypted"
		if bundle.DevMode {
			mode = "dev"
		}
		fmt.Printf("Mode:   %s\n", mode)
		fmt.Printf("Assets: %s\n", bundle.Path)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Resolve the bundle and answer consumer queries on the socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Serve(ctx)
	},
}

// query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a running cask server",
}

func queryClient(cmd *cobra.Command) (*ipc.Client, context.Context, context.CancelFunc, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return ipc.NewClient(cfg.IPC.SocketPath), ctx, cancel, nil
}

var queryAssetsPathCmd = &cobra.Command{
	Use:   "assets-path",
	Short: "Print the resolved assets path",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, ctx, cancel, err := queryClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		path, err := client.AssetsPath(ctx)
		if err != nil {
			return fmt.Errorf("query failed (%s): %w", cask.ErrorKind(err), err)
		}
		fmt.Println(path)
		return nil
	},
}

var queryDevModeCmd = &cobra.Command{
	Use:   "dev-mode",
	Short: "Print whether the bundle resolved in dev mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, ctx, cancel, err := queryClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		dev, err := client.DevMode(ctx)
		if err != nil {
			return fmt.Errorf("query failed (%s): %w", cask.ErrorKind(err), err)
		}
		fmt.Println(dev)
		return nil
	},
}

// pack command
var packCmd = &cobra.Command{
	Use:   "pack ASSET_DIR",
	Short: "Archive, seal, and write bundle artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buildID, _ := cmd.Flags().GetString("build-id")
		algorithm, _ := cmd.Flags().GetString("algorithm")
		outDir, _ := cmd.Flags().GetString("out")
		release, _ := cmd.Flags().GetString("publish")

		if buildID == "" {
			var err error
			buildID, err = promptBuildID()
			if err != nil {
				return err
			}
		}

		assetDir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving asset dir: %w", err)
		}

		a, err := newApp("Pack")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Pack(cmd.Context(), pack.Options{
			AssetDir:  assetDir,
			OutDir:    outDir,
			BuildID:   buildID,
			Algorithm: algorithm,
		}, release)
		if err != nil {
			return fmt.Errorf("packing: %w", err)
		}

		fmt.Printf("Packed %d entries (%s)\n", result.Entries, result.Algorithm)
		fmt.Printf("Container: %s\n", result.ContainerPath)
		fmt.Printf("Metadata:  %s\n", result.MetadataPath)
		if release != "" {
			fmt.Printf("Published release: %s\n", release)
		}
		return nil
	},
}

// fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch RELEASE ARTIFACT",
	Short: "Download a published artifact from the vault",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		release, name := args[0], args[1]

		a, err := newApp("Fetch")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()

		if err := a.Fetch(cmd.Context(), release, name, f); err != nil {
			os.Remove(name)
			return err
		}

		fmt.Printf("Fetched %s from release %s\n", name, release)
		return nil
	},
}

// inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [METADATA_FILE]",
	Short: "Show bundle metadata",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) > 0 {
			path = args[0]
		} else {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			path = cfg.Bundle.MetadataPath
		}

		md, err := metadata.Load(path)
		if err != nil {
			return fmt.Errorf("loading metadata (%s): %w", cask.ErrorKind(err), err)
		}

		// The build id derives the decryption key and is never printed.
		fmt.Printf("Algorithm:      %s\n", md.Algorithm)
		fmt.Printf("Key Derivation: %s\n", md.KeyDerivation)
		fmt.Printf("Build ID:       (redacted, %d bytes)\n", len(md.BuildID))
		fmt.Printf("IV:             %d bytes\n", len(md.IV))
		fmt.Printf("Auth Tag:       %d bytes\n", len(md.AuthTag))
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View resolution history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println("No resolutions recorded.")
			return nil
		}

		for _, r := range recs {
			detail := r.AssetsPath
			if r.Outcome != "resolved" {
				detail = r.ErrorKind
			}
			duration := r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond).String()
			fmt.Printf("#%d  %-9s  %s  %-8s  %s  %s\n",
				r.ID,
				r.Mode,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Outcome,
				duration,
				detail,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// query subcommands
	queryCmd.AddCommand(queryAssetsPathCmd)
	queryCmd.AddCommand(queryDevModeCmd)
	queryCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Time to wait for the server to settle")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().String("build-id", "", "Build identifier (prompted when omitted)")
	packCmd.Flags().String("algorithm", "", "Sealing algorithm: aes-256-gcm (default) or age")
	packCmd.Flags().String("out", ".", "Output directory for the artifacts")
	packCmd.Flags().String("publish", "", "Release label to publish the artifacts under")
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of resolutions to show")
}
