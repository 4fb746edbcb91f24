package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sgb-go/internal/app"
	"sgb-go/internal/config"
	"sgb-go/internal/encryption"
	"sgb-go/internal/model"
	"sgb-go/internal/sgb"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	red := color.New(color.FgRed)
	var ve *sgb.ValidationError
	if errors.As(err, &ve) {
		red.Fprintln(os.Stderr, "Invalid input:")
		fields := make([]string, 0, len(ve.Fields))
		for f := range ve.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			red.Fprintf(os.Stderr, "  %s: %s\n", f, strings.Join(ve.Fields[f], "; "))
		}
		return
	}
	red.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, sgb.ErrQuotaExceeded) {
		fmt.Fprintln(os.Stderr, "Storage is full. Run `sgb store clear` or raise store.quota in the config.")
	}
}

// readPassphrase takes the passphrase from SGB_PASSPHRASE, or prompts on
// the terminal without echo.
func readPassphrase() (string, error) {
	if p := os.Getenv("SGB_PASSPHRASE"); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set SGB_PASSPHRASE")
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newApp reads the config and creates an SGBApp. The caller must defer app.Close().
func newApp(cmd *cobra.Command, operation string) (*app.SGBApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewSGBApp(cfg, operation, app.Options{Verbose: verbose, Passphrase: readPassphrase})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a fresh app and records its outcome in the log.
func withApp(cmd *cobra.Command, operation string, fn func(a *app.SGBApp) error) error {
	a, err := newApp(cmd, operation)
	if err != nil {
		return err
	}
	defer a.Close()

	err = fn(a)
	a.Fail(err)
	return err
}

var rootCmd = &cobra.Command{
	Use:           "sgb",
	Short:         "Analyze, share and discuss student records",
	SilenceErrors: true,
	SilenceUsage:  true,
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
		storeType, _ := cmd.Flags().GetString("store")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		userID := "user-" + uuid.New().String()
		cfg := config.NewConfig(userID, defaults.BaseDir)
		if storeType != "" {
			cfg.Store.Type = storeType
		}
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
			if err != nil {
				return err
			}
			passphrase, err := readPassphrase()
			if err != nil {
				return err
			}
			if err := enc.Setup(passphrase); err != nil {
				return fmt.Errorf("setting up encryption: %w", err)
			}
			fmt.Printf("Encryption keys written to %s\n", cfg.Encryption.PrivateKeyPath)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("User ID:  %s\n", userID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
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

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("User ID:    %s\n", cfg.UserID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store:      %s (quota %s)\n", cfg.Store.Type, cfg.Store.Quota)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Mask names: %v\n", cfg.Privacy.MaskNames)
		fmt.Printf("Analysis:   %s extractor, %s analyzer\n", cfg.Analysis.Extractor, cfg.Analysis.Analyzer)
		return nil
	},
}

// analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Analyze record pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		career, _ := cmd.Flags().GetString("career")
		out, _ := cmd.Flags().GetString("output")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return withApp(cmd, "analyze", func(a *app.SGBApp) error {
			rec, err := a.Analyze(ctx, args, career)
			if err != nil {
				return err
			}
			renderRecord(os.Stdout, rec)

			if err := app.WriteRecordFile(out, rec); err != nil {
				return err
			}
			fmt.Printf("\nResult written to %s. Store it with `sgb share %s` or `sgb save-private %s`.\n", out, out, out)
			return nil
		})
	},
}

// share command
var shareCmd = &cobra.Command{
	Use:   "share RESULT",
	Short: "Publish an analysis result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := model.ShareRequest{}
		req.StudentID, _ = cmd.Flags().GetString("student-id")
		req.Name, _ = cmd.Flags().GetString("name")
		req.AgreedToTerms, _ = cmd.Flags().GetBool("agree")
		req.IsPrivate, _ = cmd.Flags().GetBool("private")

		rec, err := app.ReadRecordFile(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd, "share", func(a *app.SGBApp) error {
			shared, err := a.Share(rec, req)
			if err != nil {
				return err
			}
			visibility := "publicly"
			if shared.IsPrivate {
				visibility = "privately"
			}
			fmt.Printf("Shared %s as %s (%s)\n", visibility, shared.StudentName, shared.ID)
			return nil
		})
	},
}

var savePrivateCmd = &cobra.Command{
	Use:   "save-private RESULT",
	Short: "Store an analysis result visible only to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := app.ReadRecordFile(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "save-private", func(a *app.SGBApp) error {
			saved, err := a.SaveAsPrivate(rec)
			if err != nil {
				return err
			}
			fmt.Printf("Saved privately (%s)\n", saved.ID)
			return nil
		})
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")
		return withApp(cmd, "list", func(a *app.SGBApp) error {
			records, err := a.List(scope)
			if err != nil {
				return err
			}
			renderRecords(os.Stdout, records, a.Interaction())
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an analysis and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "show", func(a *app.SGBApp) error {
			rec, err := a.Get(args[0])
			if err != nil {
				return err
			}
			renderRecord(os.Stdout, rec)
			return nil
		})
	},
}

// interaction commands
var likeCmd = &cobra.Command{
	Use:   "like ID",
	Short: "Like or unlike an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "like", func(a *app.SGBApp) error {
			d, err := a.ToggleLike(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", deltaVerb(d, "Liked", "Unliked"), args[0])
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save ID",
	Short: "Save or unsave an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "save", func(a *app.SGBApp) error {
			d, err := a.ToggleSave(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", deltaVerb(d, "Saved", "Unsaved"), args[0])
			return nil
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment ID TEXT",
	Short: "Comment on an analysis",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "comment", func(a *app.SGBApp) error {
			c, err := a.AddComment(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Comment %s posted as %s\n", c.ID, c.UserName)
			return nil
		})
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply ID COMMENT_ID TEXT",
	Short: "Reply to a comment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		return withApp(cmd, "reply", func(a *app.SGBApp) error {
			r, err := a.AddReply(args[0], args[1], parent, args[2])
			if err != nil {
				return err
			}
			fmt.Printf("Reply %s posted as %s\n", r.ID, r.UserName)
			return nil
		})
	},
}

// record management
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "delete", func(a *app.SGBApp) error {
			if err := a.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

func visibilityCmd(use, short string, private bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, use, func(a *app.SGBApp) error {
				if err := a.SetVisibility(args[0], private); err != nil {
					return err
				}
				fmt.Printf("%s is now %s\n", args[0], use)
				return nil
			})
		},
	}
}

// discovery commands
var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Most liked public analyses of the last 24 hours",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "trending", func(a *app.SGBApp) error {
			renderRecords(os.Stdout, a.Trending(), a.Interaction())
			return nil
		})
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [QUERY]",
	Short: "Recommended public analyses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		return withApp(cmd, "recommend", func(a *app.SGBApp) error {
			renderRecords(os.Stdout, a.Recommend(query), a.Interaction())
			return nil
		})
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Search public analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		sortBy, _ := cmd.Flags().GetString("sort")
		tab, _ := cmd.Flags().GetString("tab")
		return withApp(cmd, "explore", func(a *app.SGBApp) error {
			records, err := a.Explore(query, sortBy, tab)
			if err != nil {
				return err
			}
			renderRecords(os.Stdout, records, a.Interaction())
			return nil
		})
	},
}

// store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and maintain local storage",
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show storage usage and backend details",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "store-info", func(a *app.SGBApp) error {
			info, err := a.StoreInfo()
			if err != nil {
				return err
			}
			quota := "unlimited"
			if info.Quota > 0 {
				quota = humanize.Bytes(uint64(info.Quota))
			}
			fmt.Printf("Backend:   %s\n", info.Type)
			fmt.Printf("Encrypted: %v\n", info.Encrypted)
			fmt.Printf("Keys:      %d\n", info.Keys)
			fmt.Printf("Used:      %s of %s\n", humanize.Bytes(uint64(info.Size)), quota)
			if info.Type == "sqlite" {
				schema := "up to date"
				if info.Schema != nil {
					schema = info.Schema.Error()
				}
				fmt.Printf("Schema:    %s\n", schema)
				if !info.UpdatedAt.IsZero() {
					fmt.Printf("Updated:   %s\n", humanize.Time(info.UpdatedAt))
				}
			}
			return nil
		})
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all analyses and interactions, keeping session data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "store-clear", func(a *app.SGBApp) error {
			n, err := a.ClearCache()
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d key(s)\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Write log output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("store", "", "Store backend (memory, filesystem, sqlite, badger, redis, s3)")
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt stored values with a new age key pair")

	// analysis
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("career", "c", "", "Career direction to check alignment against")
	analyzeCmd.Flags().StringP("output", "o", "analysis.json", "Where to write the unshared result")
	rootCmd.AddCommand(shareCmd)
	shareCmd.Flags().String("student-id", "", "Student number")
	shareCmd.Flags().String("name", "", "Student name")
	shareCmd.Flags().Bool("agree", false, "Agree to the terms of sharing")
	shareCmd.Flags().Bool("private", false, "Store without publishing")
	rootCmd.AddCommand(savePrivateCmd)

	// browsing
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("scope", "public", "Which analyses to list: all, mine or public")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringP("query", "q", "", "Search by name, student id, strengths or improvements")
	exploreCmd.Flags().String("sort", "popular", "Sort order: recent or popular")
	exploreCmd.Flags().String("tab", "all", "all, or saved for your saved analyses")

	// interactions
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(replyCmd)
	replyCmd.Flags().String("parent", "", "Reply ID to answer within the comment")

	// record management
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(visibilityCmd("private", "Hide an analysis from others", true))
	rootCmd.AddCommand(visibilityCmd("public", "Publish a private analysis", false))

	// storage
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeInfoCmd)
	storeCmd.AddCommand(storeClearCmd)

	rootCmd.AddCommand(configCmd)
}
