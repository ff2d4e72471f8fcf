package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sethrj/iphone-message-export/internal/config"
	"github.com/sethrj/iphone-message-export/internal/contacts"
	"github.com/sethrj/iphone-message-export/internal/export"
	"github.com/sethrj/iphone-message-export/internal/manifest"
	"github.com/sethrj/iphone-message-export/internal/smsdb"
)

var version = "0.1.0-dev"

const dateLayout = "2006-01-02"

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "imsgexport",
	Short: "Export iPhone messages and attachments from a local backup",
}

var exportCmd = &cobra.Command{
	Use:   "export SOURCE DEST",
	Short: "Export every chat in a backup as JSON with attachments",
	Long: `Export every chat in an unencrypted iPhone backup directory (one
device folder under the MobileSync backup root) as a JSON transcript per
chat, with attachment files copied alongside.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minFlag, _ := cmd.Flags().GetString("min-date")
		maxFlag, _ := cmd.Flags().GetString("max-date")
		contactsPath, _ := cmd.Flags().GetString("contacts")
		workers, _ := cmd.Flags().GetInt("workers")

		log := newLogger()
		opts := smsdb.Options{Logger: log}

		var err error
		if opts.MinDate, err = parseDate(minFlag); err != nil {
			return fmt.Errorf("invalid --min-date: %w", err)
		}
		if opts.MaxDate, err = parseDate(maxFlag); err != nil {
			return fmt.Errorf("invalid --max-date: %w", err)
		}

		cfg := config.Load()
		if contactsPath == "" {
			contactsPath = cfg.ContactsPath
		}
		var aliases map[string]string
		if contactsPath != "" {
			if aliases, err = contacts.Load(contactsPath); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(args[1], 0o755); err != nil {
			return fmt.Errorf("creating destination: %w", err)
		}

		m, err := manifest.Open(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		db, err := smsdb.Open(m, opts)
		if err != nil {
			return err
		}
		defer db.Close()

		chats, err := db.Chats()
		if err != nil {
			return err
		}
		log.Info("starting export", "chats", len(chats), "destination", args[1])

		e := &export.Exporter{DB: db, Aliases: aliases, Log: log}
		res, err := e.ExportAll(chats, args[1], workers)
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d chat(s), skipped %d with no messages\n", res.Exported, res.Skipped)
		return nil
	},
}

var chatsCmd = &cobra.Command{
	Use:   "chats SOURCE",
	Short: "List chats in a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Open(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		db, err := smsdb.Open(m, smsdb.Options{Logger: newLogger()})
		if err != nil {
			return err
		}
		defer db.Close()

		chats, err := db.Chats()
		if err != nil {
			return err
		}
		for _, c := range chats {
			fmt.Printf("%d\t%s\t%s\n", c.ID, c.Identifier, c.GUID)
		}
		return nil
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print default paths and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return printJSON(map[string]interface{}{
			"backup_root": cfg.BackupRoot,
			"contacts":    cfg.ContactsPath,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(map[string]interface{}{
			"version": version,
		})
	},
}

// parseDate parses a day-granularity date flag; empty means unbounded.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("min-date", "", "Only export messages on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().String("max-date", "", "Only export messages before this date (YYYY-MM-DD)")
	exportCmd.Flags().String("contacts", "", "YAML file mapping senders to display names")
	exportCmd.Flags().IntP("workers", "j", 1, "Number of chats to export concurrently")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(versionCmd)
}
