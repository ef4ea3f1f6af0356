package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/judicia/internal/api"
	"github.com/kalambet/judicia/internal/config"
	"github.com/kalambet/judicia/internal/service"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the model and print the reply",
	Long: `Send a message to the model and print the reply.

Examples:
  judicia chat "Summarize the uploaded contract"
  judicia chat --user 42 "What is clause 7 about?"
  echo "hello" | judicia chat -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := args[0]
		if message == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			message = strings.TrimRight(string(data), "\n")
		}

		req := api.ChatRequest{Message: message}
		if cmd.Flags().Changed("user") {
			uid, _ := cmd.Flags().GetInt64("user")
			req.UserID = &uid
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/chat", req)
		if err != nil {
			return err
		}

		var result api.ChatResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
		return nil
	},
}

func init() {
	chatCmd.Flags().Int64("user", 0, "user id to record with the turn")
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and print its content preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.postFile(cmd.Context(), "/upload", "file", filepath.Base(path), data)
		if err != nil {
			return err
		}

		var result service.UploadResult
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		success.printf("Uploaded %s", result.Filename)
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), result.ContentPreview)
		}
		return nil
	},
}

func init() {
	uploadCmd.Flags().BoolP("quiet", "q", false, "do not print the content preview")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent chat turns, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if xlsxPath != "" {
			resp, err := client.get(cmd.Context(), fmt.Sprintf("/history/export?limit=%d", limit))
			if err != nil {
				return err
			}
			data, err := readBody(resp)
			if err != nil {
				return err
			}
			if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", xlsxPath, err)
			}
			success.printf("History exported to %s", xlsxPath)
			return nil
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/history?limit=%d", limit))
		if err != nil {
			return err
		}
		var items []api.HistoryItem
		if err := decodeJSON(resp, &items); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		if len(items) == 0 {
			warning.printf("No chat history yet")
			return nil
		}
		for _, it := range items {
			writeTurn(out, it)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", service.DefaultHistoryLimit, "maximum number of turns")
	historyCmd.Flags().String("xlsx", "", "write the history to this XLSX file instead of printing")
	historyCmd.Flags().Bool("json", false, "print raw JSON")
}

// --- documents ---

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List uploaded documents, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), fmt.Sprintf("/documents?limit=%d", limit))
		if err != nil {
			return err
		}
		var items []api.DocumentItem
		if err := decodeJSON(resp, &items); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			warning.printf("No documents uploaded yet")
			return nil
		}
		for _, d := range items {
			writeDocument(out, d)
		}
		return nil
	},
}

func init() {
	documentsCmd.Flags().Int("limit", service.DefaultHistoryLimit, "maximum number of documents")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil && !config.IsMissing(err) {
			return err
		}
		if err != nil {
			warning.printf("%v", err)
		}

		for _, k := range config.ShowAll(cfg) {
			source := k.EnvVar
			if k.Secret {
				source += ", env or secrets file only"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", paint(ansiBold, k.Key), k.Value, source)
		}
		return nil
	},
}

func settableKeys() string {
	var b strings.Builder
	for _, k := range config.ValidKeys() {
		b.WriteString("  " + k)
		if c := config.Choices(k); c != nil {
			b.WriteString(" (" + strings.Join(c, "|") + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value in the config file.\n\nValid keys:\n" + settableKeys(),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		success.printf("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
