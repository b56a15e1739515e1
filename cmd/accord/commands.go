package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/accord/internal/config"
	"github.com/kalambet/accord/internal/culture"
)

// --- adapt ---

var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Culturally adapt a guidance document",
	Long: `Culturally adapt a guidance document for a requester.

Examples:
  accord adapt --file guidance.json --background asian --category contract_dispute --urgency high
  cat guidance.json | accord adapt --background hispanic --language es --style`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		background, _ := cmd.Flags().GetString("background")
		category, _ := cmd.Flags().GetString("category")
		urgency, _ := cmd.Flags().GetString("urgency")
		language, _ := cmd.Flags().GetString("language")
		applyStyle, _ := cmd.Flags().GetBool("style")
		preference, _ := cmd.Flags().GetString("preference")

		if background == "" {
			return fmt.Errorf("--background is required")
		}

		var data []byte
		var err error
		if file != "" {
			data, err = os.ReadFile(file)
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading guidance: %w", err)
		}

		var doc json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("invalid guidance JSON: %w", err)
		}

		req := map[string]any{
			"context": map[string]any{
				"user_background": background,
				"legal_category":  category,
				"language":        language,
				"urgency":         urgency,
			},
			"guidance":         doc,
			"apply_style":      applyStyle,
			"style_preference": preference,
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/adaptations", req)
		if err != nil {
			return err
		}

		var result any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	adaptCmd.Flags().String("file", "", "guidance JSON file (default: stdin)")
	adaptCmd.Flags().String("background", "", "requester's cultural background")
	adaptCmd.Flags().String("category", "", "legal category (e.g. family_law)")
	adaptCmd.Flags().String("urgency", "medium", "urgency: low, medium, high, critical")
	adaptCmd.Flags().String("language", "en", "requester's language code")
	adaptCmd.Flags().Bool("style", false, "also apply communication style rules to the text")
	adaptCmd.Flags().String("preference", "", "style preference: formal or casual")
}

// --- assess ---

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess escalation risk for a mediation case",
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, _ := cmd.Flags().GetString("case")
		if caseID == "" {
			return fmt.Errorf("--case is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/cases/"+caseID+"/assessment", map[string]any{})
		if err != nil {
			return err
		}

		var result struct {
			Assessment struct {
				RiskLevel       string   `json:"risk_level"`
				Factors         []string `json:"factors"`
				Recommendations []string `json:"recommendations"`
			} `json:"assessment"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printStatus("Risk", "%s", colorizeRisk(result.Assessment.RiskLevel))
		for _, f := range result.Assessment.Factors {
			fmt.Printf("  - %s\n", f)
		}
		if len(result.Assessment.Recommendations) > 0 {
			fmt.Println()
			for _, r := range result.Assessment.Recommendations {
				fmt.Printf("  %s %s\n", colorize(colorCyan, "→"), r)
			}
		}
		return nil
	},
}

func colorizeRisk(level string) string {
	switch level {
	case "high":
		return colorize(colorRed, level)
	case "medium":
		return colorize(colorYellow, level)
	default:
		return colorize(colorGreen, level)
	}
}

func init() {
	assessCmd.Flags().String("case", "", "mediation case ID")
}

// --- cases ---

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Manage mediation cases",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mediation cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/cases?limit=%d", limit)
		if status != "" {
			path += "&status=" + status
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var cases []struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Status    string `json:"status"`
			CreatedAt string `json:"created_at"`
		}
		if err := decodeJSON(resp, &cases); err != nil {
			return err
		}

		if len(cases) == 0 {
			fmt.Println("No cases found.")
			return nil
		}

		for _, c := range cases {
			title := c.Title
			if len(title) > 60 {
				title = title[:60] + "..."
			}
			fmt.Printf("%s  %-8s  %s\n",
				colorize(colorCyan, c.ID[:8]),
				c.Status,
				title,
			)
		}
		return nil
	},
}

var casesCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a mediation case",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		partiesStr, _ := cmd.Flags().GetString("parties")

		req := map[string]any{"title": title}
		if partiesStr != "" {
			parties := strings.Split(partiesStr, ",")
			for i := range parties {
				parties[i] = strings.TrimSpace(parties[i])
			}
			req["parties"] = parties
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/cases", req)
		if err != nil {
			return err
		}

		var result struct {
			ID string `json:"id"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Created case %s", result.ID)
		return nil
	},
}

var casesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a case and its timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/cases/"+args[0])
		if err != nil {
			return err
		}
		var c any
		if err := decodeJSON(resp, &c); err != nil {
			return err
		}

		eventsResp, err := client.get(cmd.Context(), "/cases/"+args[0]+"/events")
		if err != nil {
			return err
		}
		var events []any
		if err := decodeJSON(eventsResp, &events); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"case": c, "events": events})
	},
}

var casesCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a mediation case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/cases/"+args[0], map[string]string{"status": "closed"})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Closed case %s", args[0])
		return nil
	},
}

func init() {
	casesListCmd.Flags().String("status", "", "filter by status: open, resolved, closed")
	casesListCmd.Flags().Int("limit", 20, "maximum number of cases to list")
	casesCreateCmd.Flags().String("parties", "", "comma-separated party names")
	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(casesShowCmd)
	casesCmd.AddCommand(casesCloseCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile [background]",
	Short: "Show cultural profiles",
	Long: `Show the cultural profile for a background label, or list all
registered backgrounds when no label is given. Unknown labels resolve
to the default profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, bg := range culture.Backgrounds() {
				fmt.Println(bg)
			}
			return nil
		}

		background := args[0]
		if !culture.Known(background) {
			printWarning("unknown background %q, showing default profile", background)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(culture.Lookup(background))
	},
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
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration override",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
