package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/albadia/villachat/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to a running server",
	Long: `Send a message to a running server and print the grounded reply.

Examples:
  villachat chat "Do you have a 4 bedroom villa with a pool?"
  villachat chat --session demo-1 "What about the price?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/chat", chat.Request{
			Message:   message,
			SessionID: sessionID,
		})
		if err != nil {
			return err
		}

		var result chat.Result
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Response)

		if len(result.Citations) > 0 {
			fmt.Println()
			for _, c := range result.Citations {
				fmt.Printf("  %s page %d (%s)\n", paint(ansiCyan, "↳"), c.Page, c.VillaType)
			}
		}
		if len(result.Images) > 0 {
			fmt.Println()
			for _, img := range result.Images {
				fmt.Printf("  %s %s\n", paint(ansiCyan, "🖼"), img.Path)
			}
		}
		if result.FollowUpPrompt != "" {
			fmt.Printf("\n%s\n", paint(ansiBold, result.FollowUpPrompt))
		}

		printStatus("Session", "%s", sessionID)
		printStatus("Intent", "%s (%.2f)", result.LeadSignals.Intent, result.LeadSignals.IntentScore)
		if len(result.LeadSignals.SignalsDetected) > 0 {
			printStatus("Signals", "%s", strings.Join(result.LeadSignals.SignalsDetected, ", "))
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().String("session", "", "session id (default: new random session)")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/health")
		if err != nil {
			printStatus("Server", "stopped")
			return nil
		}

		var health struct {
			Status           string `json:"status"`
			VectorstoreReady bool   `json:"vectorstore_loaded"`
		}
		if err := decodeJSON(resp, &health); err != nil {
			printStatus("Server", "error: %v", err)
			return nil
		}

		printStatus("Server", "running at %s", client.baseURL)
		if health.VectorstoreReady {
			printStatus("Evidence", "loaded")
		} else {
			printStatus("Evidence", "empty — run 'villachat ingest'")
		}
		return nil
	},
}
